package command

import (
	"bytes"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	ddsv1 "github.com/esnet/nsi-dds-go/api/dds/v1"
	"github.com/esnet/nsi-dds-go/internal/cli/output"
	"github.com/esnet/nsi-dds-go/internal/telemetry/logger"
	"github.com/esnet/nsi-dds-go/internal/xmlcodec"
)

// DecodeCommand returns the decode command.
func DecodeCommand() *cli.Command {
	return &cli.Command{
		Name:  "decode",
		Usage: "Decode a DDS document locally and print its content",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Document to decode (- for stdin)",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "seek",
				Usage: "Skip bytes ahead of the XML declaration",
			},
		},
		Action: decode,
	}
}

// DecodeResult describes a decoded document.
type DecodeResult struct {
	Root         string `json:"root"`
	Type         string `json:"type"`
	SkippedBytes int64  `json:"skipped_bytes"`
	Document     any    `json:"document"`
}

// Table implements output.Tabler. Notification lists get one row per
// notification; other documents a single summary row.
func (d *DecodeResult) Table(bool) *output.Table {
	list, ok := d.Document.(*ddsv1.NotificationListType)
	if !ok {
		t := &output.Table{Headers: []string{"ROOT", "TYPE", "SKIPPED"}}
		t.AddRow(d.Root, d.Type, fmt.Sprintf("%d", d.SkippedBytes))
		return t
	}

	t := &output.Table{Headers: []string{"EVENT", "DOCUMENT", "NSA", "TYPE", "DISCOVERED"}}
	for _, n := range list.Notification {
		discovered := "-"
		if n.Discovered != nil {
			discovered = output.FormatTime(*n.Discovered)
		}
		t.AddRow(string(n.Event), n.Document.ID, orDash(n.Document.NSA), orDash(n.Document.Type), discovered)
	}
	return t
}

func decode(c *cli.Context) error {
	data, err := readInput(c.String("file"))
	if err != nil {
		return err
	}

	log := logger.Nop()
	if c.Bool("verbose") {
		if log, err = logger.New(logger.Config{Level: "debug", Format: "text", Output: c.App.ErrWriter}); err != nil {
			return err
		}
	}
	codec, err := xmlcodec.NewDefault(log)
	if err != nil {
		return err
	}

	var (
		r       io.Reader = bytes.NewReader(data)
		skipped int64
	)
	if c.Bool("seek") {
		pr, err := codec.SeekProlog(r)
		if err != nil {
			return err
		}
		skipped = pr.Skipped()
		r = pr
	}

	msg, err := codec.Decode(r)
	if err != nil {
		return err
	}

	return Print(c, &DecodeResult{
		Root:         "{" + msg.Name.Space + "}" + msg.Name.Local,
		Type:         msg.Type.String(),
		SkippedBytes: skipped,
		Document:     msg.Value,
	})
}
