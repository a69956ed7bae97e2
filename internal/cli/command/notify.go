package command

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	ddsv1 "github.com/esnet/nsi-dds-go/api/dds/v1"
	"github.com/esnet/nsi-dds-go/internal/cli/output"
	"github.com/esnet/nsi-dds-go/internal/telemetry/logger"
	"github.com/esnet/nsi-dds-go/internal/xmlcodec"
)

// NotifyCommand returns the notify command.
func NotifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "notify",
		Usage: "Post a notifications document to the server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Notifications document (- for stdin)",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "chunked",
				Usage: "Send with chunked transfer encoding",
			},
			&cli.StringFlag{
				Name:  "prefix",
				Usage: "Bytes to send ahead of the document, with Go escapes (e.g. '\\r\\n2a7\\r\\n')",
			},
			&cli.BoolFlag{
				Name:  "no-check",
				Usage: "Skip the local decode before sending",
			},
		},
		Action: notify,
	}
}

// NotifyResult is the outcome of a notify.
type NotifyResult struct {
	Status        int    `json:"status"`
	Location      string `json:"location,omitempty"`
	RequestID     string `json:"request_id,omitempty"`
	Notifications int    `json:"notifications"`
	Bytes         int    `json:"bytes"`
}

// Table implements output.Tabler.
func (n *NotifyResult) Table(bool) *output.Table {
	t := &output.Table{Headers: []string{"STATUS", "NOTIFICATIONS", "BYTES", "LOCATION"}}
	location := n.Location
	if location == "" {
		location = "-"
	}
	t.AddRow(fmt.Sprintf("%d", n.Status), fmt.Sprintf("%d", n.Notifications), fmt.Sprintf("%d", n.Bytes), location)
	return t
}

func notify(c *cli.Context) error {
	doc, err := readInput(c.String("file"))
	if err != nil {
		return err
	}

	count := -1
	if !c.Bool("no-check") {
		codec, err := xmlcodec.NewDefault(logger.Nop())
		if err != nil {
			return err
		}
		list, err := xmlcodec.DecodeStream[ddsv1.NotificationListType](codec, bytes.NewReader(doc))
		if err != nil {
			return fmt.Errorf("local check: %w", err)
		}
		count = len(list.Notification)
		Verbosef(c, "document %s from %s carries %d notifications", list.ID, list.ProviderID, count)
	}

	body := doc
	if p := c.String("prefix"); p != "" {
		prefix, err := unescape(p)
		if err != nil {
			return fmt.Errorf("--prefix: %w", err)
		}
		body = append([]byte(prefix), doc...)
	}

	client, err := NewClient(c)
	if err != nil {
		return err
	}

	resp, err := client.PostXML(c.Context, "/dds/notifications", bytes.NewReader(body), c.Bool("chunked"))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if err := client.CheckResponse(resp); err != nil {
		return err
	}
	resp.Body.Close()

	return Print(c, &NotifyResult{
		Status:        resp.StatusCode,
		Location:      resp.Header.Get("Location"),
		RequestID:     resp.Header.Get("X-Request-ID"),
		Notifications: count,
		Bytes:         len(body),
	})
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// unescape interprets Go string escapes such as \r, \n and \x00.
func unescape(s string) (string, error) {
	return strconv.Unquote(`"` + s + `"`)
}
