package command

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/esnet/nsi-dds-go/internal/cli/output"
	"github.com/esnet/nsi-dds-go/internal/core/domain"
)

// InboxCommand returns the inbox subcommand group.
func InboxCommand() *cli.Command {
	return &cli.Command{
		Name:  "inbox",
		Usage: "Read notifications stored by the server",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent notifications, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum records to return (server default when 0)",
					},
				},
				Action: inboxList,
			},
			{
				Name:      "get",
				Usage:     "Show one notification record",
				ArgsUsage: "RECORD_ID",
				Action:    inboxGet,
			},
		},
	}
}

// RecordList is the data of GET /dds/notifications.
type RecordList struct {
	Records []*domain.Record `json:"records"`
	Count   int              `json:"count"`
	Total   int              `json:"total"`
}

// Table implements output.Tabler. Wide mode adds the peer and request
// ID.
func (l *RecordList) Table(wide bool) *output.Table {
	t := &output.Table{Headers: []string{"ID", "RECEIVED", "PROVIDER", "ENTRIES", "EVENTS"}}
	if wide {
		t.Headers = append(t.Headers, "REMOTE", "REQUEST_ID")
	}
	for _, r := range l.Records {
		row := []string{
			r.ID,
			output.FormatMillis(r.ReceivedAt),
			r.ProviderID,
			strconv.Itoa(len(r.Entries)),
			eventSummary(r),
		}
		if wide {
			row = append(row, orDash(r.RemoteAddr), orDash(r.RequestID))
		}
		t.AddRow(row...)
	}
	return t
}

// RecordView renders one record with its entries.
type RecordView struct {
	*domain.Record
}

// Table implements output.Tabler.
func (v RecordView) Table(bool) *output.Table {
	r := v.Record
	t := &output.Table{Headers: []string{"EVENT", "DOCUMENT", "TYPE", "DISCOVERED"}}
	for _, e := range r.Entries {
		t.AddRow(e.Event, e.DocumentID, orDash(e.Type), output.FormatMillis(e.Discovered))
	}
	return t
}

func eventSummary(r *domain.Record) string {
	counts := r.EventCounts()
	var parts []string
	for _, ev := range []string{"All", "New", "Updated"} {
		if n := counts[ev]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", ev, n))
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ",")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func inboxList(c *cli.Context) error {
	client, err := NewClient(c)
	if err != nil {
		return err
	}

	path := "/dds/notifications"
	if n := c.Int("limit"); n > 0 {
		path += "?limit=" + strconv.Itoa(n)
	}

	resp, err := client.Get(c.Context, path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	var list RecordList
	if err := client.ParseResponse(resp, &list); err != nil {
		return err
	}

	if err := Print(c, &list); err != nil {
		return err
	}
	if ParseGlobalFlags(c).Output == output.FormatTable {
		fmt.Fprintf(c.App.Writer, "\nShowing %d of %d records\n", list.Count, list.Total)
	}
	return nil
}

func inboxGet(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one RECORD_ID")
	}
	id := c.Args().First()

	client, err := NewClient(c)
	if err != nil {
		return err
	}

	resp, err := client.Get(c.Context, "/dds/notifications/"+url.PathEscape(id))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	var record domain.Record
	if err := client.ParseResponse(resp, &record); err != nil {
		return err
	}

	if ParseGlobalFlags(c).Output != output.FormatTable {
		return Print(c, &record)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "ID:        %s\n", record.ID)
	fmt.Fprintf(w, "List ID:   %s\n", record.ListID)
	fmt.Fprintf(w, "Provider:  %s\n", record.ProviderID)
	fmt.Fprintf(w, "Href:      %s\n", orDash(record.Href))
	fmt.Fprintf(w, "Received:  %s\n", output.FormatMillis(record.ReceivedAt))
	fmt.Fprintf(w, "Remote:    %s\n", orDash(record.RemoteAddr))
	if record.SkippedBytes > 0 {
		fmt.Fprintf(w, "Skipped:   %d bytes\n", record.SkippedBytes)
	}
	fmt.Fprintln(w)
	return Print(c, RecordView{&record})
}
