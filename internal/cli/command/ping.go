package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/esnet/nsi-dds-go/internal/cli/output"
)

// PingCommand returns the ping command.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:   "ping",
		Usage:  "Check that the server answers /dds/ping",
		Action: ping,
	}
}

// PingResult is the outcome of a ping.
type PingResult struct {
	Server    string `json:"server"`
	Status    int    `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	RequestID string `json:"request_id,omitempty"`
}

// Table implements output.Tabler.
func (p *PingResult) Table(bool) *output.Table {
	t := &output.Table{Headers: []string{"SERVER", "STATUS", "LATENCY"}}
	t.AddRow(p.Server, fmt.Sprintf("%d", p.Status), fmt.Sprintf("%dms", p.LatencyMS))
	return t
}

func ping(c *cli.Context) error {
	client, err := NewClient(c)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := client.Get(c.Context, "/dds/ping")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if err := client.CheckResponse(resp); err != nil {
		return err
	}
	resp.Body.Close()

	return Print(c, &PingResult{
		Server:    client.BaseURL(),
		Status:    resp.StatusCode,
		LatencyMS: time.Since(start).Milliseconds(),
		RequestID: resp.Header.Get("X-Request-ID"),
	})
}
