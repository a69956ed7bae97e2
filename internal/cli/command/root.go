package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/esnet/nsi-dds-go/internal/cli/connection"
	"github.com/esnet/nsi-dds-go/internal/cli/output"
	"github.com/esnet/nsi-dds-go/internal/infra/buildinfo"
)

// ProgramName is the CLI name used in usage and the User-Agent.
const ProgramName = "ddsctl"

// DefaultServer is the address of a local nsi-dds-server.
const DefaultServer = "localhost:8402"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    ProgramName,
		Usage:   "NSI Document Distribution Service client",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			PingCommand(),
			NotifyCommand(),
			InboxCommand(),
			DecodeCommand(),
		},
		Before: func(c *cli.Context) error {
			_, err := output.ParseFormat(c.String("output"))
			return err
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "nsi-dds-server address or URL",
			EnvVars: []string{"DDSCTL_SERVER"},
			Value:   DefaultServer,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   string(output.FormatTable),
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Request timeout",
			Value: 30 * time.Second,
		},
		&cli.StringFlag{
			Name:    "ca-file",
			Usage:   "PEM file or directory of CA certificates to trust",
			EnvVars: []string{"DDSCTL_CA_FILE"},
		},
		&cli.StringFlag{
			Name:    "cert",
			Usage:   "Client certificate file",
			EnvVars: []string{"DDSCTL_CERT"},
		},
		&cli.StringFlag{
			Name:    "key",
			Usage:   "Client private key file",
			EnvVars: []string{"DDSCTL_KEY"},
		},
		&cli.BoolFlag{
			Name:  "insecure",
			Usage: "Skip server certificate verification",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable verbose output",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Server  string
	Output  output.Format
	Wide    bool
	Timeout time.Duration

	CAFile   string
	CertFile string
	KeyFile  string
	Insecure bool

	Verbose bool
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	format, _ := output.ParseFormat(c.String("output"))
	return &GlobalFlags{
		Server:   c.String("server"),
		Output:   format,
		Wide:     c.Bool("wide"),
		Timeout:  c.Duration("timeout"),
		CAFile:   c.String("ca-file"),
		CertFile: c.String("cert"),
		KeyFile:  c.String("key"),
		Insecure: c.Bool("insecure"),
		Verbose:  c.Bool("verbose"),
	}
}

// NewClient builds an HTTP client from the global flags.
func NewClient(c *cli.Context) (*connection.HTTPClient, error) {
	flags := ParseGlobalFlags(c)

	tlsCfg, err := connection.TLSConfig(flags.CAFile, flags.CertFile, flags.KeyFile, flags.Insecure)
	if err != nil {
		return nil, fmt.Errorf("tls: %w", err)
	}

	return connection.NewHTTPClient(connection.Options{
		Server:    flags.Server,
		TLS:       tlsCfg,
		Timeout:   flags.Timeout,
		UserAgent: buildinfo.UserAgent(ProgramName),
	}), nil
}

// Print writes data to the app writer in the selected format.
func Print(c *cli.Context, data any) error {
	flags := ParseGlobalFlags(c)
	return output.NewFormatter(flags.Output, flags.Wide).Format(c.App.Writer, data)
}

// Verbosef writes to the app error writer when --verbose is set.
func Verbosef(c *cli.Context, format string, args ...any) {
	if c.Bool("verbose") {
		fmt.Fprintf(c.App.ErrWriter, format+"\n", args...)
	}
}
