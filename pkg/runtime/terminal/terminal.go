package terminal

import (
	"io"
	"os"

	"github.com/getmilo/milo/pkg/runtime/terminal/commands"
	"github.com/getmilo/milo/pkg/runtime/terminal/export"
	"github.com/getmilo/milo/pkg/services/config"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	configPath string
	reporter   func(io.Writer) export.Reporter
	rootCmd    *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Output io.Writer
	Input  io.Reader
	// Reporter picks the output format; styled on a terminal, plain otherwise (default)
	Reporter func(io.Writer) export.Reporter
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Reporter == nil {
		opts.Reporter = export.NewReporter
	}

	cli := &CLI{reporter: opts.Reporter}
	cli.rootCmd = cli.newRootCmd()
	cli.rootCmd.SetOut(opts.Output)
	cli.rootCmd.SetIn(opts.Input)
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

// SetArgs overrides os.Args, used by tests.
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) loadSettings() (config.Settings, error) {
	return config.Load(cli.configPath)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "milo",
		Short:         "Audit and harden OpenClaw deployments",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&cli.configPath, "config", "", "Path to a milo config file (default: environment only)")

	cmd.AddCommand(commands.NewAuditCmd(cli.reporter))
	cmd.AddCommand(commands.NewSetupCmd(cli.reporter))
	cmd.AddCommand(commands.NewLeadsCmd(cli.loadSettings, cli.reporter))

	return cmd
}
