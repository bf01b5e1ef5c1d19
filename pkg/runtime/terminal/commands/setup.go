package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/getmilo/milo/pkg/runtime/terminal/export"
	"github.com/getmilo/milo/pkg/services/audit"
	"github.com/getmilo/milo/pkg/services/wizard"
	"github.com/spf13/cobra"
)

type SetupCmd struct {
	answers    wizard.Answers
	writePath  string
	force      bool
	accessible bool
	builder    *wizard.Builder
	reporter   func(io.Writer) export.Reporter
}

func NewSetupCmd(reporter func(io.Writer) export.Reporter) *cobra.Command {
	sc := &SetupCmd{
		builder:  wizard.NewBuilder(audit.NewAuditor(audit.DefaultSettings())),
		reporter: reporter,
	}
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Walk through a hardened OpenClaw install",
		Long: "Setup asks five questions, prints the install steps for your platform " +
			"and generates an openclaw.json that passes the audit. Answers given as " +
			"flags are not asked again.",
		Args: cobra.NoArgs,
		RunE: sc.run,
	}

	cmd.Flags().StringVar(&sc.answers.Experience, "experience", "", "beginner, intermediate or advanced")
	cmd.Flags().StringVar(&sc.answers.UseCase, "use-case", "", "personal, business or dev")
	cmd.Flags().StringVar(&sc.answers.Platform, "platform", "", "mac, windows, linux-vps, docker or managed")
	cmd.Flags().StringVar(&sc.answers.Channel, "channel", "", "telegram, discord or whatsapp")
	cmd.Flags().StringVar(&sc.answers.Model, "model", "", "Model id for the gateway (default: "+wizard.RecommendedModel+" in the form)")
	cmd.Flags().StringVarP(&sc.writePath, "write", "w", "", "Write the generated openclaw.json to this path")
	cmd.Flags().BoolVar(&sc.force, "force", false, "Overwrite an existing file given to --write")
	cmd.Flags().BoolVar(&sc.accessible, "accessible", false, "Use plain prompts instead of the interactive form")

	return cmd
}

func (sc *SetupCmd) run(cmd *cobra.Command, _ []string) error {
	if form := sc.form(); form != nil {
		form = form.
			WithInput(cmd.InOrStdin()).
			WithOutput(cmd.OutOrStdout()).
			WithAccessible(sc.accessible)
		if err := form.RunWithContext(cmd.Context()); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return errors.New("setup cancelled")
			}
			return fmt.Errorf("failed to read answers: %w", err)
		}
	}

	plan, err := sc.builder.Build(sc.answers)
	if err != nil {
		return err
	}

	if err := sc.reporter(cmd.OutOrStdout()).Plan(plan); err != nil {
		return err
	}

	if sc.writePath == "" {
		return nil
	}
	return writeConfig(sc.writePath, plan.ConfigJSON, sc.force)
}

// form asks only for the answers not already given as flags. It returns nil
// when nothing is left to ask.
func (sc *SetupCmd) form() *huh.Form {
	var groups []*huh.Group
	ask := func(value *string, title string, opts []wizard.Option) {
		if *value != "" {
			return
		}
		groups = append(groups, huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(huhOptions(opts)...).
				Value(value),
		))
	}

	ask(&sc.answers.Experience, "How comfortable are you with technical setup?", wizard.Experiences)
	ask(&sc.answers.UseCase, "What do you want your AI agent to do?", wizard.UseCases)
	ask(&sc.answers.Platform, "Where do you want to run OpenClaw?", wizard.Platforms)
	ask(&sc.answers.Channel, "How do you want to talk to your agent?", wizard.Channels)
	if sc.answers.Model == "" {
		sc.answers.Model = wizard.RecommendedModel
		groups = append(groups, huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which model should power it?").
				Options(huhOptions(wizard.Models)...).
				Value(&sc.answers.Model),
		))
	}

	if len(groups) == 0 {
		return nil
	}
	return huh.NewForm(groups...)
}

func huhOptions(opts []wizard.Option) []huh.Option[string] {
	out := make([]huh.Option[string], 0, len(opts))
	for _, o := range opts {
		out = append(out, huh.NewOption(o.Title+" - "+o.Description, o.Value))
	}
	return out
}

// writeConfig writes the config readable by the owner only, since it holds
// the gateway token.
func writeConfig(path string, raw []byte, force bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%s already exists, pass --force to overwrite it", path)
		}
		return fmt.Errorf("failed to write config: %w", err)
	}
	if _, err := f.Write(append(raw, '\n')); err != nil {
		f.Close()
		return fmt.Errorf("failed to write config: %w", err)
	}
	return f.Close()
}
