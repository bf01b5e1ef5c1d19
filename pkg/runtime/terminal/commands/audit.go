package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/getmilo/milo/pkg/adapters"
	"github.com/getmilo/milo/pkg/runtime/terminal/export"
	"github.com/getmilo/milo/pkg/services/audit"
	"github.com/getmilo/milo/pkg/services/audit/textscan"
	"github.com/spf13/cobra"
)

const (
	modeAuto       = "auto"
	modeStructured = "structured"
	modeText       = "text"
)

type AuditCmd struct {
	mode     string
	jsonOut  bool
	minScore int
	auditor  *audit.Auditor
	reporter func(io.Writer) export.Reporter
}

func NewAuditCmd(reporter func(io.Writer) export.Reporter) *cobra.Command {
	ac := &AuditCmd{
		auditor:  audit.NewAuditor(audit.DefaultSettings()),
		reporter: reporter,
	}
	cmd := &cobra.Command{
		Use:   "audit [file|-]",
		Short: "Audit an openclaw.json or pasted config text",
		Long: "Audit reads a config file (or stdin when the argument is - or missing). " +
			"JSON objects get the structured audit; anything else gets the keyword scan.",
		Args: cobra.MaximumNArgs(1),
		RunE: ac.run,
	}

	cmd.Flags().StringVar(&ac.mode, "mode", modeAuto, "Audit mode: auto, structured or text")
	cmd.Flags().BoolVar(&ac.jsonOut, "json", false, "Print the result as JSON")
	cmd.Flags().IntVar(&ac.minScore, "min-score", 0, "Exit with an error when the score is below this value")

	return cmd
}

func (ac *AuditCmd) run(cmd *cobra.Command, args []string) error {
	raw, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	mode := ac.mode
	switch mode {
	case modeAuto:
		mode = modeText
		if _, err := audit.Parse(raw); err == nil {
			mode = modeStructured
		}
	case modeStructured, modeText:
	default:
		return fmt.Errorf("unknown audit mode %q", ac.mode)
	}

	out := cmd.OutOrStdout()
	var score int
	if mode == modeStructured {
		report, err := ac.auditor.AuditJSON(raw)
		if err != nil {
			return fmt.Errorf("failed to audit config: %w", err)
		}
		score = report.ScoreNumber
		if ac.jsonOut {
			err = writeJSON(out, adapters.MapAuditReportDomainToApi(report))
		} else {
			err = ac.reporter(out).Audit(report)
		}
		if err != nil {
			return err
		}
	} else {
		report := textscan.Scan(string(raw))
		score = report.Score
		if ac.jsonOut {
			err = writeJSON(out, adapters.MapTextAuditReportDomainToApi(report))
		} else {
			err = ac.reporter(out).TextAudit(report)
		}
		if err != nil {
			return err
		}
	}

	if score < ac.minScore {
		return fmt.Errorf("score %d is below the required %d", score, ac.minScore)
	}
	return nil
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		if len(raw) == 0 {
			return nil, errors.New("no config given: pass a file or pipe it on stdin")
		}
		return raw, nil
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return raw, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
