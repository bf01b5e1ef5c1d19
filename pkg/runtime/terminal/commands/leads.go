package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/getmilo/milo/pkg/adapters"
	"github.com/getmilo/milo/pkg/models/api"
	"github.com/getmilo/milo/pkg/runtime/bootstrap"
	"github.com/getmilo/milo/pkg/runtime/terminal/export"
	"github.com/getmilo/milo/pkg/services/config"
	"github.com/getmilo/milo/pkg/services/leads"
	"github.com/spf13/cobra"
)

// SettingsLoader resolves settings once flags have been parsed.
type SettingsLoader func() (config.Settings, error)

type LeadsCmd struct {
	jsonOut  bool
	load     SettingsLoader
	reporter func(io.Writer) export.Reporter
}

func NewLeadsCmd(load SettingsLoader, reporter func(io.Writer) export.Reporter) *cobra.Command {
	lc := &LeadsCmd{load: load, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "leads",
		Short: "Inspect captured leads in the configured store",
	}
	cmd.PersistentFlags().BoolVar(&lc.jsonOut, "json", false, "Print the result as JSON")

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show lead counters",
		Args:  cobra.NoArgs,
		RunE:  lc.stats,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List leads, newest first",
		Args:  cobra.NoArgs,
		RunE:  lc.list,
	})
	return cmd
}

func (lc *LeadsCmd) withService(cmd *cobra.Command, fn func(context.Context, *leads.Service) error) error {
	settings, err := lc.load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
	defer cancel()

	store, cleanup, err := bootstrap.OpenLeadStore(ctx, settings.Leads)
	if err != nil {
		return fmt.Errorf("failed to open lead store: %w", err)
	}
	defer cleanup()

	return fn(ctx, leads.NewService(store))
}

func (lc *LeadsCmd) stats(cmd *cobra.Command, _ []string) error {
	return lc.withService(cmd, func(ctx context.Context, svc *leads.Service) error {
		stats, err := svc.Stats(ctx)
		if err != nil {
			return err
		}
		if lc.jsonOut {
			return writeJSON(cmd.OutOrStdout(), api.LeadStatsResponse{
				Status: "ok",
				Leads:  adapters.MapLeadStatsDomainToApi(stats),
			})
		}
		return lc.reporter(cmd.OutOrStdout()).LeadStats(stats)
	})
}

func (lc *LeadsCmd) list(cmd *cobra.Command, _ []string) error {
	return lc.withService(cmd, func(ctx context.Context, svc *leads.Service) error {
		all, err := svc.List(ctx)
		if err != nil {
			return err
		}
		if lc.jsonOut {
			out := make([]api.Lead, 0, len(all))
			for _, l := range all {
				out = append(out, adapters.MapLeadDomainToApi(l))
			}
			return writeJSON(cmd.OutOrStdout(), out)
		}
		return lc.reporter(cmd.OutOrStdout()).Leads(all)
	})
}
