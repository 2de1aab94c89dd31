package cli

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lawglot/lawglot/internal/application/collect"
	"github.com/lawglot/lawglot/internal/config"
	"github.com/lawglot/lawglot/pkg/errors"
)

var (
	collectPageSize  int
	collectRetries   int
	collectSleep     time.Duration
	collectSkipTerms bool
	collectResume    bool
	collectMaxTerms  int
)

// NewCollectCmd creates the collect command.
func NewCollectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Sweep the legal-term vocabulary and its everyday-term relations into the local snapshot",
		Long:  "collect performs the offline snapshot build: a full vocabulary sweep by\nsyllable group, followed by a relation fetch per collected term.  A run\ntakes hours; interrupt it freely and rerun with --skip-terms --resume.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect(cmd)
		},
	}

	fl := cmd.Flags()
	fl.IntVar(&collectPageSize, "page-size", 0, "vocabulary rows per page (default from config)")
	fl.IntVar(&collectRetries, "retries", 0, "attempts per remote call (default from config)")
	fl.DurationVar(&collectSleep, "sleep", 0, "pause between remote calls (default from config)")
	fl.BoolVar(&collectSkipTerms, "skip-terms", false, "reuse the stored vocabulary instead of sweeping")
	fl.BoolVar(&collectResume, "resume", false, "skip terms that already have stored relations")
	fl.IntVar(&collectMaxTerms, "max-terms", 0, "bound relation fetching to the first N terms (0 = all)")
	return cmd
}

func runCollect(cmd *cobra.Command) error {
	cliCtx, err := getCLIContext(cmd)
	if err != nil {
		return err
	}
	cfg, logger := cliCtx.Config, cliCtx.Logger

	// The built-in fallback identity covers interactive lookups only; a full
	// vocabulary sweep must run under the operator's own OC.
	if cfg.LawAPI.OC == "" || cfg.LawAPI.OC == config.DefaultOC {
		return errors.Config("law_api.oc must be set explicitly for collection (LAWGLOT_LAW_API_OC or law_api.oc)")
	}

	storage, closeStorage, err := newStorage(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStorage()

	client, closeClient, err := newLawClient(cfg, logger)
	if err != nil {
		return err
	}
	defer closeClient()

	opts := collect.Options{
		PageSize:  cfg.Collect.PageSize,
		Retries:   cfg.Collect.Retries,
		Sleep:     cfg.Collect.Sleep,
		SkipTerms: collectSkipTerms,
		Resume:    collectResume,
		MaxTerms:  collectMaxTerms,
	}
	if cmd.Flags().Changed("page-size") {
		opts.PageSize = collectPageSize
	}
	if cmd.Flags().Changed("retries") {
		opts.Retries = collectRetries
	}
	if cmd.Flags().Changed("sleep") {
		opts.Sleep = collectSleep
	}

	// SIGINT aborts cleanly; everything persisted so far stays resumable.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats, err := collect.NewCollector(client, storage, logger).Run(ctx, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "collected %d terms, %d relations (%d skipped)\n",
		stats.Terms, stats.Relations, stats.Skipped)
	return nil
}
