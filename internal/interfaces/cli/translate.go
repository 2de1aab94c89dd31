package cli

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lawglot/lawglot/internal/application/translate"
)

var (
	translateTopK            int
	translateDailyPerKeyword int
	translateLegalPerDaily   int
)

// NewTranslateCmd creates the translate command: a one-shot pipeline run
// printing the result bundle as JSON.
func NewTranslateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate <text>...",
		Short: "Resolve one text from the command line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, strings.Join(args, " "))
		},
	}

	fl := cmd.Flags()
	fl.IntVar(&translateTopK, "top-k", 0, "maximum keywords extracted (0 = default)")
	fl.IntVar(&translateDailyPerKeyword, "daily-per-keyword", 0, "everyday-term candidates per keyword (0 = default)")
	fl.IntVar(&translateLegalPerDaily, "legal-per-daily", 0, "legal terms resolved per everyday term (0 = default)")
	return cmd
}

func runTranslate(cmd *cobra.Command, text string) error {
	cliCtx, err := getCLIContext(cmd)
	if err != nil {
		return err
	}
	cfg, logger := cliCtx.Config, cliCtx.Logger

	store, closeStore, err := newStorage(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	client, closeClient, err := newLawClient(cfg, logger)
	if err != nil {
		return err
	}
	defer closeClient()

	holder := loadIndex(cmd.Context(), store, logger)
	pipeline := newPipeline(cfg, holder, client, logger)

	result, err := pipeline.Translate(cmd.Context(), text, translate.Options{
		TopK:            translateTopK,
		DailyPerKeyword: translateDailyPerKeyword,
		LegalPerDaily:   translateLegalPerDaily,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
