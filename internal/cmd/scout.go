package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/threadlens/threadlens/internal/core"
	"github.com/threadlens/threadlens/internal/core/engine"
	"github.com/threadlens/threadlens/internal/output"
)

var (
	scoutMode      string
	scoutCommunity string
	scoutLimit     int
	scoutFormat    string
	scoutOutFile   string
	scoutNoLLM     bool
	scoutDelay     string
)

var scoutCmd = &cobra.Command{
	Use:   "scout <topic>",
	Short: "Search communities for discussion about a topic",
	Long: `Search public communities for discussion about a topic.

Modes:
  pain     pain points, frustrations, help-seeking posts
  market   buying intent, comparisons, pricing discussions
  general  broad discussion and trends (default)

With --community the discovery phase is skipped and only the named
community is searched.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(scoutFormat)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUsage, err)
		}

		if scoutNoLLM {
			viper.Set("llm.enabled", false)
		}
		if scoutDelay != "" {
			viper.Set("reddit.delay", scoutDelay)
		}

		pipe, err := buildPipeline(cmd.Context(), log)
		if err != nil {
			return err
		}
		defer pipe.Close() // nolint:errcheck // best-effort cleanup

		report, err := pipe.Scout.Run(cmd.Context(), engine.Request{
			Topic:     args[0],
			Mode:      core.ParseMode(scoutMode),
			Community: scoutCommunity,
			Limit:     scoutLimit,
		})
		if err != nil {
			return err
		}

		if pipe.Store != nil {
			if err := pipe.Store.RecordRun(cmd.Context(), report); err != nil {
				log.Warn("failed to record run", zap.Error(err))
			}
		}

		if scoutOutFile != "" {
			if err := writeReportFile(scoutOutFile, report); err != nil {
				return err
			}
			log.Info("raw report written", zap.String("path", scoutOutFile))
		}

		rendered, err := output.NewFormatter(format).FormatReport(report)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), rendered)
		return nil
	},
}

func writeReportFile(path string, report *core.Report) error {
	rendered, err := (&output.JSONFormatter{Indent: true}).FormatReport(report)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(rendered+"\n"), 0o644); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(scoutCmd)

	scoutCmd.Flags().StringVarP(&scoutMode, "mode", "m", "general", "research mode: pain, market, or general")
	scoutCmd.Flags().StringVarP(&scoutCommunity, "community", "c", "", "search only this community (skips discovery)")
	scoutCmd.Flags().IntVarP(&scoutLimit, "limit", "n", 0, "maximum number of results (0 uses the configured scout.limit)")
	scoutCmd.Flags().StringVarP(&scoutFormat, "format", "f", "table", "output format: table, json, or markdown")
	scoutCmd.Flags().StringVarP(&scoutOutFile, "out", "o", "", "write the raw JSON report to this file")
	scoutCmd.Flags().BoolVar(&scoutNoLLM, "no-llm", false, "skip LLM planning and use keyword discovery")
	scoutCmd.Flags().StringVar(&scoutDelay, "delay", "", "override the inter-request delay (e.g. 1s)")
}
