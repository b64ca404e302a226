package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/threadlens/threadlens/internal/config"
	"github.com/threadlens/threadlens/internal/core/store"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the persistent community cache",
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove expired community cache entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close() // nolint:errcheck // best-effort cleanup

		removed, err := st.PruneCommunities(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired entries\n", removed)
		return nil
	},
}

var cacheRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent scout runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close() // nolint:errcheck // best-effort cleanup

		records, err := st.RecentRuns(cmd.Context(), 20)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
			return nil
		}
		for _, rec := range records {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-8s %-14s %3d items  %.1fs  %s\n",
				rec.CreatedAt.Format("2006-01-02 15:04"),
				rec.Mode, rec.PlanSource, rec.Items, rec.ElapsedSeconds, rec.Topic)
		}
		return nil
	},
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		return nil, err
	}
	if !cfg.Store.Enabled {
		return nil, fmt.Errorf("%w: store is disabled; set store.enabled and store.path", ErrConfigInvalid)
	}

	st, err := store.Open(cmd.Context(), cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %v", ErrStoreFailure, err)
	}
	if err := st.Migrate(cmd.Context()); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("%w: migrate: %v", ErrStoreFailure, err)
	}
	return st, nil
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	cacheCmd.AddCommand(cacheRunsCmd)
}
