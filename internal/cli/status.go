package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pawmatch/pawmatch/internal/core/config"
	"github.com/pawmatch/pawmatch/internal/infra/storage/postgres"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current name pool standings",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	repo := postgres.NewNameRepo(db)
	entries, err := repo.List(ctx)
	if err != nil {
		slog.Error("Failed to query name entries", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "NAME\tRATING\tW\tL\tHIDDEN\tLOCKED")

	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%s\t%.0f\t%d\t%d\t%t\t%t\n",
			e.Name, e.Rating, e.Wins, e.Losses, e.IsHidden, e.LockedIn)
	}
	_ = w.Flush()
}
