package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"partner-intake/internal/common/config"
	"partner-intake/internal/common/database"
	"partner-intake/internal/common/logger"
	"partner-intake/internal/contacts"
)

var (
	configPath      string
	incompleteLimit int
)

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Inspect stored partner contacts",
}

var contactsIncompleteCmd = &cobra.Command{
	Use:   "incomplete",
	Short: "List contacts that have not completed the questionnaire",
	Args:  cobra.NoArgs,
	RunE:  runContactsIncomplete,
}

func init() {
	contactsCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (defaults to configs/config.yaml lookup)")
	contactsIncompleteCmd.Flags().IntVar(&incompleteLimit, "limit", 50, "Maximum number of contacts")
	contactsCmd.AddCommand(contactsIncompleteCmd)
	rootCmd.AddCommand(contactsCmd)
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

func runContactsIncomplete(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return err
	}
	defer pg.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	repo := contacts.NewRepository(pg.DB, logger.NewStructured("warn", "console"))
	summaries, err := repo.ListIncomplete(ctx, incompleteLimit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintln(w, "ID\tCOMPANY\tEMAIL\tMARKET\tUPDATED")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s/%s\t%s\n", s.ID, s.CompanyName, s.Email, s.MarketType, s.TargetMarket, s.UpdatedAt.Format(time.RFC3339))
	}
	return nil
}
