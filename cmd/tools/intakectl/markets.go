package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"partner-intake/internal/markets"
)

var marketsCmd = &cobra.Command{
	Use:   "markets",
	Short: "Inspect market configuration",
}

var marketsLintCmd = &cobra.Command{
	Use:   "lint [file]",
	Short: "Check a market configuration file",
	Long:  `Validates the file against the market schema and reports duplicate market entries.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runMarketsLint,
}

var marketsListCmd = &cobra.Command{
	Use:   "list [file]",
	Short: "List configured markets",
	Args:  cobra.ExactArgs(1),
	RunE:  runMarketsList,
}

func init() {
	marketsCmd.AddCommand(marketsLintCmd)
	marketsCmd.AddCommand(marketsListCmd)
	rootCmd.AddCommand(marketsCmd)
}

func runMarketsLint(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	problems := markets.Lint(data)
	if len(problems) == 0 {
		cmd.Printf("%s: ok\n", args[0])
		return nil
	}
	for _, p := range problems {
		cmd.Printf("%s: %s\n", args[0], p)
	}
	return fmt.Errorf("%d problem(s) found", len(problems))
}

func runMarketsList(cmd *cobra.Command, args []string) error {
	registry, err := markets.LoadFile(args[0])
	if err != nil {
		return err
	}
	for _, m := range registry.List() {
		kind, locations := "cities", m.Cities
		if m.UsesZones() {
			kind, locations = "zones", m.Zones
		}
		cmd.Printf("%-17s %-10s %s  %s: %s\n", m.MarketType, m.TargetMarket, m.Language, kind, strings.Join(locations, ", "))
	}
	return nil
}
