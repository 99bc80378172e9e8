package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"partner-intake/internal/i18n"
	"partner-intake/internal/intake"
	"partner-intake/internal/markets"
	"partner-intake/internal/models"
)

var requirementsOpts struct {
	marketsFile  string
	marketType   string
	targetMarket string
	step         int
	lang         string
	answersFile  string
}

var requirementsCmd = &cobra.Command{
	Use:   "requirements",
	Short: "Show the required fields of a step",
	Long: `Resolves the required fields of one questionnaire step for a market.
With --answers, the answers are read from a contact JSON document and the
missing fields are listed as well.`,
	Args: cobra.NoArgs,
	RunE: runRequirements,
}

func init() {
	f := requirementsCmd.Flags()
	f.StringVar(&requirementsOpts.marketsFile, "markets", "configs/markets.json", "Market configuration file")
	f.StringVar(&requirementsOpts.marketType, "market-type", "", "Market type (van_transport or bicycle_delivery)")
	f.StringVar(&requirementsOpts.targetMarket, "target-market", "", "Target market")
	f.IntVar(&requirementsOpts.step, "step", 1, "Step number")
	f.StringVar(&requirementsOpts.lang, "lang", "", "Label language (defaults to the market language)")
	f.StringVar(&requirementsOpts.answersFile, "answers", "", "Contact JSON document with answers")
	_ = requirementsCmd.MarkFlagRequired("market-type")
	_ = requirementsCmd.MarkFlagRequired("target-market")
	rootCmd.AddCommand(requirementsCmd)
}

func runRequirements(cmd *cobra.Command, _ []string) error {
	opts := requirementsOpts
	if opts.step < 1 || opts.step > intake.TotalSteps {
		return fmt.Errorf("step must be between 1 and %d", intake.TotalSteps)
	}

	registry, err := markets.LoadFile(opts.marketsFile)
	if err != nil {
		return err
	}
	market, err := registry.Get(context.Background(), opts.marketType, opts.targetMarket)
	if err != nil {
		return err
	}
	catalog, err := i18n.Load()
	if err != nil {
		return err
	}
	lang := opts.lang
	if lang == "" {
		lang = market.Language
	}
	tr := catalog.For(lang)

	answers := intake.NewAnswers(opts.marketType, opts.targetMarket)
	if opts.answersFile != "" {
		data, err := os.ReadFile(opts.answersFile)
		if err != nil {
			return fmt.Errorf("read %s: %w", opts.answersFile, err)
		}
		var contact models.Contact
		if err := json.Unmarshal(data, &contact); err != nil {
			return fmt.Errorf("parse %s: %w", opts.answersFile, err)
		}
		contact.MarketType, contact.TargetMarket = opts.marketType, opts.targetMarket
		answers = intake.AnswersFromContact(contact)
	}

	reqs := intake.Resolve(opts.step, opts.marketType, opts.targetMarket, answers, market, tr)
	cmd.Printf("Step %d of %d, %s/%s (%s)\n", opts.step, intake.TotalSteps, opts.marketType, opts.targetMarket, lang)
	for _, r := range reqs {
		line := fmt.Sprintf("  %-30s %-12s %s", r.Key, r.Kind, r.Label)
		if r.MinFrom != "" {
			line += fmt.Sprintf(" (min from %s)", r.MinFrom)
		}
		cmd.Println(line)
	}

	if opts.answersFile != "" {
		missing := intake.Validate(reqs, answers, tr)
		if len(missing) == 0 {
			cmd.Println("Complete.")
			return nil
		}
		cmd.Println("Missing:")
		for _, m := range missing {
			cmd.Printf("  - %s\n", m)
		}
	}
	return nil
}
