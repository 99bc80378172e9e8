// Package markets loads and serves the per-market option lists.
package markets

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	apperrors "partner-intake/internal/common/errors"
	"partner-intake/internal/common/validation"
	"partner-intake/internal/models"
)

//go:embed schema.json
var documentSchema []byte

type document struct {
	Markets []models.MarketConfig `json:"markets"`
}

// Registry is an immutable set of market configurations keyed by
// (marketType, targetMarket).
type Registry struct {
	byKey map[string]*models.MarketConfig
}

func key(marketType, targetMarket string) string {
	return marketType + "/" + targetMarket
}

// LoadFile reads and validates a markets document from disk.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read markets file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse validates data against the schema and the uniqueness rule.
func Parse(data []byte) (*Registry, error) {
	if problems := Lint(data); len(problems) > 0 {
		return nil, apperrors.NewMarketConfigInvalidError(strings.Join(problems, "; "))
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, apperrors.NewMarketConfigInvalidError(err.Error())
	}
	return New(doc.Markets)
}

// Lint reports every problem in a markets document; nil means it loads.
func Lint(data []byte) []string {
	result, err := validation.ValidateJSON(documentSchema, data)
	if err != nil {
		return []string{err.Error()}
	}
	if !result.Valid {
		return result.Messages()
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return []string{err.Error()}
	}
	return duplicates(doc.Markets)
}

func duplicates(configs []models.MarketConfig) []string {
	var problems []string
	seen := make(map[string]bool, len(configs))
	for _, c := range configs {
		k := key(c.MarketType, c.TargetMarket)
		if seen[k] {
			problems = append(problems, fmt.Sprintf("duplicate market %s", k))
		}
		seen[k] = true
	}
	return problems
}

// New builds a registry from already decoded configurations.
func New(configs []models.MarketConfig) (*Registry, error) {
	if problems := duplicates(configs); len(problems) > 0 {
		return nil, apperrors.NewMarketConfigInvalidError(strings.Join(problems, "; "))
	}
	r := &Registry{byKey: make(map[string]*models.MarketConfig, len(configs))}
	for i := range configs {
		c := configs[i]
		if len(c.Cities) > 0 && len(c.Zones) > 0 {
			return nil, apperrors.NewMarketConfigInvalidError(
				fmt.Sprintf("market %s defines both cities and zones", key(c.MarketType, c.TargetMarket)))
		}
		r.byKey[key(c.MarketType, c.TargetMarket)] = &c
	}
	return r, nil
}

// Get returns a copy of the configuration, or MARKET_CONFIG_NOT_FOUND.
func (r *Registry) Get(_ context.Context, marketType, targetMarket string) (*models.MarketConfig, error) {
	c, ok := r.byKey[key(marketType, targetMarket)]
	if !ok {
		return nil, apperrors.NewMarketConfigNotFoundError(marketType, targetMarket)
	}
	out := *c
	out.Cities = append([]string(nil), c.Cities...)
	out.Zones = append([]string(nil), c.Zones...)
	out.VehicleTypes = append([]string(nil), c.VehicleTypes...)
	out.StaffTypes = append([]string(nil), c.StaffTypes...)
	out.Platforms = append([]string(nil), c.Platforms...)
	return &out, nil
}

// List returns every configuration ordered by market type, then target market.
func (r *Registry) List() []models.MarketConfig {
	out := make([]models.MarketConfig, 0, len(r.byKey))
	for _, c := range r.byKey {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MarketType != out[j].MarketType {
			return out[i].MarketType < out[j].MarketType
		}
		return out[i].TargetMarket < out[j].TargetMarket
	})
	return out
}
