// Package i18n serves the questionnaire labels and messages per language.
package i18n

import (
	"bytes"
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"partner-intake/internal/intake"
)

const FallbackLanguage = "en"

//go:embed locales/*.yaml
var locales embed.FS

// Catalog holds one flat key/value table per language.
type Catalog struct {
	tables map[string]map[string]string
}

// Load reads every embedded locale file.
func Load() (*Catalog, error) {
	entries, err := locales.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}

	c := &Catalog{tables: make(map[string]map[string]string, len(entries))}
	for _, e := range entries {
		data, err := locales.ReadFile(path.Join("locales", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", e.Name(), err)
		}
		lang := strings.TrimSuffix(e.Name(), path.Ext(e.Name()))
		if err := c.Add(lang, data); err != nil {
			return nil, err
		}
	}
	if _, ok := c.tables[FallbackLanguage]; !ok {
		return nil, fmt.Errorf("fallback locale %q missing", FallbackLanguage)
	}
	return c, nil
}

// Add parses a YAML locale and registers it under lang, replacing any previous table.
func (c *Catalog) Add(lang string, yamlData []byte) error {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(yamlData)); err != nil {
		return fmt.Errorf("parse locale %s: %w", lang, err)
	}

	table := make(map[string]string)
	for _, key := range v.AllKeys() {
		table[key] = v.GetString(key)
	}
	if c.tables == nil {
		c.tables = make(map[string]map[string]string)
	}
	c.tables[lang] = table
	return nil
}

func (c *Catalog) Languages() []string {
	out := make([]string, 0, len(c.tables))
	for lang := range c.tables {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// For returns a translator for lang. Lookups fall back to English, then to the key.
func (c *Catalog) For(lang string) intake.Translator {
	return &translator{primary: c.tables[lang], fallback: c.tables[FallbackLanguage]}
}

type translator struct {
	primary  map[string]string
	fallback map[string]string
}

func (t *translator) T(key string) string {
	k := strings.ToLower(key)
	if v, ok := t.primary[k]; ok && v != "" {
		return v
	}
	if v, ok := t.fallback[k]; ok && v != "" {
		return v
	}
	return key
}
