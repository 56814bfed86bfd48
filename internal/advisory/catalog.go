// Package advisory maps advisory categories to the recommendation text shown
// to growers. The bundled catalog is shared by the JSON API, the form UI and
// the CLI.
package advisory

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"fertilizer-guide/internal/nutrient"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Separator joins resolved advisory blocks.
const Separator = "<br/><br/>"

// ErrUnknownCategory is returned when a category has no text in the catalog.
var ErrUnknownCategory = errors.New("unknown advisory category")

// Catalog is read-only after construction.
type Catalog struct {
	Advisories      map[nutrient.Category]string `yaml:"advisories"`
	Headlines       map[nutrient.Category]string `yaml:"headlines"`
	OptimalNutrient string                       `yaml:"optimal_nutrient"`
	OptimalOverall  string                       `yaml:"optimal_overall"`
}

// Default returns the bundled catalog.
func Default() (*Catalog, error) {
	c := &Catalog{}
	if err := yaml.Unmarshal(defaultCatalog, c); err != nil {
		return nil, fmt.Errorf("parse bundled catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("bundled catalog: %w", err)
	}
	return c, nil
}

// Load returns the bundled catalog with any entries from the YAML file at path
// laid over it. An empty path returns the bundled catalog unchanged.
func Load(path string) (*Catalog, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var override Catalog
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	for k, v := range override.Advisories {
		c.Advisories[k] = v
	}
	for k, v := range override.Headlines {
		c.Headlines[k] = v
	}
	if override.OptimalNutrient != "" {
		c.OptimalNutrient = override.OptimalNutrient
	}
	if override.OptimalOverall != "" {
		c.OptimalOverall = override.OptimalOverall
	}

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

func (c *Catalog) validate() error {
	known := make(map[nutrient.Category]bool, len(nutrient.Categories))
	for _, cat := range nutrient.Categories {
		known[cat] = true
		if strings.TrimSpace(c.Advisories[cat]) == "" {
			return fmt.Errorf("missing advisory for %s", cat)
		}
		if strings.TrimSpace(c.Headlines[cat]) == "" {
			return fmt.Errorf("missing headline for %s", cat)
		}
	}
	for cat := range c.Advisories {
		if !known[cat] {
			return fmt.Errorf("%w: %q", ErrUnknownCategory, cat)
		}
	}
	if c.OptimalOverall == "" {
		return errors.New("missing optimal_overall message")
	}
	return nil
}

// Text returns the advisory block for cat.
func (c *Catalog) Text(cat nutrient.Category) (string, error) {
	t, ok := c.Advisories[cat]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, cat)
	}
	return t, nil
}

// Resolve joins the advisory blocks for cats in the order given.
func (c *Catalog) Resolve(cats []nutrient.Category) (string, error) {
	parts := make([]string, 0, len(cats))
	for _, cat := range cats {
		t, err := c.Text(cat)
		if err != nil {
			return "", err
		}
		parts = append(parts, t)
	}
	return strings.Join(parts, Separator), nil
}

// Level of a status message.
type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Message is a one-line status shown above the recommendations.
type Message struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// StatusMessages lists success messages for optimal nutrients first, then
// error headlines for the rest, each group in N, P, K order.
func (c *Catalog) StatusMessages(res nutrient.Result) []Message {
	var success, failure []Message
	for _, a := range res.Nutrients {
		if a.Status == nutrient.StatusOptimal {
			if c.OptimalNutrient != "" {
				success = append(success, Message{
					Level: LevelSuccess,
					Text:  strings.ReplaceAll(c.OptimalNutrient, "{nutrient}", string(a.Nutrient)),
				})
			}
			continue
		}
		failure = append(failure, Message{Level: LevelError, Text: c.Headlines[a.Category]})
	}
	return append(success, failure...)
}

// Headline returns the one-line summary for cat, or "" if none is defined.
func (c *Catalog) Headline(cat nutrient.Category) string {
	return c.Headlines[cat]
}
