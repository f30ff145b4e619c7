// Package category holds the keyword-to-category mapping that drives
// classification. The mapping is loaded once per run and read-only after
// that; declaration order decides ties, so loading goes through yaml.Node
// instead of a Go map.
package category

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by Load and Parse when the mapping cannot safely
// classify anything. It is fatal at load time.
var ErrInvalid = errors.New("invalid category mapping")

// ValidationError describes a single mapping violation.
type ValidationError struct {
	Category string
	Reason   string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("category %q: %s", e.Category, e.Reason)
}

// Category is one mapping entry: a name plus its keywords in declaration
// order.
type Category struct {
	Name     string
	Keywords []string
}

// AmountRule classifies a transaction by amount when no keyword matches.
// Exactly the rule's populated side (credit or debit) is compared.
type AmountRule struct {
	Category  string
	MinCredit decimal.NullDecimal
	MinDebit  decimal.NullDecimal
}

// Duplicate reports a keyword declared under two categories. The first
// declaration wins at resolve time.
type Duplicate struct {
	Keyword string
	First   string
	Second  string
}

// Mapping is the immutable category configuration for a run.
type Mapping struct {
	categories []Category
	rules      []AmountRule
}

// Load reads and validates a mapping YAML file.
func Load(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading category mapping: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates mapping YAML. Two shapes are accepted: the
// flat original format (top-level category -> keyword list) and a nested
// format with a categories section plus optional amount_rules.
func Parse(data []byte) (*Mapping, error) {
	var m Mapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing category mapping: %w", err)
	}

	if verrs := m.validate(); len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, ve := range verrs {
			msgs[i] = ve.Error()
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
	}
	return &m, nil
}

type amountRuleYAML struct {
	Category  string `yaml:"category"`
	MinCredit string `yaml:"min_credit"`
	MinDebit  string `yaml:"min_debit"`
}

// UnmarshalYAML decodes either mapping shape, preserving declaration order.
func (m *Mapping) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected a mapping at the top level, got %s", nodeKind(node))
	}

	// Nested form is recognized by a categories key.
	catNode := node
	for i := 0; i < len(node.Content); i += 2 {
		if node.Content[i].Value == "categories" {
			catNode = node.Content[i+1]
			if catNode.Kind != yaml.MappingNode {
				return fmt.Errorf("categories: expected a mapping, got %s", nodeKind(catNode))
			}
			if err := m.decodeRules(node); err != nil {
				return err
			}
			break
		}
	}

	for i := 0; i < len(catNode.Content); i += 2 {
		key := catNode.Content[i]
		val := catNode.Content[i+1]
		if catNode == node && (key.Value == "categories" || key.Value == "amount_rules") {
			continue
		}
		var keywords []string
		if err := val.Decode(&keywords); err != nil {
			return fmt.Errorf("category %q: %w", key.Value, err)
		}
		m.categories = append(m.categories, Category{Name: key.Value, Keywords: keywords})
	}
	return nil
}

func (m *Mapping) decodeRules(root *yaml.Node) error {
	for i := 0; i < len(root.Content); i += 2 {
		if root.Content[i].Value != "amount_rules" {
			continue
		}
		var raw []amountRuleYAML
		if err := root.Content[i+1].Decode(&raw); err != nil {
			return fmt.Errorf("amount_rules: %w", err)
		}
		for _, r := range raw {
			rule := AmountRule{Category: r.Category}
			var err error
			if rule.MinCredit, err = parseThreshold(r.MinCredit); err != nil {
				return fmt.Errorf("amount_rules: category %q: min_credit: %w", r.Category, err)
			}
			if rule.MinDebit, err = parseThreshold(r.MinDebit); err != nil {
				return fmt.Errorf("amount_rules: category %q: min_debit: %w", r.Category, err)
			}
			m.rules = append(m.rules, rule)
		}
	}
	return nil
}

func parseThreshold(s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}

func nodeKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	default:
		return "unknown node"
	}
}

func (m *Mapping) validate() []ValidationError {
	var errs []ValidationError

	if len(m.categories) == 0 {
		errs = append(errs, ValidationError{Reason: "no categories declared"})
	}
	for _, c := range m.categories {
		if strings.TrimSpace(c.Name) == "" {
			errs = append(errs, ValidationError{Category: c.Name, Reason: "empty category name"})
		}
		if len(c.Keywords) == 0 {
			errs = append(errs, ValidationError{Category: c.Name, Reason: "no keywords"})
		}
		for _, kw := range c.Keywords {
			if strings.TrimSpace(kw) == "" {
				errs = append(errs, ValidationError{Category: c.Name, Reason: "empty keyword"})
			}
		}
	}
	for _, r := range m.rules {
		if strings.TrimSpace(r.Category) == "" {
			errs = append(errs, ValidationError{Reason: "amount rule with empty category"})
		}
		if !r.MinCredit.Valid && !r.MinDebit.Valid {
			errs = append(errs, ValidationError{Category: r.Category, Reason: "amount rule without a threshold"})
		}
	}
	return errs
}

// Categories returns the mapping entries in declaration order.
func (m *Mapping) Categories() []Category {
	return m.categories
}

// Rules returns the amount rules in declaration order.
func (m *Mapping) Rules() []AmountRule {
	return m.rules
}

// Resolve finds the first (category, keyword) pair whose keyword occurs in
// text, case-insensitively, scanning categories and keywords in declaration
// order. A miss yields empty strings and ok=false; the caller decides the
// uncategorized fallback.
func (m *Mapping) Resolve(text string) (cat, keyword string, ok bool) {
	lower := strings.ToLower(text)
	for _, c := range m.categories {
		for _, kw := range c.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return c.Name, kw, true
			}
		}
	}
	return "", "", false
}

// ResolveAmount applies the amount rules in declaration order. A rule fires
// when its populated threshold side is present on the transaction and the
// amount is greater than or equal to the threshold.
func (m *Mapping) ResolveAmount(debit, credit decimal.NullDecimal) (string, bool) {
	for _, r := range m.rules {
		if r.MinCredit.Valid && credit.Valid && credit.Decimal.GreaterThanOrEqual(r.MinCredit.Decimal) {
			return r.Category, true
		}
		if r.MinDebit.Valid && debit.Valid && debit.Decimal.GreaterThanOrEqual(r.MinDebit.Decimal) {
			return r.Category, true
		}
	}
	return "", false
}

// Duplicates reports every keyword declared under more than one category,
// case-insensitively, once per extra declaration.
func (m *Mapping) Duplicates() []Duplicate {
	seen := make(map[string]string)
	var dups []Duplicate
	for _, c := range m.categories {
		for _, kw := range c.Keywords {
			key := strings.ToLower(kw)
			if first, ok := seen[key]; ok {
				if first != c.Name {
					dups = append(dups, Duplicate{Keyword: kw, First: first, Second: c.Name})
				}
				continue
			}
			seen[key] = c.Name
		}
	}
	return dups
}
