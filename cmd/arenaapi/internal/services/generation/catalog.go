package generation

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/hashicorp/go-bexpr"
	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrInvalidFilter is returned for filter expressions that do not parse or
// reference fields a prompt does not have.
var ErrInvalidFilter = errors.New("invalid prompt filter")

// Prompt is one catalog entry. Custom prompts have a nil ID when reported
// back in a Result.
type Prompt struct {
	ID       int    `json:"id"`
	Prompt   string `json:"prompt"`
	Category string `json:"category"`
	Style    string `json:"style"`
}

func (p Prompt) fields() map[string]any {
	return map[string]any{
		"id":       p.ID,
		"prompt":   p.Prompt,
		"category": p.Category,
		"style":    p.Style,
	}
}

// Catalog is an immutable list of predefined prompts.
type Catalog struct {
	prompts    []Prompt
	evaluators *lru.Cache[string, *bexpr.Evaluator]
}

// NewCatalog builds a catalog. filterCacheSize bounds the number of compiled
// filter expressions kept.
func NewCatalog(prompts []Prompt, filterCacheSize int) (*Catalog, error) {
	if len(prompts) == 0 {
		return nil, errors.New("prompt catalog is empty")
	}
	for i, p := range prompts {
		if p.ID != i {
			return nil, fmt.Errorf("prompt at position %d has id %d", i, p.ID)
		}
	}
	if filterCacheSize <= 0 {
		filterCacheSize = 64
	}
	cache, err := lru.New[string, *bexpr.Evaluator](filterCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create filter cache: %w", err)
	}

	owned := make([]Prompt, len(prompts))
	copy(owned, prompts)
	return &Catalog{prompts: owned, evaluators: cache}, nil
}

// All returns a copy of every prompt.
func (c *Catalog) All() []Prompt {
	out := make([]Prompt, len(c.prompts))
	copy(out, c.prompts)
	return out
}

// Len returns the number of prompts.
func (c *Catalog) Len() int { return len(c.prompts) }

// ByID returns the prompt with the given id.
func (c *Catalog) ByID(id int) (Prompt, bool) {
	if id < 0 || id >= len(c.prompts) {
		return Prompt{}, false
	}
	return c.prompts[id], true
}

// ByCategory returns the prompts whose category matches, ignoring case.
func (c *Catalog) ByCategory(category string) []Prompt {
	out := []Prompt{}
	for _, p := range c.prompts {
		if strings.EqualFold(p.Category, strings.TrimSpace(category)) {
			out = append(out, p)
		}
	}
	return out
}

// Random returns a uniformly chosen prompt.
func (c *Catalog) Random() Prompt {
	return c.prompts[rand.IntN(len(c.prompts))]
}

// Filter returns the prompts matching a boolean expression over the fields
// id, prompt, category and style, for example
//
//	category == "fantasy" and style != "RPG art"
//
// A blank expression matches everything.
func (c *Catalog) Filter(expr string) ([]Prompt, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return c.All(), nil
	}

	evaluator, ok := c.evaluators.Get(expr)
	if !ok {
		var err error
		evaluator, err = bexpr.CreateEvaluator(expr)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
		c.evaluators.Add(expr, evaluator)
	}

	out := []Prompt{}
	for _, p := range c.prompts {
		match, err := evaluator.Evaluate(p.fields())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
		if match {
			out = append(out, p)
		}
	}
	return out, nil
}
