package service

import (
	"fmt"
	"strings"

	"github.com/dyike/psxlens/internal/analytics"
)

type Intent string

const (
	IntentOverview Intent = "overview"
	IntentGainers  Intent = "gainers"
	IntentLosers   Intent = "losers"
	IntentVolume   Intent = "volume"
	IntentSymbol   Intent = "symbol"
	IntentCompare  Intent = "compare"
)

// Intents lists every supported intent in menu order.
var Intents = []Intent{IntentOverview, IntentGainers, IntentLosers, IntentVolume, IntentSymbol, IntentCompare}

func ParseIntent(s string) (Intent, error) {
	in := Intent(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Intents {
		if in == known {
			return in, nil
		}
	}
	return "", fmt.Errorf("unknown intent %q", s)
}

// Query is one analytics request against the current snapshot.
type Query struct {
	Intent   Intent
	N        int
	Symbols  []string
	Explain  bool
	Question string
	Refresh  bool
}

func (q Query) Validate() error {
	if _, err := ParseIntent(string(q.Intent)); err != nil {
		return err
	}
	switch q.Intent {
	case IntentSymbol:
		if len(q.Symbols) != 1 || strings.TrimSpace(q.Symbols[0]) == "" {
			return fmt.Errorf("symbol query needs exactly one symbol")
		}
	case IntentCompare:
		if len(q.Symbols) == 0 {
			return fmt.Errorf("compare query needs at least one symbol")
		}
	}
	if q.N < 0 {
		return fmt.Errorf("top count must not be negative")
	}
	return nil
}

// wantsExplanation reports whether the caller asked for model text.
func (q Query) wantsExplanation() bool {
	return q.Explain || strings.TrimSpace(q.Question) != ""
}

// label is the task label handed to the explainer.
func (q Query) label(res *analytics.Result) string {
	if question := strings.TrimSpace(q.Question); question != "" {
		return fmt.Sprintf("%s; user question: %s", res.Task, question)
	}
	return res.Task
}

// Response carries the computed result plus optional explanation text.
// Result is always set when Run returns without error.
type Response struct {
	Result      *analytics.Result `json:"result"`
	Explanation string            `json:"explanation,omitempty"`
	Warnings    []string          `json:"warnings,omitempty"`
}
