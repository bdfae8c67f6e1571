package cli

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/dyike/psxlens/internal/service"
)

const (
	actionRefresh = "refresh snapshot"
	actionExit    = "exit"
)

var symbolPattern = regexp.MustCompile(`^[A-Z0-9.\-]+$`)

var intentLabels = map[service.Intent]string{
	service.IntentOverview: "market overview",
	service.IntentGainers:  "top gainers",
	service.IntentLosers:   "top losers",
	service.IntentVolume:   "top volume",
	service.IntentSymbol:   "symbol snapshot",
	service.IntentCompare:  "compare volume",
}

// PromptForAction asks what to look at next. It returns an intent, or one of
// actionRefresh and actionExit.
func PromptForAction() (string, error) {
	options := make([]string, 0, len(service.Intents)+2)
	for _, in := range service.Intents {
		options = append(options, intentLabels[in])
	}
	options = append(options, actionRefresh, actionExit)

	var choice string
	prompt := &survey.Select{
		Message: "What would you like to see?",
		Options: options,
	}
	if err := survey.AskOne(prompt, &choice); err != nil {
		return "", err
	}

	for in, label := range intentLabels {
		if label == choice {
			return string(in), nil
		}
	}
	return choice, nil
}

func validateSymbol(val interface{}) error {
	str := strings.TrimSpace(strings.ToUpper(val.(string)))
	if len(str) == 0 {
		return fmt.Errorf("symbol cannot be empty")
	}
	if len(str) > 12 {
		return fmt.Errorf("symbol too long (max 12 characters)")
	}
	if !symbolPattern.MatchString(str) {
		return fmt.Errorf("invalid symbol (use letters, numbers, dots and hyphens only)")
	}
	return nil
}

// PromptForSymbol prompts for one PSX symbol
func PromptForSymbol() (string, error) {
	var symbol string
	prompt := &survey.Input{
		Message: "Enter the PSX symbol (e.g., HBL, OGDC, LUCK):",
	}
	if err := survey.AskOne(prompt, &symbol, survey.WithValidator(validateSymbol)); err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.ToUpper(symbol)), nil
}

// PromptForSymbols prompts for a space or comma separated list of symbols
func PromptForSymbols() ([]string, error) {
	var raw string
	prompt := &survey.Input{
		Message: "Enter symbols to compare (e.g., HBL UBL MCB):",
	}
	err := survey.AskOne(prompt, &raw, survey.WithValidator(func(val interface{}) error {
		symbols := splitSymbols(val.(string))
		if len(symbols) == 0 {
			return fmt.Errorf("enter at least one symbol")
		}
		for _, s := range symbols {
			if err := validateSymbol(s); err != nil {
				return fmt.Errorf("%s: %w", s, err)
			}
		}
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return splitSymbols(raw), nil
}

func splitSymbols(raw string) []string {
	fields := strings.FieldsFunc(strings.ToUpper(raw), func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	return fields
}

// PromptForExplanation asks whether to explain the result and for an
// optional question. An empty question with explain=true uses the task label.
func PromptForExplanation() (explain bool, question string, err error) {
	if err = survey.AskOne(&survey.Confirm{
		Message: "Explain these numbers with the language model?",
		Default: false,
	}, &explain); err != nil || !explain {
		return explain, "", err
	}

	err = survey.AskOne(&survey.Input{
		Message: "Question (optional):",
		Help:    "The answer only uses the numbers shown above",
	}, &question)
	return explain, strings.TrimSpace(question), err
}
