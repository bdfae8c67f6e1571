package explain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/phuslu/log"

	"github.com/dyike/psxlens/internal/analytics"
	"github.com/dyike/psxlens/internal/models"
)

// Explained pairs a result with its optional explanation. Result is always set.
type Explained struct {
	Result  *analytics.Result `json:"result"`
	Text    string            `json:"explanation,omitempty"`
	Warning string            `json:"warning,omitempty"`
}

// Explainer attaches model-written explanations to computed results.
// It never fails: any problem is reported as a warning next to the numbers.
type Explainer struct {
	completer Completer
	timeout   time.Duration
	disabled  string
	logger    *log.Logger
}

func NewExplainer(completer Completer, timeout time.Duration, logger *log.Logger) *Explainer {
	return &Explainer{completer: completer, timeout: timeout, logger: logger}
}

// Disabled returns an Explainer that only reports reason.
func Disabled(reason string, logger *log.Logger) *Explainer {
	return &Explainer{disabled: reason, logger: logger}
}

func (e *Explainer) Enabled() bool {
	return e != nil && e.completer != nil && e.disabled == ""
}

// Explain asks the completer to explain res under the configured timeout.
// label names the task; it defaults to res.Task.
func (e *Explainer) Explain(ctx context.Context, res *analytics.Result, label string) *Explained {
	out := &Explained{Result: res}
	if res == nil {
		out.Warning = "explanation skipped: no result to explain"
		return out
	}
	if !e.Enabled() {
		reason := "explanation unavailable"
		if e != nil && e.disabled != "" {
			reason = e.disabled
		}
		out.Warning = reason
		return out
	}
	if strings.TrimSpace(label) == "" {
		label = res.Task
	}

	text, err := e.complete(ctx, label, FormatData(res))
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("empty response")
	}
	if err != nil {
		explErr := &models.ExplanationError{Task: label, Err: err}
		e.logger.Warn().Err(explErr).Str("task", label).Msg("explanation skipped")
		out.Warning = explErr.Error()
		return out
	}

	out.Text = strings.TrimSpace(text)
	return out
}

type completion struct {
	text string
	err  error
}

// complete enforces the timeout even when the completer ignores its context.
func (e *Explainer) complete(ctx context.Context, task, data string) (string, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	done := make(chan completion, 1)
	go func() {
		text, err := e.completer.Complete(ctx, task, data)
		done <- completion{text: text, err: err}
	}()

	select {
	case c := <-done:
		return c.text, c.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
