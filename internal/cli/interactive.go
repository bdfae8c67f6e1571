package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"

	"github.com/dyike/psxlens/internal/display"
	"github.com/dyike/psxlens/internal/models"
	"github.com/dyike/psxlens/internal/service"
)

func newInteractiveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Explore one snapshot with interactive prompts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session := &InteractiveSession{app: a, out: cmd.OutOrStdout()}
			return session.Start(cmd.Context())
		},
	}
}

// InteractiveSession answers repeated questions against one cached snapshot.
type InteractiveSession struct {
	app  *app
	out  io.Writer
	snap *models.Snapshot
}

func (s *InteractiveSession) Start(ctx context.Context) error {
	svc := s.app.service(ctx)
	if err := s.refresh(ctx, svc, false); err != nil {
		return err
	}
	return s.runMainLoop(ctx, svc)
}

func (s *InteractiveSession) refresh(ctx context.Context, svc *service.MarketService, force bool) error {
	display.Info(s.out, fmt.Sprintf("loading %s ...", svc.URL()))
	snap, err := svc.Snapshot(ctx, force)
	if err != nil {
		return err
	}
	s.snap = snap
	display.Success(s.out, fmt.Sprintf("snapshot %s: %d records from %d of %d tables",
		snap.ID, snap.Len(), snap.TablesRecognized, snap.TablesSeen))
	return nil
}

func (s *InteractiveSession) runMainLoop(ctx context.Context, svc *service.MarketService) error {
	printer, err := s.app.printer(s.out)
	if err != nil {
		return err
	}

	for {
		action, err := PromptForAction()
		if err != nil {
			return quietInterrupt(err)
		}

		switch action {
		case actionExit:
			return nil
		case actionRefresh:
			if err := s.refresh(ctx, svc, true); err != nil {
				display.Error(s.out, err)
			}
			continue
		}

		q, err := s.buildQuery(service.Intent(action), svc)
		if err != nil {
			return quietInterrupt(err)
		}

		resp, err := svc.RunOn(ctx, s.snap, q)
		if err != nil {
			display.Error(s.out, err)
			continue
		}
		if err := printer.Print(resp); err != nil {
			return err
		}
		fmt.Fprintln(s.out)
	}
}

func (s *InteractiveSession) buildQuery(intent service.Intent, svc *service.MarketService) (service.Query, error) {
	q := service.Query{Intent: intent, N: s.app.cfg.TopN}

	switch intent {
	case service.IntentSymbol:
		symbol, err := PromptForSymbol()
		if err != nil {
			return q, err
		}
		q.Symbols = []string{symbol}
	case service.IntentCompare:
		symbols, err := PromptForSymbols()
		if err != nil {
			return q, err
		}
		q.Symbols = symbols
	}

	if svc.Explainer().Enabled() {
		explain, question, err := PromptForExplanation()
		if err != nil {
			return q, err
		}
		q.Explain, q.Question = explain, question
	}
	return q, nil
}

// quietInterrupt turns Ctrl+C inside a prompt into a clean exit.
func quietInterrupt(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return nil
	}
	return err
}
