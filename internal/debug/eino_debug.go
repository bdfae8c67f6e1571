package debug

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/devops"
	"github.com/phuslu/log"

	"github.com/dyike/psxlens/config"
)

// EinoDebugger starts the eino devops server so the explain chain can be
// inspected in the visual debugger.
type EinoDebugger struct {
	config *config.Config
	logger *log.Logger
}

func NewEinoDebugger(cfg *config.Config, logger *log.Logger) *EinoDebugger {
	return &EinoDebugger{config: cfg, logger: logger}
}

func (d *EinoDebugger) IsEnabled() bool {
	return d.config.EinoDebugEnabled
}

// Initialize is a no-op unless EINO_DEBUG_ENABLED is set. It must run before
// the explain chain is compiled.
func (d *EinoDebugger) Initialize(ctx context.Context) error {
	if !d.IsEnabled() {
		return nil
	}

	if err := devops.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize Eino debug plugin: %w", err)
	}

	d.logger.Info().Msg("eino debug server started")
	return nil
}
