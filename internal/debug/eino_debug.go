package debug

import (
	"context"

	"github.com/cloudwego/eino-ext/devops"
	"go.uber.org/zap"
)

// InitEino starts the eino devops debug server when enabled. The
// server is a development aid, so a failed start is logged and
// swallowed rather than aborting the run.
func InitEino(ctx context.Context, enabled bool, log *zap.Logger) {
	if !enabled {
		return
	}

	if err := devops.Init(ctx); err != nil {
		log.Warn("eino debug server failed to start", zap.Error(err))
		return
	}

	log.Info("eino debug server started", zap.String("url", "http://localhost:52538"))
}
