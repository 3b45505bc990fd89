package app

import (
	"go-lcms/internal/config"

	"go.uber.org/zap"
)

// NewLogger builds a JSON production logger in production and a console
// development logger elsewhere, and installs it as the zap global.
func NewLogger(cfg config.Config) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}
