// Package logging builds the service's zap logger.
package logging

import (
	"go.uber.org/zap"
)

// New returns a JSON logger at info level in production and a console
// logger at debug level otherwise. When file is set, output is written
// there as well as to stderr.
func New(production bool, file string) (*zap.Logger, error) {
	var cfg zap.Config
	if production {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	if file != "" {
		cfg.OutputPaths = append(cfg.OutputPaths, file)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	logger.Debug("logging initialized", zap.String("level", cfg.Level.String()))
	return logger, nil
}
