package control

import (
	"fmt"
	"strings"

	"transcritor/internal/config"
	"transcritor/internal/logging"

	"github.com/sirupsen/logrus"
)

// overrides are the config fields a command may set from flags.
type overrides struct {
	backend     string
	window      float64
	chunk       float64
	metricsAddr string
}

// load reads the config, applies flag overrides and configures logging.
func load(cfgPath string, o overrides) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	if err := o.apply(cfg); err != nil {
		return nil, nil, err
	}
	logger, err := logging.Configure(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func (o overrides) apply(cfg *config.Config) error {
	if o.backend != "" {
		cfg.ASR.Backend = strings.ToLower(o.backend)
		config.RefreshAPIKey(cfg)
	}
	if o.window != 0 {
		cfg.Audio.WindowSec = o.window
	}
	if o.chunk != 0 {
		cfg.Video.ChunkSec = o.chunk
	}
	if o.metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = o.metricsAddr
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("flags: %w", err)
	}
	return nil
}
