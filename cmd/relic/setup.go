package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/relicbackup/relic/internal/config"
	"github.com/relicbackup/relic/internal/notifier"
	"github.com/relicbackup/relic/internal/notifier/webhook"
	"github.com/relicbackup/relic/internal/transport"
	"github.com/relicbackup/relic/internal/transport/rclone"
	"github.com/relicbackup/relic/internal/transport/s3"
)

// loadConfig reads and validates the configuration before anything else
// runs. A bad config aborts with no side effects.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.Defaults()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func buildTransport(cfg *config.Config, log *zap.Logger) (transport.Transport, error) {
	switch cfg.Transport.Type {
	case "rclone":
		return rclone.New(rclone.Config{
			Remote: cfg.Transport.Rclone.Remote,
			Folder: cfg.Transport.Rclone.Folder,
			Binary: cfg.Transport.Rclone.Binary,
			Flags:  cfg.Transport.Rclone.Flags,
		}, log)
	case "s3":
		return s3.New(s3.Config{
			Bucket:    cfg.Transport.S3.Bucket,
			Endpoint:  cfg.Transport.S3.Endpoint,
			Region:    cfg.Transport.S3.Region,
			AccessKey: cfg.Transport.S3.AccessKey,
			SecretKey: cfg.Transport.S3.SecretKey,
			Prefix:    cfg.Transport.S3.Prefix,
		})
	default:
		return nil, fmt.Errorf("unknown transport type %q", cfg.Transport.Type)
	}
}

// buildNotifier returns nil when notification is disabled.
func buildNotifier(cfg *config.Config) (notifier.Notifier, error) {
	if !cfg.Notify.Enabled {
		return nil, nil
	}
	return webhook.New(cfg.Notify.URL, cfg.Notify.Headers)
}
