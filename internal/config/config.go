package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	"github.com/relicbackup/relic/internal/core"
	"github.com/relicbackup/relic/internal/retention"
)

type Config struct {
	Project    string          `mapstructure:"project"`
	SourcePath string          `mapstructure:"source_path"`
	BackupDir  string          `mapstructure:"backup_dir"`
	LogPath    string          `mapstructure:"log_path"`
	Retention  RetentionConfig `mapstructure:"retention"`
	Transport  TransportConfig `mapstructure:"transport"`
	Notify     NotifyConfig    `mapstructure:"notify"`
	Agent      AgentConfig     `mapstructure:"agent"`
}

// RetentionConfig expresses the tier windows the way operators think of
// them: N days of everything, weekly survivors for M weeks, monthly
// survivors for K months.
type RetentionConfig struct {
	Days   int `mapstructure:"days"`
	Weeks  int `mapstructure:"weeks"`
	Months int `mapstructure:"months"`
}

// Windows converts the operator-facing counts into policy durations.
// Months use a 30-day approximation; the classifier groups by real
// calendar months regardless.
func (r RetentionConfig) Windows() retention.Policy {
	return retention.Policy{
		DailyWindow:   time.Duration(r.Days) * 24 * time.Hour,
		WeeklyWindow:  time.Duration(r.Weeks) * 7 * 24 * time.Hour,
		MonthlyWindow: time.Duration(r.Months) * 30 * 24 * time.Hour,
	}
}

type TransportConfig struct {
	Type   string       `mapstructure:"type"` // "rclone" or "s3"
	Rclone RcloneConfig `mapstructure:"rclone"`
	S3     S3Config     `mapstructure:"s3"`
}

type RcloneConfig struct {
	Remote string   `mapstructure:"remote"`
	Folder string   `mapstructure:"folder"`
	Binary string   `mapstructure:"binary"`
	Flags  []string `mapstructure:"flags"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

type NotifyConfig struct {
	Enabled bool              `mapstructure:"enabled"`
	URL     string            `mapstructure:"url"`
	Headers map[string]string `mapstructure:"headers"`
}

type AgentConfig struct {
	Schedule    string `mapstructure:"schedule"` // standard cron expression
	MetricsAddr string `mapstructure:"metrics_addr"`
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides (RELIC_TRANSPORT_S3_SECRET_KEY etc.)
	v.SetEnvPrefix("RELIC")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, core.WrapError(core.ErrConfig, fmt.Errorf("reading config: %w", err))
	}

	// Expand ${VAR} references in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, core.WrapError(core.ErrConfig, fmt.Errorf("unmarshaling config: %w", err))
	}
	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Project: "backup",
		Retention: RetentionConfig{
			Days:   7,
			Weeks:  4,
			Months: 12,
		},
		Transport: TransportConfig{
			Type: "rclone",
		},
		Notify: NotifyConfig{
			Enabled: false,
		},
		Agent: AgentConfig{
			MetricsAddr: ":9090",
		},
	}
}

// Validate checks the configuration for errors. It runs before any side
// effect; a violation aborts the run entirely.
func (c *Config) Validate() error {
	if c.SourcePath == "" {
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("source_path is required"))
	}
	if c.BackupDir == "" {
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("backup_dir is required"))
	}
	if c.Project == "" {
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("project is required"))
	}

	if err := c.Retention.Windows().Validate(); err != nil {
		return err
	}

	switch c.Transport.Type {
	case "rclone":
		if c.Transport.Rclone.Remote == "" {
			return core.WrapError(core.ErrConfigMissing, fmt.Errorf("transport.rclone.remote is required"))
		}
	case "s3":
		if c.Transport.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing, fmt.Errorf("transport.s3.bucket is required"))
		}
	case "":
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("transport.type is required"))
	default:
		return core.WrapError(core.ErrConfig, fmt.Errorf("unknown transport type %q", c.Transport.Type))
	}

	if c.Notify.Enabled && c.Notify.URL == "" {
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("notify.url is required when notify is enabled"))
	}

	if c.Agent.Schedule != "" {
		if _, err := cron.ParseStandard(c.Agent.Schedule); err != nil {
			return core.WrapError(core.ErrConfig, fmt.Errorf("agent.schedule: %w", err))
		}
	}

	return nil
}
