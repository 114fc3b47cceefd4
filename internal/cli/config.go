package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/boardroom/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"
	envPrefix      = "BOARDROOM"
)

// Config keys.
const (
	cfgKeyBackend        = "backend"
	cfgKeyDataDir        = "data_dir"
	cfgKeyLocale         = "locale"
	cfgKeyUser           = "user"
	cfgKeyRole           = "role"
	cfgKeyLogLevel       = "log.level"
	cfgKeyLogFormat      = "log.format"
	cfgKeyListen         = "listen"
	cfgKeyWatch          = "watch"
	cfgKeyAuthSecret     = "auth.secret"
	cfgKeyAuthIssuer     = "auth.issuer"
	cfgKeyAuthTTL        = "auth.ttl"
	cfgKeyExportSchedule = "export.schedule"
	cfgKeyExportDir      = "export.dir"
	cfgKeyExportFormat   = "export.format"
)

// Defaults written to a new config.yaml and used for absent keys.
const (
	defaultLocale       = "es"
	defaultLogLevel     = "info"
	defaultLogFormat    = "text"
	defaultListen       = ":8080"
	defaultIssuer       = "boardroom"
	defaultTokenTTL     = "12h"
	defaultExportFormat = "csv"
)

// configFile holds the structure written to config.yaml.
type configFile struct {
	Backend string        `yaml:"backend"`
	DataDir string        `yaml:"data_dir,omitempty"`
	Locale  string        `yaml:"locale"`
	Listen  string        `yaml:"listen"`
	Watch   bool          `yaml:"watch"`
	Log     logSection    `yaml:"log"`
	Auth    authSection   `yaml:"auth"`
	Export  exportSection `yaml:"export"`
}

type logSection struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type authSection struct {
	Secret string `yaml:"secret"`
	Issuer string `yaml:"issuer"`
	TTL    string `yaml:"ttl"`
}

type exportSection struct {
	Schedule string `yaml:"schedule"`
	Dir      string `yaml:"dir,omitempty"`
	Format   string `yaml:"format"`
}

func defaultConfig() configFile {
	return configFile{
		Backend: types.BackendSQLite,
		Locale:  defaultLocale,
		Listen:  defaultListen,
		Watch:   true,
		Log:     logSection{Level: defaultLogLevel, Format: defaultLogFormat},
		Auth:    authSection{Issuer: defaultIssuer, TTL: defaultTokenTTL},
		Export:  exportSection{Format: defaultExportFormat},
	}
}

// loadConfig reads config.yaml from configDir using Viper. It creates the
// directory and a default config.yaml on first run. Every key can be
// overridden by a BOARDROOM_ environment variable, with dots replaced by
// underscores (BOARDROOM_LOG_LEVEL).
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := writeConfigIfMissing(filepath.Join(configDir, configFileExt), defaultConfig()); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	def := defaultConfig()
	v := viper.New()
	v.SetDefault(cfgKeyBackend, def.Backend)
	v.SetDefault(cfgKeyLocale, def.Locale)
	v.SetDefault(cfgKeyListen, def.Listen)
	v.SetDefault(cfgKeyWatch, def.Watch)
	v.SetDefault(cfgKeyLogLevel, def.Log.Level)
	v.SetDefault(cfgKeyLogFormat, def.Log.Format)
	v.SetDefault(cfgKeyAuthIssuer, def.Auth.Issuer)
	v.SetDefault(cfgKeyAuthTTL, def.Auth.TTL)
	v.SetDefault(cfgKeyExportFormat, def.Export.Format)

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// writeConfigIfMissing creates config.yaml from cfg if the file does not
// exist. An existing file is left alone.
func writeConfigIfMissing(path string, cfg configFile) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
