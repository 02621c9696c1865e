package config

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	launchpadconfig "github.com/orbit-network/launchpad-engine/modules/launchpad/config"
	"github.com/orbit-network/launchpad-engine/pkg/logger"
	"github.com/orbit-network/launchpad-engine/pkg/logger/slogx"
	"github.com/orbit-network/launchpad-engine/pkg/middleware/requestcontext"
	"github.com/orbit-network/launchpad-engine/pkg/middleware/requestlogger"
	"github.com/orbit-network/launchpad-engine/pkg/reportingclient"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	configOnce sync.Once
	config     = &Config{
		Logger: logger.Config{
			Output: "TEXT",
		},
		HTTPServer: HTTPServerConfig{
			Port: 8080,
		},
	}
)

type Config struct {
	Logger     logger.Config          `mapstructure:"logger"`
	APIOnly    bool                   `mapstructure:"api_only"`
	HTTPServer HTTPServerConfig       `mapstructure:"http_server"`
	Reporting  reportingclient.Config `mapstructure:"reporting"`
	Modules    Modules                `mapstructure:"modules"`
}

type HTTPServerConfig struct {
	Port      int                               `mapstructure:"port"`
	Logger    requestlogger.Config              `mapstructure:"logger"`
	RequestIP requestcontext.WithClientIPConfig `mapstructure:"request_ip"`
}

type Modules struct {
	Launchpad launchpadconfig.Config `mapstructure:"launchpad"`
}

// BindPFlag binds a command line flag to a configuration key.
// Must be called before Parse/Load.
func BindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		logger.Panic("failed to bind flag to configuration", slogx.String("key", key), slogx.Error(err))
	}
}

// Parse loads the configuration from the given file (or ./config.yaml by
// default), environment variables and bound flags. Subsequent calls return
// the already parsed configuration.
func Parse(configFile string) Config {
	ctx := logger.WithContext(context.Background(), slog.String("package", "config"))
	configOnce.Do(func() {
		if configFile != "" {
			viper.SetConfigFile(configFile)
		} else {
			viper.AddConfigPath("./")
			viper.SetConfigName("config")
		}

		viper.AutomaticEnv()
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		if err := viper.ReadInConfig(); err != nil {
			var errNotfound viper.ConfigFileNotFoundError
			if errors.As(err, &errNotfound) {
				logger.WarnContext(ctx, "config file not found, use default value", slogx.Error(err))
			} else {
				logger.PanicContext(ctx, "invalid config file", slogx.Error(err))
			}
		}

		if err := viper.Unmarshal(&config); err != nil {
			logger.PanicContext(ctx, "failed to unmarshal config", slogx.Error(err))
		}
	})

	return *config
}

// Load returns the parsed configuration. Parse must have been called first,
// otherwise defaults are returned.
func Load() Config {
	return Parse("")
}
