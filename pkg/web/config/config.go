// Package config describes the web server's configuration, loaded from
// fintools.toml and FINTOOLS_* environment variables.
package config

import (
	"net"
	"net/url"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigtoml"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Config describes all configuration options
type Config struct {
	HTTP struct {
		Address string `default:"127.0.0.1:8080" usage:"Address to listen on"`
		BaseURL string `default:"http://localhost:8080" usage:"Public URL for this server"`
	}
	Log struct {
		Level string `default:"info"`
		File  string
		JSON  bool `default:"false" usage:"Output JSON instead of pretty console messages"`
	}
	Data struct {
		Dir string `default:"data" usage:"Directory for the calculation history database"`
	}
	Assets struct {
		Dir string `default:"pkg/web/assets" usage:"Asset directory used in dev mode"`
	}
	Dev bool `default:"false" usage:"Serve assets from disk and reload templates on change"`
}

var logLevels = map[string]zerolog.Level{
	"debug":   zerolog.DebugLevel,
	"info":    zerolog.InfoLevel,
	"warn":    zerolog.WarnLevel,
	"warning": zerolog.WarnLevel,
	"error":   zerolog.ErrorLevel,
	"fatal":   zerolog.FatalLevel,
}

// Loader initializes an empty config object and returns a new Loader for this object
func Loader() (*Config, *aconfig.Loader) {
	cfg := Config{}
	return &cfg, aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "FINTOOLS",
		SkipFlags: true,
		Files:     []string{"fintools.toml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".toml": aconfigtoml.New(),
		},
	})
}

// FileLoader returns a Loader that reads exactly the given file and ignores
// the environment. Used by the static checks to validate a config file
// without picking up ambient FINTOOLS_* variables.
func FileLoader(path string) (*Config, *aconfig.Loader) {
	cfg := Config{}
	return &cfg, aconfig.LoaderFor(&cfg, aconfig.Config{
		SkipEnv:   true,
		SkipFlags: true,
		Files:     []string{path},
		FileDecoders: map[string]aconfig.FileDecoder{
			".toml": aconfigtoml.New(),
		},
	})
}

// Validate verifies that all config fields have valid values
func (cfg *Config) Validate() error {
	if _, _, err := net.SplitHostPort(cfg.HTTP.Address); err != nil {
		return eris.Wrap(err, "invalid value for http.address")
	}

	parsed, err := url.Parse(cfg.HTTP.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return eris.Errorf("invalid value for http.baseurl: %s", cfg.HTTP.BaseURL)
	}

	if _, ok := logLevels[cfg.Log.Level]; !ok {
		return eris.Errorf("invalid value for log.level: %s", cfg.Log.Level)
	}

	return nil
}

// LogLevel converts the .Log.Level field to a zerolog.Level
func (cfg *Config) LogLevel() zerolog.Level {
	return logLevels[cfg.Log.Level]
}
