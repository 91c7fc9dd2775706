package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/flowgrid-dev/flowgrid/pkg/layout"
)

// defaultConfigFile is looked up in the working directory when no
// --config flag is given.
const defaultConfigFile = "flowgrid.toml"

// Config is the optional TOML configuration shared by all commands:
//
//	[layout]
//	x_margin = 10
//	y_margin = 5
//	row_margin = 16
//	col_margin = 16
//
//	[server]
//	addr = ":8723"
//	cache_backend = "file"   # file | redis | none
//	redis_addr = "localhost:6379"
type Config struct {
	Layout layout.Options `toml:"layout"`
	Server ServerConfig   `toml:"server"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr         string `toml:"addr"`
	CacheBackend string `toml:"cache_backend"`
	RedisAddr    string `toml:"redis_addr"`
}

// defaultConfig returns the configuration used when no file overrides it.
func defaultConfig() Config {
	return Config{
		Layout: layout.DefaultOptions(),
		Server: ServerConfig{
			Addr:         ":8723",
			CacheBackend: "file",
			RedisAddr:    "localhost:6379",
		},
	}
}

// loadConfig reads the TOML config at path on top of the defaults. An
// empty path falls back to flowgrid.toml in the working directory and is
// not an error when that file does not exist; an explicit path must
// exist.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
