// Package config loads docmorph settings from defaults, an optional YAML
// file, DOCMORPH_* environment variables and bound command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/tsawler/docmorph/format"
)

// Name is the config file base name and the environment prefix source.
const Name = "docmorph"

// Configuration keys.
const (
	KeyConvertTo        = "convert.to"
	KeyConvertWorkers   = "convert.workers"
	KeyConvertOverwrite = "convert.overwrite"
	KeyConvertRecursive = "convert.recursive"
	KeyConvertStrict    = "convert.strict"

	KeyServerAddr         = "server.addr"
	KeyServerMaxFileSize  = "server.max_file_size"
	KeyServerMaxBatchSize = "server.max_batch_size"
	KeyServerMaxConns     = "server.max_conns"
	KeyServerWorkers      = "server.workers"
)

// Defaults.
const (
	DefaultWorkers      = 4
	DefaultMaxFileSize  = 16 << 20
	DefaultMaxBatchSize = 100 << 20
	DefaultMaxConns     = 64
	DefaultAddr         = ":8080"
)

// Convert holds settings for the convert command.
type Convert struct {
	// To is the target format name; empty selects each source's default.
	To        string
	Workers   int
	Overwrite bool
	Recursive bool
	Strict    bool
}

// Target parses To.
func (c Convert) Target() (format.Format, error) {
	if c.To == "" {
		return format.Unknown, nil
	}
	return format.Parse(c.To)
}

// Server holds settings for the HTTP service.
type Server struct {
	Addr         string
	MaxFileSize  int64
	MaxBatchSize int64
	MaxConns     int
	Workers      int
}

// Config is the complete docmorph configuration.
type Config struct {
	Convert Convert
	Server  Server
}

// SetDefaults registers every key's default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyConvertTo, "")
	v.SetDefault(KeyConvertWorkers, DefaultWorkers)
	v.SetDefault(KeyConvertOverwrite, false)
	v.SetDefault(KeyConvertRecursive, false)
	v.SetDefault(KeyConvertStrict, false)

	v.SetDefault(KeyServerAddr, DefaultAddr)
	v.SetDefault(KeyServerMaxFileSize, DefaultMaxFileSize)
	v.SetDefault(KeyServerMaxBatchSize, DefaultMaxBatchSize)
	v.SetDefault(KeyServerMaxConns, DefaultMaxConns)
	v.SetDefault(KeyServerWorkers, DefaultWorkers)
}

// Init prepares v: defaults, environment lookup and the config file.
// An explicit cfgFile must exist; otherwise docmorph.yaml is looked up in
// the working directory and ~/.config/docmorph, and its absence is not an
// error. Init returns the config file used, if any.
func Init(v *viper.Viper, cfgFile string) (string, error) {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(Name)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", Name))
		}
	}

	v.SetEnvPrefix(strings.ToUpper(Name))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("reading config: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// Load reads the configuration from v and validates it.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Convert: Convert{
			To:        v.GetString(KeyConvertTo),
			Workers:   v.GetInt(KeyConvertWorkers),
			Overwrite: v.GetBool(KeyConvertOverwrite),
			Recursive: v.GetBool(KeyConvertRecursive),
			Strict:    v.GetBool(KeyConvertStrict),
		},
		Server: Server{
			Addr:         v.GetString(KeyServerAddr),
			MaxFileSize:  v.GetInt64(KeyServerMaxFileSize),
			MaxBatchSize: v.GetInt64(KeyServerMaxBatchSize),
			MaxConns:     v.GetInt(KeyServerMaxConns),
			Workers:      v.GetInt(KeyServerWorkers),
		},
	}
	return cfg, cfg.Validate()
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, err := c.Convert.Target(); err != nil {
		return fmt.Errorf("%s: %w", KeyConvertTo, err)
	}
	switch {
	case c.Convert.Workers < 1:
		return fmt.Errorf("%s must be at least 1, got %d", KeyConvertWorkers, c.Convert.Workers)
	case c.Server.Workers < 1:
		return fmt.Errorf("%s must be at least 1, got %d", KeyServerWorkers, c.Server.Workers)
	case c.Server.MaxFileSize <= 0:
		return fmt.Errorf("%s must be positive", KeyServerMaxFileSize)
	case c.Server.MaxBatchSize <= 0:
		return fmt.Errorf("%s must be positive", KeyServerMaxBatchSize)
	case c.Server.MaxConns < 1:
		return fmt.Errorf("%s must be at least 1, got %d", KeyServerMaxConns, c.Server.MaxConns)
	case c.Server.Addr == "":
		return fmt.Errorf("%s must not be empty", KeyServerAddr)
	}
	return nil
}
