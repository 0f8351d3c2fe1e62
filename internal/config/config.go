// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config loads holocred settings from built-in defaults, an optional
// YAML file and command-line flags, in increasing order of precedence.
package config

import (
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/holomush/holocred/internal/credential"
	"github.com/holomush/holocred/internal/logging"
)

// Config is the complete holocred configuration.
type Config struct {
	Log     LogConfig     `koanf:"log"`
	Hashing HashingConfig `koanf:"hashing"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// HashingConfig is the policy stamped onto new and changed passwords.
type HashingConfig struct {
	SaltSize   int    `koanf:"salt_size"`
	KeyLength  int    `koanf:"key_length"`
	Iterations int    `koanf:"iterations"`
	Algorithm  string `koanf:"algorithm"`
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"log-format": "log.format",
	"log-level":  "log.level",
	"salt-size":  "hashing.salt_size",
	"key-length": "hashing.key_length",
	"iterations": "hashing.iterations",
	"algorithm":  "hashing.algorithm",
}

// Default returns the built-in configuration.
func Default() Config {
	p := credential.DefaultParams()
	return Config{
		Log: LogConfig{
			Format: "json",
			Level:  "info",
		},
		Hashing: HashingConfig{
			SaltSize:   p.SaltSize,
			KeyLength:  p.KeyLength,
			Iterations: p.Iterations,
			Algorithm:  p.Algorithm.String(),
		},
	}
}

// RegisterFlags adds the configuration flags to fs, defaulted from Default.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("log-format", d.Log.Format, "log format (json or text)")
	fs.String("log-level", d.Log.Level, "log level (debug, info, warn, error)")
	fs.Int("salt-size", d.Hashing.SaltSize, "salt size in bytes for new passwords")
	fs.Int("key-length", d.Hashing.KeyLength, "derived key length in bytes for new passwords")
	fs.Int("iterations", d.Hashing.Iterations, "PBKDF2 iterations for new passwords")
	fs.String("algorithm", d.Hashing.Algorithm, "PBKDF2 hash algorithm for new passwords (SHA-256, SHA-384, SHA-512)")
}

// Load builds the configuration. path may be empty; fs may be nil. Flags the
// user set explicitly override the file, which overrides flag defaults.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if fs != nil {
		provider := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(fs, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").
				With("source", "flags").
				Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").
			With("operation", "unmarshal").
			Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values the process cannot run with.
func (c Config) Validate() error {
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return oops.Code("CONFIG_INVALID").
			With("log_format", c.Log.Format).
			Errorf("log format must be 'json' or 'text', got %q", c.Log.Format)
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return oops.Code("CONFIG_INVALID").
			With("log_level", c.Log.Level).
			Errorf("invalid log level %q", c.Log.Level)
	}

	// The credential code stays visible through the wrap.
	if _, err := c.Hashing.Params(); err != nil {
		return oops.Code("CONFIG_INVALID").
			With("section", "hashing").
			Wrap(err)
	}
	return nil
}

// Params converts the hashing section into a validated credential policy.
func (h HashingConfig) Params() (credential.Params, error) {
	alg, err := credential.ParseAlgorithm(h.Algorithm)
	if err != nil {
		return credential.Params{}, err
	}

	p := credential.Params{
		SaltSize:   h.SaltSize,
		KeyLength:  h.KeyLength,
		Iterations: h.Iterations,
		Algorithm:  alg,
	}
	if err := p.Validate(); err != nil {
		return credential.Params{}, err
	}
	return p, nil
}
