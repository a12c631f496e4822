package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/sealcrypt/sealcrypt"
)

// Settings carries the CLI-level knobs layered on top of the engine
// defaults: config file first, then SEALCRYPT_* environment overrides.
type Settings struct {
	MaxInputBytes   int64
	EncryptedSuffix string
	MaxArchiveFiles int
	LogLevel        string
}

func loadSettings() (*Settings, error) {
	v := viper.New()
	v.SetConfigName("sealcrypt")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "sealcrypt"))
	}

	v.SetEnvPrefix("SEALCRYPT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("max-input-bytes", sealcrypt.DefaultMaxInputBytes)
	v.SetDefault("encrypted-suffix", sealcrypt.DefaultEncryptedSuffix)
	v.SetDefault("max-archive-files", sealcrypt.DefaultMaxArchiveFiles)
	v.SetDefault("log-level", "warn")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; a broken one is not.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return &Settings{
		MaxInputBytes:   v.GetInt64("max-input-bytes"),
		EncryptedSuffix: v.GetString("encrypted-suffix"),
		MaxArchiveFiles: v.GetInt("max-archive-files"),
		LogLevel:        v.GetString("log-level"),
	}, nil
}

func (s *Settings) engineConfig() *sealcrypt.Config {
	return &sealcrypt.Config{
		MaxInputBytes:   s.MaxInputBytes,
		EncryptedSuffix: s.EncryptedSuffix,
		MaxArchiveFiles: s.MaxArchiveFiles,
	}
}

func (s *Settings) newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(s.LogLevel)
	if err != nil {
		level = logrus.WarnLevel
	}
	logger.SetLevel(level)
	return logger
}
