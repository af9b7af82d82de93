// Package config resolves the settings of a scoring run from flags,
// the environment, an optional YAML file and a .env file.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/naka-gawa/pr-size-score/internal/domain"
	"github.com/naka-gawa/pr-size-score/internal/gateway"
	"github.com/naka-gawa/pr-size-score/internal/storage"
)

// DefaultFile is read when no --config flag is given, if it exists.
const DefaultFile = ".pr-size-score.yaml"

// Environment variable names.
const (
	EnvRepo     = "REPO"
	EnvPRNumber = "PR_NUMBER"
	EnvToken    = "GITHUB_TOKEN"
)

// File is the on-disk configuration.
type File struct {
	Repo    string `yaml:"repo"`
	LogPath string `yaml:"log_path"`
	Source  string `yaml:"source"`
}

// Overrides holds values given on the command line. Empty means unset.
type Overrides struct {
	ConfigPath string
	Repo       string
	PRNumber   string
	LogPath    string
	Source     string
}

// Config is the resolved configuration of one run.
type Config struct {
	Repo     string
	PRNumber int
	Token    string
	LogPath  string
	Source   string
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML from %s: %w", path, err)
	}
	return &f, nil
}

// Load resolves the configuration. Precedence is flag, environment, config file, default.
// A .env file in the working directory is loaded first and never overrides set variables.
func Load(o Overrides) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	file := &File{}
	path := o.ConfigPath
	if path == "" {
		path = DefaultFile
		if _, err := os.Stat(path); err != nil {
			path = ""
		}
	}
	if path != "" {
		f, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		file = f
	}

	cfg := &Config{
		Repo:    firstNonEmpty(o.Repo, os.Getenv(EnvRepo), file.Repo),
		Token:   os.Getenv(EnvToken),
		LogPath: firstNonEmpty(o.LogPath, file.LogPath, storage.DefaultLogPath),
		Source:  firstNonEmpty(o.Source, file.Source, gateway.SourceREST),
	}

	if cfg.Repo == "" {
		return nil, fmt.Errorf("%w: repository is required (--repo or %s)", domain.ErrInvalidInput, EnvRepo)
	}
	prNumber := firstNonEmpty(o.PRNumber, os.Getenv(EnvPRNumber))
	if prNumber == "" {
		return nil, fmt.Errorf("%w: pull request number is required (--pr or %s)", domain.ErrInvalidInput, EnvPRNumber)
	}
	n, err := domain.ParsePRNumber(prNumber)
	if err != nil {
		return nil, err
	}
	cfg.PRNumber = n

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
