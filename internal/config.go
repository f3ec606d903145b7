package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// DefaultTasksFile is the task file read when no --file flag is given.
	DefaultTasksFile = "dockertask.yml"

	// DefaultLogLevel keeps diagnostics quiet unless asked for.
	DefaultLogLevel = "warn"

	// EnvPrefix namespaces the environment variables read into Config.
	EnvPrefix = "DOCKERTASK"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

// DaemonConfig holds the connection settings used to build a daemon client.
type DaemonConfig struct {
	Host          string `mapstructure:"host"`
	APIVersion    string `mapstructure:"api_version"`
	MinAPIVersion string `mapstructure:"min_api_version"`
	TLSCA         string `mapstructure:"tls_ca"`
	TLSCert       string `mapstructure:"tls_cert"`
	TLSKey        string `mapstructure:"tls_key"`
}

// Override returns a copy of d with any daemon settings present in options
// applied on top. Tasks use this to point a single invocation at a
// different daemon.
func (d DaemonConfig) Override(options Options) (DaemonConfig, error) {
	if len(options) == 0 {
		return d, nil
	}

	if err := options.Decode(&d); err != nil {
		return DaemonConfig{}, fmt.Errorf("invalid daemon options: %w", err)
	}
	return d, nil
}

type Config struct {
	Daemon    DaemonConfig `mapstructure:"daemon"`
	TasksFile string       `mapstructure:"tasks_file"`
	Progress  bool         `mapstructure:"progress"`
	LogLevel  string       `mapstructure:"log_level"`
}

// LoadConfig builds the configuration from, in increasing precedence, built-in
// defaults, a .dockertask.yaml file in the working directory or $HOME, a .env
// file in the working directory, and DOCKERTASK_* environment variables. Flags
// bound to v by the caller take precedence over all of these.
//
// The interactive argument is the default for progress output, normally
// whether stdout is a terminal.
func LoadConfig(v *viper.Viper, workingDir string, interactive bool) (Config, error) {
	envFile := filepath.Join(workingDir, ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load environment file %q: %w\nCheck the file uses KEY=value lines", envFile, err)
	}

	v.SetDefault("tasks_file", DefaultTasksFile)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("progress", interactive)
	v.SetDefault("daemon.host", "")
	v.SetDefault("daemon.api_version", "")
	v.SetDefault("daemon.min_api_version", "")
	v.SetDefault("daemon.tls_ca", "")
	v.SetDefault("daemon.tls_cert", "")
	v.SetDefault("daemon.tls_key", "")

	v.SetConfigName(".dockertask")
	v.SetConfigType("yaml")
	v.AddConfigPath(workingDir)
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if config.Daemon.Host == "" {
		config.Daemon.Host = os.Getenv("DOCKER_HOST")
	}

	if config.TasksFile != "" && !filepath.IsAbs(config.TasksFile) {
		config.TasksFile = filepath.Join(workingDir, config.TasksFile)
	}

	return config, nil
}
