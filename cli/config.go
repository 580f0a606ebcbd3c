package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/goto/salt/cmdx"
	"github.com/goto/salt/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/spotlight-project/spotlight/internal/server"
	"github.com/spotlight-project/spotlight/internal/store/bleve"
	"github.com/spotlight-project/spotlight/internal/store/postgres"
	"github.com/spotlight-project/spotlight/internal/workermanager"
)

const configFlag = "config"

type Config struct {
	// Log
	LogLevel string `yaml:"log_level" mapstructure:"log_level" default:"info"`

	// Database
	DB postgres.Config `yaml:"db" mapstructure:"db"`

	// Full-text indexes
	Index bleve.Config `yaml:"index" mapstructure:"index"`

	// Async index maintenance
	Worker workermanager.Config `yaml:"worker" mapstructure:"worker"`

	// Service
	Service server.Config `yaml:"service" mapstructure:"service"`
}

func configCommand(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config <command>",
		Short: "Manage server configurations",
		Example: heredoc.Doc(`
			$ spotlight config init
			$ spotlight config list`),
	}

	cmd.AddCommand(configInitCommand())
	cmd.AddCommand(configListCommand(cfg))

	return cmd
}

func configInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a new server configuration",
		Example: heredoc.Doc(`
			$ spotlight config init
		`),
		Annotations: map[string]string{
			"group": "core",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cmdx.SetConfig("spotlight")

			if err := cfg.Init(&Config{}); err != nil {
				return err
			}

			fmt.Printf("config created: %v\n", cfg.File())
			return nil
		},
	}
}

func configListCommand(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List server configuration settings",
		Example: heredoc.Doc(`
			$ spotlight config list
		`),
		Annotations: map[string]string{
			"group": "core",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return yaml.NewEncoder(os.Stdout).Encode(*cfg)
		},
	}
}

func LoadConfig() (*Config, error) {
	var cfg Config
	err := cmdx.SetConfig("spotlight").Load(&cfg)
	if err != nil {
		if errors.As(err, &config.ConfigFileNotFoundError{}) {
			return LoadFromCurrentDir()
		}
		return &cfg, err
	}
	return &cfg, nil
}

func LoadFromCurrentDir() (*Config, error) {
	var cfg Config
	opts := []config.LoaderOption{
		config.WithPath("./"),
		config.WithName("spotlight.yaml"),
		config.WithEnvKeyReplacer(".", "_"),
		config.WithEnvPrefix("SPOTLIGHT"),
	}

	if err := config.NewLoader(opts...).Load(&cfg); err != nil {
		if errors.As(err, &config.ConfigFileNotFoundError{}) {
			return &cfg, ErrConfigNotFound
		}
		return &cfg, err
	}
	return &cfg, nil
}

func LoadConfigFromFlag(cfgFile string, cfg *Config) error {
	return config.NewLoader(config.WithFile(cfgFile)).Load(cfg)
}
