package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/clear-signing/erc7730/fetch"
	"github.com/clear-signing/erc7730/model"
	"github.com/clear-signing/erc7730/output"
	"github.com/clear-signing/erc7730/resolve"
)

type app struct {
	configPath string
	verbose    bool

	log   *zap.Logger
	fetch *fetch.Service
}

func newRootCommand() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:           "erc7730",
		Short:         "Resolve and convert clear signing descriptors",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a YAML configuration file")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newResolveCommand(a))
	cmd.AddCommand(newConvertCommand(a))
	return cmd
}

func (a *app) init() error {
	cfg, err := loadConfig(a.configPath)
	if err != nil {
		return err
	}
	logCfg := zap.NewProductionConfig()
	if a.verbose {
		logCfg = zap.NewDevelopmentConfig()
	}
	log, err := logCfg.Build()
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	a.log = log
	a.fetch = fetch.New(cfg.Fetch, log)
	return nil
}

type config struct {
	Fetch fetch.Config `yaml:"fetch"`
}

func loadConfig(path string) (config, error) {
	var cfg config
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return config{}, fmt.Errorf("reading configuration: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return config{}, fmt.Errorf("parsing configuration: %w", err)
	}
	return cfg, nil
}

// loadAndResolve runs the shared front half of every command: parse the
// descriptor file and resolve it, reporting problems to the console as they
// occur.
func (a *app) loadAndResolve(ctx context.Context, path string, buffered *output.Buffered) (*model.ResolvedDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading descriptor: %w", err)
	}
	d, err := model.ParseInput(data)
	if err != nil {
		return nil, err
	}
	sink := output.Tee{buffered, &output.Console{Log: a.log}}
	r := &resolve.Resolver{Fetch: a.fetch}
	resolved := r.Resolve(ctx, d, sink)
	if resolved == nil {
		return nil, fmt.Errorf("descriptor %s could not be resolved", path)
	}
	return resolved, nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
