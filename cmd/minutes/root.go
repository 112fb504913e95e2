package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/minutes/bootstrap"
	"github.com/kbukum/minutes/config"
)

type rootOptions struct {
	configFile string
	envFile    string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "minutes",
		Short: "Meeting transcript attribution and analysis",
		Long: `minutes groups diarized speech-to-text tokens into speaker turns,
attributes action items to owners with inferred due dates, and runs
model-backed meeting analysis. Every command is also served over HTTP by
"minutes serve".`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file (default: ./config.yml when present)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", ".env file loaded before MINUTES_* variables are read")

	cmd.AddCommand(
		newServeCommand(opts),
		newTranscribeCommand(opts),
		newTurnsCommand(opts),
		newAttributeCommand(opts),
		newCommitmentsCommand(opts),
		newRelabelCommand(opts),
		newAnalyzeCommand(opts),
		newQueryCommand(opts),
		newTranscriptsCommand(opts),
		newVersionCommand(),
	)
	return cmd
}

func (o *rootOptions) load() (*Config, error) {
	var loaderOpts []config.LoaderOption
	if o.configFile != "" {
		loaderOpts = append(loaderOpts, config.WithConfigFile(o.configFile))
	}
	if o.envFile != "" {
		loaderOpts = append(loaderOpts, config.WithEnvFile(o.envFile))
	}
	cfg := &Config{}
	if err := config.LoadConfig(serviceName, cfg, loaderOpts...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp loads and validates the config. Logs go to stderr for one-shot
// commands so stdout carries only the result.
func (o *rootOptions) newApp(task bool) (*app, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, err
	}
	if task && cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}
	a, err := bootstrap.NewApp(cfg)
	if err != nil {
		return nil, err
	}
	a.Register(telemetryComponents(cfg)...)
	return a, nil
}

// readInput reads a file, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func writeJSON(w io.Writer, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}
