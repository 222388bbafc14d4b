// ============================================================================
// mDW WebR Client - Remote R Execution
// ============================================================================
//
// Package:     cmd
// Description: Root command and shared wiring of the webr CLI
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mdwerror "github.com/msto63/webr/foundation/core/error"
	"github.com/msto63/webr/internal/webr"
	"github.com/msto63/webr/pkg/core/config"
	"github.com/msto63/webr/pkg/core/logging"
)

var (
	cfgFile string
	baseURL string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "webr",
	Short: "WebR - R-Code remote ausführen",
	Long: `webr sendet R-Code (optional mit Tabellendaten) an einen WebR-Server,
wertet Konsolenausgabe, Laufzeit und Plots aus und speichert Plots
auf Wunsch im Dateisystem oder in einer SQLite-Datenbank.

Befehle:
  exec     - R-Code ausführen
  health   - Server-Status einmalig abfragen
  wait     - Warten bis der Server bereit ist
  status   - Status von Server und Sink
  version  - Versionen anzeigen

Exit-Codes:
  0  Erfolg
  1  Allgemeiner Fehler
  2  Netzwerk/Timeout/HTTP-Status
  3  Ungültige Server-Antwort
  4  R-Fehler (success=false)`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and prints the error, if any
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(err)
	}
	return err
}

// ExitCode derives the process exit code from the error classification
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return mdwerror.GetCode(err).ExitCode()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config-Datei (default: $WEBR_CONFIG oder ./configs/webr.toml)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "", "Basis-URL des WebR-Servers (überschreibt client.base_url)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose Output")
}

// loadConfig reads --config, then WEBR_CONFIG and the default paths, and
// falls back to built-in defaults when no file exists.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case cfgFile != "":
		cfg, err = config.Load(cfgFile)
	case os.Getenv(config.EnvConfigPath) != "":
		cfg, err = config.LoadFromEnv()
	default:
		cfg, err = config.LoadFromEnv()
		if err != nil {
			cfg, err = config.Default(), nil
		}
	}
	if err != nil {
		return nil, mdwerror.Wrap(err, "Konfiguration konnte nicht geladen werden").
			WithCode(mdwerror.CodeConfigError).
			WithOperation("config.load")
	}

	if baseURL != "" {
		cfg.Client.BaseURL = baseURL
	}
	if verbose {
		cfg.General.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, mdwerror.Wrap(err, "Ungültige Konfiguration").
			WithCode(mdwerror.CodeInvalidConfig).
			WithOperation("config.validate")
	}
	return cfg, nil
}

// newLogger builds the stderr logger from the general section
func newLogger(cfg *config.Config) *logging.Logger {
	return logging.Wrap(logging.NewLogger(logging.LoggerConfig{
		ServiceName: cfg.General.Name,
		Level:       cfg.General.LogLevel,
		Format:      cfg.General.LogFormat,
		Output:      os.Stderr,
	}))
}

// newClient builds the execution client from the client section
func newClient(cfg *config.Config, logger *logging.Logger) (*webr.Client, error) {
	return webr.NewClient(webr.Config{
		BaseURL:          cfg.Client.BaseURL,
		ExecuteTimeout:   cfg.Client.ExecuteTimeout.Duration,
		HealthTimeout:    cfg.Client.HealthTimeout.Duration,
		UserAgent:        cfg.Client.UserAgent,
		MaxResponseBytes: cfg.Client.MaxResponseBytes,
		Logger:           logger,
	})
}

// setup loads config and builds logger and client for a command
func setup() (*config.Config, *logging.Logger, *webr.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger := newLogger(cfg)
	client, err := newClient(cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, client, nil
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("Fehler:"), err)
}
