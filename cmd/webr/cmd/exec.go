// ============================================================================
// mDW WebR Client - Remote R Execution
// ============================================================================
//
// Package:     cmd
// Description: CLI command to execute R code on the WebR server
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	mdwerror "github.com/msto63/webr/foundation/core/error"
	"github.com/msto63/webr/internal/records"
	"github.com/msto63/webr/internal/sink"
	"github.com/msto63/webr/internal/webr"
	"github.com/msto63/webr/pkg/core/config"
)

var (
	execFile     string
	execData     string
	execDB       string
	execQuery    string
	execSave     bool
	execSaveDir  string
	execSinkType string
	execPrefix   string
	execJSON     bool
	execNoFail   bool
	execTimeout  time.Duration
)

var execCmd = &cobra.Command{
	Use:   "exec [code]",
	Short: "Führt R-Code auf dem WebR-Server aus",
	Long: `Führt R-Code auf dem WebR-Server aus und zeigt Ausgabe, Laufzeit und Plots.

Der Code kommt aus dem Argument, aus einer Datei (-f) oder von stdin (-f -).
Tabellendaten werden als 'data' an den Server übergeben, entweder aus einer
JSON/YAML-Datei (--data) oder aus einer SQLite-Abfrage (--db/--query).

Beispiele:
  webr exec 'print(1+1)'
  webr exec -f analyse.R --data rows.json --save-dir plots
  webr exec -f plot.R --db mydata.db --query "SELECT * FROM sales" --save
  webr exec -f plot.R --save --sink sqlite --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExec,
}

func init() {
	rootCmd.AddCommand(execCmd)

	execCmd.Flags().StringVarP(&execFile, "file", "f", "", "R-Skript-Datei ('-' für stdin)")
	execCmd.Flags().StringVar(&execData, "data", "", "Datensätze als JSON- oder YAML-Datei")
	execCmd.Flags().StringVar(&execDB, "db", "", "SQLite-Datenbank als Datenquelle")
	execCmd.Flags().StringVar(&execQuery, "query", "", "SQL-Abfrage für --db")
	execCmd.Flags().BoolVar(&execSave, "save", false, "Plots im konfigurierten Sink speichern")
	execCmd.Flags().StringVar(&execSaveDir, "save-dir", "", "Plots in dieses Verzeichnis speichern (impliziert --save)")
	execCmd.Flags().StringVar(&execSinkType, "sink", "", "Sink-Typ: file oder sqlite (überschreibt sink.type)")
	execCmd.Flags().StringVar(&execPrefix, "prefix", "", "Dateinamen-Präfix der Plots (default: sink.prefix)")
	execCmd.Flags().BoolVar(&execJSON, "json", false, "Ergebnis als JSON ausgeben")
	execCmd.Flags().BoolVar(&execNoFail, "no-fail", false, "R-Fehler nicht als Exit-Code 4 melden")
	execCmd.Flags().DurationVar(&execTimeout, "timeout", 0, "Timeout der Ausführung (default: client.execute_timeout)")
}

// resultView is the JSON shape of an execution result
type resultView struct {
	Success         bool     `json:"success"`
	Output          string   `json:"output"`
	Error           string   `json:"error,omitempty"`
	ExecutionTimeMs int64    `json:"executionTimeMs"`
	Artifacts       int      `json:"artifacts"`
	FailedArtifacts []int    `json:"failedArtifacts,omitempty"`
	Saved           []string `json:"saved,omitempty"`
}

func runExec(cmd *cobra.Command, args []string) error {
	code, err := readCode(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	if execTimeout < 0 {
		return mdwerror.New("--timeout darf nicht negativ sein").WithCode(mdwerror.CodeInvalidInput)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if execTimeout > 0 {
		cfg.Client.ExecuteTimeout = config.Duration{Duration: execTimeout}
	}
	logger := newLogger(cfg)
	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rows, err := loadRecords(ctx)
	if err != nil {
		return err
	}
	if !rows.Uniform() {
		logger.Warn("records have differing field sets", "fields", rows.Fields())
	}

	var result *webr.ExecutionResult
	if execNoFail {
		result, err = client.Execute(ctx, code, rows)
	} else {
		result, err = client.ExecuteOrFail(ctx, code, rows)
	}
	if result == nil {
		return err
	}
	execErr := err

	view := resultView{
		Success:         result.Success,
		Output:          result.Output,
		Error:           result.ErrorMessage,
		ExecutionTimeMs: result.ExecutionTimeMillis,
		Artifacts:       len(result.Artifacts),
		FailedArtifacts: result.FailedArtifacts(),
	}

	if execSave || execSaveDir != "" {
		saved, err := saveArtifacts(ctx, cfg, result)
		if err != nil {
			return err
		}
		view.Saved = saved
	}

	out := cmd.OutOrStdout()
	if execJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(view); err != nil {
			return err
		}
	} else {
		printResult(out, view)
	}

	return execErr
}

// readCode returns the R source from the argument, a file or stdin
func readCode(stdin io.Reader, args []string) (string, error) {
	switch {
	case execFile != "" && len(args) > 0:
		return "", mdwerror.New("Code als Argument und --file schließen sich aus").WithCode(mdwerror.CodeInvalidInput)
	case execFile == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", mdwerror.Wrap(err, "stdin konnte nicht gelesen werden").WithCode(mdwerror.CodeInvalidInput)
		}
		return string(data), nil
	case execFile != "":
		data, err := os.ReadFile(execFile)
		if err != nil {
			return "", mdwerror.Wrap(err, "Skript konnte nicht gelesen werden").WithCode(mdwerror.CodeInvalidInput)
		}
		return string(data), nil
	case len(args) == 1:
		return args[0], nil
	default:
		return "", mdwerror.New("kein R-Code angegeben (Argument oder --file)").WithCode(mdwerror.CodeRequiredField)
	}
}

// loadRecords reads --data or --db/--query
func loadRecords(ctx context.Context) (webr.Records, error) {
	switch {
	case execData != "" && execDB != "":
		return nil, mdwerror.New("--data und --db schließen sich aus").WithCode(mdwerror.CodeInvalidInput)
	case execData != "":
		rows, err := records.Load(execData)
		if err != nil {
			return nil, mdwerror.Wrap(err, "Datensätze konnten nicht geladen werden").WithCode(mdwerror.CodeInvalidInput)
		}
		return rows, nil
	case execDB != "":
		if execQuery == "" {
			return nil, mdwerror.New("--db benötigt --query").WithCode(mdwerror.CodeRequiredField)
		}
		rows, err := records.FromSQLite(ctx, execDB, execQuery)
		if err != nil {
			return nil, mdwerror.Wrap(err, "Datenbankabfrage fehlgeschlagen").WithCode(mdwerror.CodeStorageError)
		}
		return rows, nil
	default:
		return nil, nil
	}
}

// saveArtifacts stores the plots in the configured or overridden sink
func saveArtifacts(ctx context.Context, cfg *config.Config, result *webr.ExecutionResult) ([]string, error) {
	sinkCfg := cfg.Sink
	if execSaveDir != "" {
		sinkCfg.Type = "file"
		sinkCfg.Dir = execSaveDir
	}
	if execSinkType != "" {
		sinkCfg.Type = execSinkType
	}
	prefix := sinkCfg.Prefix
	if execPrefix != "" {
		prefix = execPrefix
	}

	s, err := sink.Open(sinkCfg)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	report, err := sink.SaveArtifacts(ctx, s, result, prefix)
	if err != nil {
		return nil, err
	}
	for _, idx := range report.Skipped {
		fmt.Fprintf(os.Stderr, "%s Plot %d konnte nicht dekodiert werden und wurde übersprungen\n", warnStyle.Render("Warnung:"), idx+1)
	}
	return report.Paths, nil
}

func printResult(w io.Writer, v resultView) {
	if v.Output != "" {
		fmt.Fprintln(w, strings.TrimRight(v.Output, "\n"))
	}

	status := okStyle.Render("✓ Erfolgreich")
	if !v.Success {
		status = errorStyle.Render("✗ R-Fehler: ") + v.Error
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s  %s\n", status,
		mutedStyle.Render(fmt.Sprintf("(%s, %d Plot(s))", time.Duration(v.ExecutionTimeMs)*time.Millisecond, v.Artifacts)))

	if len(v.FailedArtifacts) > 0 {
		fmt.Fprintf(w, "%s Plots nicht dekodierbar: %v\n", warnStyle.Render("Warnung:"), v.FailedArtifacts)
	}
	for _, path := range v.Saved {
		fmt.Fprintf(w, "  %s %s\n", okStyle.Render("gespeichert:"), path)
	}
}
