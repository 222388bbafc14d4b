package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	mdwerror "github.com/msto63/webr/foundation/core/error"
	"github.com/msto63/webr/internal/sink"
	"github.com/msto63/webr/pkg/core/config"
	"github.com/msto63/webr/pkg/core/health"
	"github.com/msto63/webr/pkg/core/version"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Zeigt den Status von Server und Sink",
	Long: `Prüft den WebR-Server und den konfigurierten Plot-Sink.

Der Server gilt als degraded, solange er erreichbar ist, WebR aber noch
initialisiert. Ist ein Check unhealthy, endet der Befehl mit Exit-Code 2.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, _, client, err := setup()
	if err != nil {
		return err
	}

	registry := health.NewRegistry(cfg.General.Name, version.Client)
	registry.Register(health.ReadinessCheck("webr", func(ctx context.Context) (bool, map[string]interface{}, error) {
		status, err := client.Health(ctx)
		details := map[string]interface{}{"url": client.BaseURL()}
		if err != nil {
			return false, details, err
		}
		details["latency"] = status.Latency.Round(time.Millisecond).String()
		if status.HasUptime {
			details["uptime"] = status.Uptime().Round(time.Second).String()
		}
		return status.Ready, details, nil
	}))
	registry.Register(sinkCheck(cfg.Sink))

	report := registry.CheckWithTimeout(cfg.Client.HealthTimeout.Duration + time.Second)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render("WebR Status"))
	fmt.Fprintln(out)
	fmt.Fprintln(out, sectionStyle.Render("Checks:"))
	for _, check := range report.Checks {
		fmt.Fprintf(out, "  %s %-6s %s %s\n",
			statusIcon(check.Status), check.Name, check.Message,
			mutedStyle.Render(formatDetails(check.Details)))
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Gesamt: %s\n", statusIcon(report.Status)+" "+string(report.Status))

	if failed := report.Failed(); len(failed) > 0 {
		return mdwerror.Newf("Checks fehlgeschlagen: %s", strings.Join(failed, ", ")).
			WithCode(mdwerror.CodeServiceUnavailable)
	}
	return nil
}

// sinkCheck verifies that plots can be stored where the config points
func sinkCheck(cfg config.SinkConfig) health.Checker {
	if cfg.Type != "sqlite" {
		return health.DirCheck("sink", cfg.Dir)
	}
	return health.NewChecker("sink", func(ctx context.Context) health.CheckResult {
		result := health.CheckResult{
			Name:    "sink",
			Status:  health.StatusHealthy,
			Details: map[string]interface{}{"path": cfg.Path},
		}
		if _, err := os.Stat(cfg.Path); err != nil {
			result.Status = health.StatusDegraded
			result.Message = "Datenbank wird beim ersten Speichern angelegt"
			return result
		}
		s, err := sink.NewSQLiteSink(sink.SQLiteConfig{Path: cfg.Path})
		if err != nil {
			result.Status = health.StatusUnhealthy
			result.Message = err.Error()
			return result
		}
		defer s.Close()
		if err := s.Ping(ctx); err != nil {
			result.Status = health.StatusUnhealthy
			result.Message = err.Error()
			return result
		}
		result.Message = "Datenbank erreichbar"
		return result
	})
}

func statusIcon(s health.Status) string {
	switch s {
	case health.StatusHealthy:
		return okStyle.Render("[+]")
	case health.StatusDegraded:
		return warnStyle.Render("[~]")
	default:
		return errorStyle.Render("[-]")
	}
}

func formatDetails(details map[string]interface{}) string {
	if len(details) == 0 {
		return ""
	}
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s := "("
	for i, k := range keys {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s=%v", k, details[k])
	}
	return s + ")"
}
