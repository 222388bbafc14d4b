package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var healthJSON bool

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Fragt den Server-Status einmalig ab",
	Long: `Fragt /api/health einmalig ab.

"nicht bereit" ist keine Störung: der Server läuft, initialisiert WebR aber
noch. Ist der Server nicht erreichbar, endet der Befehl mit Exit-Code 2.`,
	RunE: runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)

	healthCmd.Flags().BoolVar(&healthJSON, "json", false, "Status als JSON ausgeben")
}

func runHealth(cmd *cobra.Command, args []string) error {
	_, _, client, err := setup()
	if err != nil {
		return err
	}

	status, err := client.Health(context.Background())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if healthJSON {
		view := map[string]interface{}{
			"ready":     status.Ready,
			"latencyMs": status.Latency.Milliseconds(),
		}
		if status.HasUptime {
			view["uptime"] = status.UptimeSeconds
		}
		return json.NewEncoder(out).Encode(view)
	}

	fmt.Fprintf(out, "%s %s\n", titleStyle.Render("WebR"), client.BaseURL())
	if status.Ready {
		fmt.Fprintf(out, "  %s\n", okStyle.Render("✓ bereit"))
	} else {
		fmt.Fprintf(out, "  %s\n", warnStyle.Render("… initialisiert noch"))
	}
	if status.HasUptime {
		fmt.Fprintf(out, "  Uptime:  %s\n", status.Uptime().Round(time.Second))
	}
	fmt.Fprintf(out, "  Latenz:  %s\n", status.Latency.Round(time.Millisecond))
	return nil
}
