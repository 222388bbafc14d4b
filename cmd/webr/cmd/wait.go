// ============================================================================
// mDW WebR Client - Remote R Execution
// ============================================================================
//
// Package:     cmd
// Description: CLI command that waits until the WebR server is ready
// Author:      Mike Stoffels
// Created:     2025-12-07
// License:     MIT
// ============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	mdwerror "github.com/msto63/webr/foundation/core/error"
	"github.com/msto63/webr/internal/tui/waitview"
)

var (
	waitInterval time.Duration
	waitTimeout  time.Duration
	waitPlain    bool
)

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wartet, bis der WebR-Server bereit ist",
	Long: `Fragt /api/health im festen Intervall ab, bis der Server
webrInitialized=true meldet oder das Zeitlimit erreicht ist.

Im Terminal läuft eine interaktive Anzeige, sonst (oder mit --plain)
wird pro Versuch eine Zeile ausgegeben.

Tastenkürzel:
  q / Esc     Abbrechen`,
	RunE: runWait,
}

func init() {
	rootCmd.AddCommand(waitCmd)

	waitCmd.Flags().DurationVar(&waitInterval, "interval", 0, "Abfrage-Intervall (default: wait.interval)")
	waitCmd.Flags().DurationVar(&waitTimeout, "timeout", 0, "Zeitlimit (default: wait.timeout)")
	waitCmd.Flags().BoolVar(&waitPlain, "plain", false, "Ohne interaktive Anzeige")
}

func runWait(cmd *cobra.Command, args []string) error {
	cfg, _, client, err := setup()
	if err != nil {
		return err
	}

	interval := cfg.Wait.Interval.Duration
	if waitInterval > 0 {
		interval = waitInterval
	}
	timeout := cfg.Wait.Timeout.Duration
	if waitTimeout > 0 {
		timeout = waitTimeout
	}

	notReady := func(last error) error {
		e := mdwerror.Newf("WebR nach %s nicht bereit", timeout).
			WithCode(mdwerror.CodeServiceInitialization).
			WithOperation("wait")
		if last != nil {
			e = e.WithDetail("last_error", last.Error())
		}
		return e
	}

	if waitPlain || !isatty.IsTerminal(os.Stdout.Fd()) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		out := cmd.OutOrStdout()
		_, err := waitview.Poll(ctx, client, interval, timeout, func(a waitview.Attempt) {
			switch {
			case a.Err != nil:
				fmt.Fprintf(out, "[%d] nicht erreichbar: %v\n", a.N, a.Err)
			case a.Status.Ready:
				fmt.Fprintf(out, "[%d] bereit\n", a.N)
			default:
				fmt.Fprintf(out, "[%d] initialisiert noch\n", a.N)
			}
		})
		if err != nil {
			if ctx.Err() != nil {
				return mdwerror.Wrap(err, "abgebrochen").WithCode(mdwerror.CodeCanceled)
			}
			return notReady(err)
		}
		return nil
	}

	model := waitview.New(client, waitview.Config{
		URL:      client.BaseURL(),
		Interval: interval,
		Timeout:  timeout,
	})

	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	m := final.(waitview.Model)
	switch {
	case m.Ready():
		return nil
	case m.Aborted():
		return mdwerror.New("abgebrochen").WithCode(mdwerror.CodeCanceled)
	default:
		return notReady(m.LastError())
	}
}
