package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/theirongolddev/snowball/internal/daemon"
	"github.com/theirongolddev/snowball/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagServeAddr         string
	flagServeEventsBuffer int
	flagServeTextLogs     bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve projections over HTTP with an SSE stream of results",
	RunE:  runServe,
}

var serveStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the running server's status",
	RunE:  runServeStatus,
}

func init() {
	serveCmd.PersistentFlags().StringVar(&flagServeAddr, "addr", "127.0.0.1:8787", "HTTP listen address")
	serveCmd.Flags().IntVar(&flagServeEventsBuffer, "events-buffer", 200, "Max in-memory results retained")
	serveCmd.Flags().BoolVar(&flagServeTextLogs, "text-logs", false, "Log as text instead of JSON")

	serveCmd.AddCommand(serveStatusCmd)
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	level := appCfg.Log.Level
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	// the default warn level would hide every projection line
	if flagLogLevel == "" && level == "warn" {
		level = "info"
	}
	if err := configureLogger(logger, level, !flagServeTextLogs); err != nil {
		return err
	}

	cfg := daemon.Config{
		Addr:              flagServeAddr,
		EventsBuffer:      flagServeEventsBuffer,
		Defaults:          resolveParams(cmd, appCfg, ""),
		MaxDurationMonths: appCfg.Plan.MaxYears * 12,
		Logger:            logger,
	}

	if !flagNoHistory && appCfg.History.Enabled {
		st, err := store.Open(store.Path())
		if err != nil {
			logger.WithError(err).Warn("history unavailable, runs will not be recorded")
		} else {
			defer func() { _ = st.Close() }()
			cfg.Recorder = st
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := daemon.New(cfg)
	return svc.Run(ctx)
}

func runServeStatus(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "  Address: http://%s\n", flagServeAddr)

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + flagServeAddr + "/v1/status") //nolint:noctx // short status check
	if err != nil {
		_, _ = fmt.Fprintf(out, "  API status: unreachable (%v)\n", err)
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = fmt.Fprintf(out, "  API status: HTTP %d\n", resp.StatusCode)
		return nil
	}

	var st daemon.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		_, _ = fmt.Fprintf(out, "  API status: malformed response (%v)\n", err)
		return nil
	}

	_, _ = fmt.Fprintf(out, "  Up since: %s\n", st.StartedAt.Local().Format(time.RFC3339))
	_, _ = fmt.Fprintf(out, "  Projections: %d (%d unreachable, %d rejected)\n",
		st.Projections, st.Unreachable, st.Rejected)
	_, _ = fmt.Fprintf(out, "  Retained events: %d, subscribers: %d\n", st.EventCount, st.SubscriberCount)
	_, _ = fmt.Fprintf(out, "  History: %v\n", st.HistoryEnabled)
	if st.LastError != "" {
		_, _ = fmt.Fprintf(out, "  Last error: %s\n", st.LastError)
	}
	return nil
}
