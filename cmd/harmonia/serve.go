// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/harmonia/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the transcription pipeline over HTTP",
	Long: `Serve exposes POST /transcribe (analysis JSON in, score JSON or MIDI
out) and GET /presets. Configuration and --style resolve the same way as
for transcribe; a ?style= query parameter overrides the style per request.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := transcriptionConfig(cmd, 0)
	if err != nil {
		return err
	}
	cat, err := catalog(cmd)
	if err != nil {
		return err
	}
	addr, _ := cmd.Flags().GetString("addr")

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewServer(cfg, cat, os.Stdout).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "listening on %s\n", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")

	rootCmd.AddCommand(serveCmd)
}
