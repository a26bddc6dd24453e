package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/loftlab/huddle/pkg/api"
	"github.com/loftlab/huddle/pkg/config"
	"github.com/loftlab/huddle/pkg/events"
	"github.com/loftlab/huddle/pkg/log"
	"github.com/loftlab/huddle/pkg/messenger"
	"github.com/loftlab/huddle/pkg/metrics"
	"github.com/loftlab/huddle/pkg/storage"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the huddle API server",
	Long: `Run the huddle server: opens the embedded store, starts the change
broker, and serves the HTTP API until interrupted.

Configuration loads from defaults, then the optional --config file, then
HUDDLE_* environment variables.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("config", "c", "", "Path to a YAML config file")
	serveCmd.Flags().String("data-dir", "", "Data directory (overrides config)")
	serveCmd.Flags().String("listen", "", "API listen address (overrides config)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
		cfg.DataDir = dataDir
	}
	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.Server.ListenAddr = listen
	}

	log.Init(log.Config{
		Level:      log.Level(cfg.Log.Level),
		JSONOutput: cfg.Log.JSON,
		Output:     os.Stderr,
	})

	fmt.Println("Starting huddle server...")
	fmt.Printf("  Data Directory: %s\n", cfg.DataDir)
	fmt.Printf("  API Address: %s\n", cfg.Server.ListenAddr)
	fmt.Println()

	broker := events.NewBroker()
	broker.Start()

	store, err := storage.NewBoltStore(cfg.DataDir, broker)
	if err != nil {
		return fmt.Errorf("failed to open store: %v", err)
	}
	fmt.Println("✓ Store opened")

	collector := metrics.NewCollector(store)
	collector.Start()
	fmt.Println("✓ Metrics collector started")

	var m messenger.Messenger
	if cfg.Messenger.BaseURL != "" {
		m = messenger.NewWebhook(messenger.WebhookOptions{
			BaseURL: cfg.Messenger.BaseURL,
			Token:   cfg.Messenger.Token,
		})
		fmt.Println("✓ Messenger channel configured")
	}

	server := api.NewServer(api.ServerConfig{
		Store:     store,
		Broker:    broker,
		Messenger: m,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe(cfg.Server.ListenAddr)
	}()

	fmt.Println()
	fmt.Println("Server is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		fmt.Println("\nShutting down...")
	case err := <-errCh:
		fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
	}

	server.Close()
	collector.Stop()
	broker.Stop()
	if err := store.Close(); err != nil {
		return fmt.Errorf("failed to close store: %v", err)
	}

	fmt.Println("✓ Shutdown complete")
	return nil
}
