package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cuemby/tablestore/pkg/config"
	"github.com/cuemby/tablestore/pkg/log"
	"github.com/cuemby/tablestore/pkg/metastore"
	"github.com/cuemby/tablestore/pkg/metrics"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version = "dev"
	Commit  = "unknown"
)

var cfg *config.Store

// storeOptions translates the loaded config into the Options metastore.Open
// expects, so every command that opens the store honors the same
// autosave/page-size/default-service-properties settings.
func storeOptions() metastore.Options {
	return metastore.Options{
		AutosaveInterval:         cfg.AutosaveInterval,
		QueryPageSize:            cfg.QueryPageSize,
		DefaultServiceProperties: cfg.DefaultServiceProperties,
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "tablestore",
	Short:   "tablestore - a Table-storage-compatible metadata store",
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("tablestore version %s\nCommit: %s\n", Version, Commit))

	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("data-dir", "", "Data directory (overrides config)")
	rootCmd.PersistentFlags().Duration("autosave-interval", 0, "Snapshot interval (overrides config)")
	rootCmd.PersistentFlags().Int("query-page-size", 0, "Default query page size (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format (overrides config)")

	cobra.OnInitialize(loadConfig)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tableCmd)
	rootCmd.AddCommand(accountCmd)
}

func loadConfig() {
	path, _ := rootCmd.PersistentFlags().GetString("config")
	loaded, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := loaded.ApplyFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	cfg = loaded

	log.Init(log.Config{
		Level:      log.Level(cfg.LogLevel),
		JSONOutput: cfg.LogJSON,
	})
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Open the metadata store and serve metrics/health endpoints",
	Long: `serve opens the durable-collection metadata store at the
configured data directory, starts its autosave ticker and change-event
broker, and exposes Prometheus metrics plus health/readiness/liveness
endpoints until interrupted.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("metrics-addr", "127.0.0.1:9090", "Address for the metrics/health HTTP endpoints")
}

func runServe(cmd *cobra.Command, args []string) error {
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

	st, err := metastore.Open(cfg.DataDir, storeOptions())
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	fmt.Printf("✓ Metadata store opened at %s\n", cfg.DataDir)

	collector := metrics.NewCollector(st)
	collector.Start()
	defer collector.Stop()

	metrics.SetVersion(Version)
	metrics.RegisterComponent("storage", true, "ready")
	metrics.RegisterComponent("api", true, "ready")

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.Handle("/health", metrics.HealthHandler())
		mux.Handle("/ready", metrics.ReadyHandler())
		mux.Handle("/live", metrics.LivenessHandler())
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			fmt.Fprintf(os.Stderr, "metrics server error: %v\n", err)
		}
	}()
	fmt.Printf("✓ Metrics endpoint: http://%s/metrics\n", metricsAddr)
	fmt.Printf("✓ Health endpoints: http://%s/{health,ready,live}\n", metricsAddr)
	fmt.Println("tablestore is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nShutting down...")
	if err := st.Close(); err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}
	fmt.Println("✓ Shutdown complete")
	return nil
}

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Inspect tables in an account",
}

var tableLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List every table an account owns",
	RunE:  runTableLs,
}

func init() {
	tableLsCmd.Flags().String("account", "", "Account name (required)")
	_ = tableLsCmd.MarkFlagRequired("account")
	tableCmd.AddCommand(tableLsCmd)
}

func runTableLs(cmd *cobra.Command, args []string) error {
	account, _ := cmd.Flags().GetString("account")

	st, err := metastore.Open(cfg.DataDir, storeOptions())
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	tables, err := st.ListTables(account)
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}
	if len(tables) == 0 {
		fmt.Printf("No tables found for account %q\n", account)
		return nil
	}
	for _, t := range tables {
		fmt.Println(t.Name)
	}
	return nil
}

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage per-account service properties",
}

var accountSetPropertiesCmd = &cobra.Command{
	Use:   "set-properties",
	Short: "Set an account's CORS rules from a YAML file",
	RunE:  runAccountSetProperties,
}

func init() {
	accountSetPropertiesCmd.Flags().String("account", "", "Account name (required)")
	accountSetPropertiesCmd.Flags().String("cors-file", "", "YAML file containing a list of CORS rules (required)")
	_ = accountSetPropertiesCmd.MarkFlagRequired("account")
	_ = accountSetPropertiesCmd.MarkFlagRequired("cors-file")
	accountCmd.AddCommand(accountSetPropertiesCmd)
}

func runAccountSetProperties(cmd *cobra.Command, args []string) error {
	account, _ := cmd.Flags().GetString("account")
	corsFile, _ := cmd.Flags().GetString("cors-file")

	rules, err := loadCorsRules(corsFile)
	if err != nil {
		return fmt.Errorf("failed to load CORS rules: %w", err)
	}

	st, err := metastore.Open(cfg.DataDir, storeOptions())
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	props, err := st.GetServiceProperties(account)
	if err != nil {
		return fmt.Errorf("failed to read service properties: %w", err)
	}
	props.Cors = rules
	if err := st.SetServiceProperties(props); err != nil {
		return fmt.Errorf("failed to set service properties: %w", err)
	}

	fmt.Printf("✓ Set %d CORS rule(s) for account %q\n", len(rules), account)
	return nil
}
