// pulsewatch: public sentiment and market pulse for companies and social handles.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/pulsewatch/api"
	"github.com/seenimoa/pulsewatch/internal/config"
	"github.com/seenimoa/pulsewatch/internal/events"
	"github.com/seenimoa/pulsewatch/internal/metrics"
	"github.com/seenimoa/pulsewatch/internal/report"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger, set in PersistentPreRunE.
var (
	cfg    *config.Config
	logger *slog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pulsewatch",
	Short: "pulsewatch: public sentiment and market pulse analysis",
	Long: `pulsewatch collects news, social posts, videos and price history for
companies or social handles, labels every mention with a sentiment and topic,
and produces a summary, per-query statistics and a downloadable PDF report.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		logger = config.NewLogger(os.Stderr, cfg.Logging)
		slog.SetDefault(logger)
		metrics.Init(version, commit)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// no config needed
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pulsewatch %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze [queries...]",
	Short: "Run one analysis and print the result",
	Long: `Run the full pipeline once for the given company names or social handles.
With --social, news and price history are skipped. The JSON payload is the same
one the HTTP API returns; --text prints a terminal report instead, and
--pdf writes the PDF report to a path ("-" for stdout).`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		social, _ := cmd.Flags().GetBool("social")
		noReport, _ := cmd.Flags().GetBool("no-report")
		asText, _ := cmd.Flags().GetBool("text")
		pdfOut, _ := cmd.Flags().GetString("pdf")

		if err := os.MkdirAll(cfg.Report.Dir, 0755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
		svc := buildApp(cfg, logger, !noReport && pdfOut == "")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rep := svc.pipeline.Aggregate(ctx, args, social)
		if pdfOut != "" {
			return writePDF(cmd.OutOrStdout(), pdfOut, rep)
		}
		if asText {
			return report.WriteText(cmd.OutOrStdout(), rep)
		}

		out := map[string]interface{}{
			"summary":    rep.Summary,
			"report_url": rep.ReportURL,
		}
		if social {
			out["analysis_data"] = rep.Results
		} else {
			out["comparison_data"] = rep.Results
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	analyzeCmd.Flags().Bool("social", false, "treat queries as social handles (skip news and price history)")
	analyzeCmd.Flags().Bool("no-report", false, "do not write a PDF report")
	analyzeCmd.Flags().Bool("text", false, "print a terminal report instead of JSON")
	analyzeCmd.Flags().String("pdf", "", `write the PDF report to this path ("-" for stdout) instead of printing JSON`)
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.MkdirAll(cfg.Report.Dir, 0755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
		svc := buildApp(cfg, logger, true)
		defer svc.Close()

		srv := api.NewServer(cfg, api.Deps{
			Analyzer:  svc.pipeline,
			Hub:       events.NewHub(),
			Publisher: svc.publisher,
			Logger:    logger,
			Version:   version,
		})
		addr := net.JoinHostPort(cfg.API.Host, strconv.Itoa(cfg.API.Port))
		return srv.ListenAndServe(addr)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and credential status",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  pulsewatch System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    LLM Model:     %s\n", cfg.LLM.Model)
		fmt.Printf("    Workers:       %d\n", cfg.Analysis.ClassifyWorkers)
		fmt.Printf("    Reports:       %s\n", cfg.Report.Dir)
		fmt.Printf("    API Server:    %s:%d\n", cfg.API.Host, cfg.API.Port)
		rss := "disabled"
		if cfg.News.RSSSearchURL != "" {
			rss = cfg.News.RSSSearchURL
		}
		fmt.Printf("    RSS Search:    %s\n", rss)
		nats := "disabled"
		if cfg.Events.NATSURL != "" {
			nats = cfg.Events.NATSURL + " (" + cfg.Events.NATSSubject + ")"
		}
		fmt.Printf("    NATS Events:   %s\n", nats)
		fmt.Println()

		fmt.Println("  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "❌ not set"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-25s %s\n", k.Name+":", status)
		}

		if check, _ := cmd.Flags().GetBool("check"); check {
			fmt.Println()
			fmt.Println("  Text Generation:")
			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()
			for _, c := range checkProviders(ctx, cfg.LLM, logger) {
				status := "✅ reachable"
				switch {
				case !c.Configured:
					status = "❌ not set"
				case c.Err != nil:
					status = "❌ " + c.Err.Error()
				}
				fmt.Printf("    %-25s %s\n", c.Component+":", status)
			}
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}

func init() {
	statusCmd.Flags().Bool("check", false, "ping each configured text-generation key")
}
