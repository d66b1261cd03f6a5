// Package classification CoachKit API
//
// CoachKit API: clients, check-ins, spreadsheet imports and re-engagement
// messages for fitness coaches.
//
//     Schemes: https
//     BasePath: /api/v1
//     Version: 0.1.0
//
//     Consumes:
//     - application/json
//     - multipart/form-data
//
//     Produces:
//     - application/json
//
// swagger:meta
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bkabbarah/coachkit/app/core"
	"github.com/bkabbarah/coachkit/app/importbundle"
	"github.com/bkabbarah/coachkit/app/systembundle"
	"github.com/bkabbarah/coachkit/app/textgen"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version = "undefined"

	configFile string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "coachkit",
	Short:         "coachkit serves the coaching client manager API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return startServer(ctx, cfg, logger)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		ormDB, err := core.OpenDatabase(cfg.Database, logger)
		if err != nil {
			return err
		}
		defer ormDB.Close()
		if err := systembundle.Migrate(ormDB); err != nil {
			return err
		}
		logger.Info("database migrated", "driver", cfg.Database.Driver)
		return nil
	},
}

var useRules bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Infer the column mapping of a spreadsheet and print a preview",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		mapper, err := newMapper(cfg, textGenerator(cfg, logger, nil), useRules)
		if err != nil {
			return err
		}
		analysis, err := analyzeFile(cmd.Context(), mapper, args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "config.json", "configuration file (JSON or YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
	analyzeCmd.Flags().BoolVar(&useRules, "rules", false, "use the offline rule mapper")

	rootCmd.AddCommand(serveCmd, migrateCmd, analyzeCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup() (core.Configuration, *log.Logger, error) {
	cfg, err := core.LoadConfiguration(configFile)
	if err != nil {
		return cfg, nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	core.Config = cfg
	logger := core.NewLogger(cfg.Log.Level)
	log.SetDefault(logger)
	return cfg, logger, nil
}

// textGenerator returns the configured provider, instrumented when metrics
// are given, or textgen.Unconfigured without an API key.
func textGenerator(cfg core.Configuration, logger *log.Logger, metrics *core.Metrics) textgen.Generator {
	if cfg.TextGeneration.APIKey == "" {
		return textgen.Unconfigured
	}
	gen := textgen.NewAnthropicGenerator(textgen.AnthropicOptions{
		BaseURL: cfg.TextGeneration.BaseURL,
		APIKey:  cfg.TextGeneration.APIKey,
		Model:   cfg.TextGeneration.Model,
		Timeout: time.Duration(cfg.TextGeneration.TimeoutSeconds) * time.Second,
	})
	instrumented := &textgen.Instrumented{Next: gen, Logger: logger}
	if metrics != nil {
		instrumented.Duration = metrics.TextGenDuration
		instrumented.Failures = metrics.TextGenFailures
	}
	return instrumented
}

func newMapper(cfg core.Configuration, gen textgen.Generator, forceRules bool) (importbundle.Mapper, error) {
	mode := cfg.Import.Mapper
	if forceRules {
		mode = "rules"
	}
	switch mode {
	case "", "auto":
		if cfg.TextGeneration.APIKey == "" {
			return importbundle.NewRuleMapper(), nil
		}
		return importbundle.NewColumnMapper(gen, cfg.TextGeneration.MappingMaxTokens), nil
	case "llm":
		return importbundle.NewColumnMapper(gen, cfg.TextGeneration.MappingMaxTokens), nil
	case "rules":
		return importbundle.NewRuleMapper(), nil
	default:
		return nil, fmt.Errorf("unknown import mapper %q", mode)
	}
}

type fileAnalysis struct {
	Columns  []string                    `json:"columns"`
	Mapping  importbundle.FieldMapping   `json:"mapping"`
	Preview  []importbundle.ImportRecord `json:"preview"`
	RowCount int                         `json:"row_count"`
}

func analyzeFile(ctx context.Context, mapper importbundle.Mapper, path string) (fileAnalysis, error) {
	table, err := importbundle.ReadTable(path)
	if err != nil {
		return fileAnalysis{}, err
	}
	mapping, err := mapper.MapColumns(ctx, table)
	if err != nil {
		return fileAnalysis{}, err
	}
	return fileAnalysis{
		Columns:  table.Columns,
		Mapping:  mapping,
		Preview:  importbundle.PreviewRecords(table, mapping),
		RowCount: len(table.Rows),
	}, nil
}
