package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"

	"go-data-explorer/internal/chart"
	"go-data-explorer/internal/config"
	"go-data-explorer/internal/infrastructure"
	"go-data-explorer/internal/model"
	"go-data-explorer/internal/pipeline"
	"go-data-explorer/internal/store"
	"go-data-explorer/pkg/utils"
)

type options struct {
	source      string
	sourceType  string
	strategies  string
	exports     string
	table       string
	dbPath      string
	chartsDir   string
	chartFormat string
	generic     bool
	logLevel    string
	timeout     time.Duration
}

const defaultRunTimeout = 5 * time.Minute

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("preprocess", flag.ContinueOnError)
	fs.StringVar(&o.source, "source", "data/framingham.csv", "CSV/XLSX path or http(s) URL")
	fs.StringVar(&o.sourceType, "type", "", "source format (csv or xlsx), inferred from the extension when empty")
	fs.StringVar(&o.strategies, "strategy", "", "comma-separated strategies to apply in order: drop-rows, fill-mean, fill-default")
	fs.StringVar(&o.exports, "export", "", "comma-separated export targets (.csv, .json, .xlsx files, or sqlite)")
	fs.StringVar(&o.table, "table", pipeline.DefaultTable, "table name for sqlite exports")
	fs.StringVar(&o.dbPath, "db", "output/explorer.db", "SQLite database for sqlite exports")
	fs.StringVar(&o.chartsDir, "charts", "", "directory to render the charts into")
	fs.StringVar(&o.chartFormat, "chart-format", "png", "chart image format: png or svg")
	fs.BoolVar(&o.generic, "generic", false, "keep every header column with inferred types")
	fs.StringVar(&o.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	timeout := fs.String("timeout", defaultRunTimeout.String(), "overall run timeout, e.g. 90s or 10m")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	o.timeout = utils.ParseDuration(*timeout, defaultRunTimeout)
	return o, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		color.Red("❌ %v", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	logger, err := infrastructure.NewLogger(config.LoggingConfig{Level: opts.logLevel, Format: "text", Output: "console"})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	job, err := buildJob(opts)
	if err != nil {
		return err
	}
	if needsStore(job.Exports) {
		if err := os.MkdirAll(filepath.Dir(opts.dbPath), 0755); err != nil {
			return fmt.Errorf("create database directory: %w", err)
		}
		if err := store.InitDB(opts.dbPath); err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer store.Close()
	}

	schema := model.HeartStudySchema
	if opts.generic {
		schema = nil
	}
	processor := pipeline.NewProcessor(pipeline.NewLoader(schema, logger), job.Source, pipeline.WithLogger(logger))
	exporter := pipeline.NewExportManager(logger)

	fmt.Printf("📥 Loading %s\n", job.Source.URL)
	result, runErr := pipeline.Run(ctx, processor, exporter, job)
	if result.Final.ID == "" {
		return runErr
	}

	printSummary(os.Stdout, result)

	if opts.chartsDir != "" {
		om := utils.NewOutputManager(opts.chartsDir)
		dir, err := om.CreateSnapshotOutputDir(result.Final.ID)
		if err != nil {
			return err
		}
		paths, err := chart.RenderAll(ctx, processor.Loaded().Data, dir, opts.chartFormat)
		if err != nil {
			return fmt.Errorf("render charts: %w", err)
		}
		for _, p := range paths {
			fmt.Printf("📊 Chart written: %s\n", p)
		}
	}

	fmt.Printf("⏱️  Done in %v\n", result.Duration.Round(time.Millisecond))
	return runErr
}

func buildJob(opts options) (pipeline.JobSpec, error) {
	job := pipeline.JobSpec{Source: model.Source{URL: opts.source, Type: opts.sourceType}}

	for _, s := range splitList(opts.strategies) {
		strategy := model.Strategy(s)
		if !strategy.Known() {
			return job, fmt.Errorf("unknown strategy %q (want drop-rows, fill-mean or fill-default)", s)
		}
		job.Strategies = append(job.Strategies, strategy)
	}

	for _, target := range splitList(opts.exports) {
		if strings.EqualFold(target, "sqlite") {
			job.Exports = append(job.Exports, model.Export{Format: "sqlite", Table: opts.table})
			continue
		}
		format := utils.FileType(target)
		switch format {
		case "csv", "json", "xlsx":
			job.Exports = append(job.Exports, model.Export{Format: format, Path: target})
		default:
			return job, fmt.Errorf("cannot export to %q: unknown file type", target)
		}
	}
	return job, nil
}

func needsStore(exports []model.Export) bool {
	for _, e := range exports {
		if e.Format == "sqlite" {
			return true
		}
	}
	return false
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
