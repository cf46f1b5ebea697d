package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"telcoclean/internal/config"
	apperrors "telcoclean/internal/errors"
	"telcoclean/internal/infrastructure"
	"telcoclean/internal/report"
	"telcoclean/internal/services"
)

const (
	exitOK      = 0
	exitInput   = 1
	exitPersist = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	infrastructure.CloseLogFile()
	os.Exit(code)
}

// run executes one cleaning run and prints the summary to stdout. It returns
// the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("cleaner", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "path to a YAML config file (defaults to config.yaml or configs/config.yaml)")
	inDir := fs.String("in", "", "directory holding the five source CSV tables")
	workbook := fs.String("workbook", "", "read the tables from the sheets of this .xlsx instead of -in")
	outDir := fs.String("out", "", "output directory for the cleaned tables")
	xlsx := fs.Bool("xlsx", false, "also write the cleaned tables and summary to one workbook")
	if err := fs.Parse(args); err != nil {
		return exitInput
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return exitInput
	}
	if *inDir != "" {
		cfg.Paths.InputDir = *inDir
	}
	if *workbook != "" {
		cfg.Paths.Workbook = *workbook
	}
	if *outDir != "" {
		cfg.Paths.OutputDir = *outDir
	}
	if *xlsx {
		cfg.Export.Workbook = true
	}
	if err := cfg.ResolvePaths(""); err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return exitInput
	}
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return exitPersist
	}

	logger, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "logger: %v\n", err)
		return exitInput
	}

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		logger.Error("Failed to initialize OpenTelemetry", slog.String("error", err.Error()))
		return exitInput
	}
	defer providers.Shutdown(context.Background())

	metrics, err := infrastructure.CreateCleaningMetrics(providers.Meter)
	if err != nil {
		logger.Error("Failed to create metrics", slog.String("error", err.Error()))
	}

	svc, err := services.NewCleaningService(cfg, logger, providers, metrics)
	if err != nil {
		logger.Error("Failed to create cleaning service", slog.String("error", err.Error()))
		return exitInput
	}

	result, err := svc.Run(ctx, "")
	if err != nil {
		logger.ErrorContext(ctx, "Cleaning run failed", slog.String("error", err.Error()))
		fmt.Fprintf(stderr, "cleaning failed: %v\n", err)
		return exitCode(err)
	}

	if err := report.WriteText(stdout, result.Report); err != nil {
		logger.Error("Failed to write summary", slog.String("error", err.Error()))
		return exitPersist
	}
	for _, f := range result.Files {
		fmt.Fprintf(stdout, "wrote %s\n", f)
	}
	return exitOK
}

// exitCode maps a run failure to the process exit code: input problems are
// 1, failures to persist the cleaned tables are 2.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case apperrors.IsType(err, apperrors.ErrTypeStorage):
		return exitPersist
	default:
		return exitInput
	}
}
