package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"instrcli/internal/config"
	"instrcli/internal/infrastructure"
	"instrcli/internal/services"
	"instrcli/pkg/contracts"
	"instrcli/pkg/contracts/domain"
)

func main() {
	in := flag.String("in", "", "logger export to convert (.csv)")
	out := flag.String("out", "", "report path (defaults to \"<input stem> - report.xlsx\" beside the input)")
	regroup := flag.Bool("regroup", false, "treat -in as an existing report and only rewrite its Config grouping cells")
	faceStart := flag.Int("face-start", 0, "first face thermocouple (1-based specimen index)")
	faceCount := flag.Int("face-count", -1, "number of face thermocouples")
	coreStart := flag.Int("core-start", 0, "first core thermocouple (1-based specimen index)")
	coreCount := flag.Int("core-count", -1, "number of core thermocouples")
	furnaceMin := flag.Int("furnace-min", -1, "lowest channel number treated as a furnace thermocouple")
	furnaceMax := flag.Int("furnace-max", -1, "highest channel number treated as a furnace thermocouple")
	tolerance := flag.Float64("tolerance", 0, "seconds a scan may sit from a whole minute and still be kept")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetVersionString())
		return
	}
	if *in == "" {
		fmt.Fprintln(os.Stderr, "usage: report -in <export.csv> [-out <report.xlsx>] [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}
	cfg.Logging.FilePath = paths.GetLogPath("report.log")

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	ctx := infrastructure.WithRunID(context.Background(), infrastructure.NewRunID())

	shutdown, err := infrastructure.InitTracing(ctx, cfg.Tracing, logger)
	if err != nil {
		logger.Warn("Tracing disabled", slog.String("error", err.Error()))
	} else {
		defer shutdown(ctx)
	}

	opts := applyFlagOverrides(cfg.Report.Options(),
		*faceStart, *faceCount, *coreStart, *coreCount, *furnaceMin, *furnaceMax, *tolerance)

	svc := services.NewReportService(logger)

	if *regroup {
		if err := svc.Regroup(ctx, *in, opts); err != nil {
			logger.Error("Regroup failed", slog.String("error", err.Error()))
			fmt.Fprintf(os.Stderr, "regroup failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated grouping in %s\n", *in)
		return
	}

	outPath, err := svc.Generate(ctx, *in, *out, opts)
	if err != nil {
		logger.Error("Report generation failed", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "report generation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Report written to %s\n", outPath)
}

// applyFlagOverrides layers the explicitly set command line flags over
// the configured defaults. Starts must be >= 1 and the tolerance > 0, so
// zero means "not set" for those; the counts and furnace window bounds
// use -1 since zero is a valid value for them.
func applyFlagOverrides(opts domain.ReportOptions, faceStart, faceCount, coreStart, coreCount, furnaceMin, furnaceMax int, tolerance float64) domain.ReportOptions {
	if faceStart > 0 {
		opts.FaceStart = faceStart
	}
	if faceCount >= 0 {
		opts.FaceCount = faceCount
	}
	if coreStart > 0 {
		opts.CoreStart = coreStart
	}
	if coreCount >= 0 {
		opts.CoreCount = coreCount
	}
	if furnaceMin >= 0 {
		opts.FurnaceMin = furnaceMin
	}
	if furnaceMax >= 0 {
		opts.FurnaceMax = furnaceMax
	}
	if tolerance > 0 {
		opts.MinuteTolerance = tolerance
	}
	return opts
}
