package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"instrcli/internal/config"
	"instrcli/internal/infrastructure"
	"instrcli/internal/services"
	"instrcli/pkg/contracts/domain"
)

func main() {
	in := flag.String("in", "", "logger export to inspect (.csv)")
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect -in <export.csv>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}
	// Inspection is interactive, keep the log out of the way.
	cfg.Logging.Output = "file"

	paths, err := config.GetPaths()
	if err == nil {
		if err := paths.EnsureDirectories(); err == nil {
			cfg.Logging.FilePath = paths.GetLogPath("inspect.log")
		}
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	ctx := infrastructure.WithRunID(context.Background(), infrastructure.NewRunID())

	svc := services.NewReportService(logger)
	parsed, err := svc.Inspect(ctx, *in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "inspect failed: %v\n", err)
		os.Exit(1)
	}

	printSummary(parsed, cfg.Report.Options())
}

func printSummary(parsed *domain.LoggerFile, opts domain.ReportOptions) {
	fmt.Printf("Metadata (%d keys)\n", len(parsed.Metadata))
	keys := make([]string, 0, len(parsed.Metadata))
	for k := range parsed.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-20s %s\n", k, parsed.Metadata[k])
	}

	groups := opts.GroupChannels(parsed.Channels)
	fmt.Printf("\nChannels: %d total, %d specimen, %d furnace\n",
		len(parsed.Channels), len(groups.Specimen), len(groups.Furnace))
	fmt.Printf("  specimen: %v\n", groups.Specimen)
	fmt.Printf("  furnace:  %v\n", groups.Furnace)

	fmt.Printf("\nScans: %d\n", len(parsed.Rows))
	if len(parsed.Rows) > 0 {
		first := parsed.Rows[0]
		last := parsed.Rows[len(parsed.Rows)-1]
		fmt.Printf("  first: scan %d at %s\n", first.Scan, first.Timestamp.Format("02/01/2006 15:04:05"))
		fmt.Printf("  last:  scan %d at %s (%.1f min elapsed)\n",
			last.Scan, last.Timestamp.Format("02/01/2006 15:04:05"), last.ElapsedMinutes)
	}
}
