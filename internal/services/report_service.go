package services

import (
	"context"
	"log/slog"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"instrcli/internal/config"
	"instrcli/internal/dataprocessing"
	"instrcli/internal/exporter"
	"instrcli/internal/infrastructure"
	"instrcli/internal/validation"
	"instrcli/pkg/contracts/domain"
)

// ReportService runs the full conversion: validate, parse, downsample,
// render. It is the single entry point the CLI tools call.
type ReportService struct {
	logger    *slog.Logger
	validator *validation.OptionsValidator
	parser    *dataprocessing.Parser
	resampler *dataprocessing.Resampler
	writer    *exporter.ReportWriter
	rewriter  *exporter.GroupingRewriter
}

// NewReportService creates a new report service
func NewReportService(logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		logger:    logger,
		validator: validation.NewOptionsValidator(logger),
		parser:    dataprocessing.NewParser(logger),
		resampler: dataprocessing.NewResampler(logger),
		writer:    exporter.NewReportWriter(logger),
		rewriter:  exporter.NewGroupingRewriter(logger),
	}
}

// Generate converts a logger export into the report workbook and
// returns the path it wrote. An empty outputPath derives the default
// "<stem> - report.xlsx" beside the input.
func (s *ReportService) Generate(ctx context.Context, inputPath, outputPath string, opts domain.ReportOptions) (string, error) {
	ctx, span := infrastructure.Tracer().Start(ctx, "report.generate")
	defer span.End()
	span.SetAttributes(attribute.String("input", inputPath))

	if err := s.validator.ValidateOptions(opts); err != nil {
		return "", s.fail(ctx, span, "invalid report options", err)
	}
	if err := s.validator.ValidateInputFile(inputPath); err != nil {
		return "", s.fail(ctx, span, "input file rejected", err)
	}

	if outputPath == "" {
		outputPath = config.BuildOutputPath(inputPath)
	}
	if err := s.validator.ValidateOutputPath(outputPath); err != nil {
		return "", s.fail(ctx, span, "output path rejected", err)
	}
	span.SetAttributes(attribute.String("output", outputPath))

	s.logger.InfoContext(ctx, "starting report generation",
		slog.String("input", inputPath),
		slog.String("output", outputPath))

	parseCtx, parseSpan := infrastructure.Tracer().Start(ctx, "report.parse")
	parsed, err := s.parser.ParseFile(inputPath)
	parseSpan.End()
	if err != nil {
		return "", s.fail(parseCtx, span, "parse failed", err)
	}
	s.logger.InfoContext(ctx, "export parsed",
		slog.Int("channels", len(parsed.Channels)),
		slog.Int("scans", len(parsed.Rows)))

	_, sampleSpan := infrastructure.Tracer().Start(ctx, "report.resample")
	sampled := s.resampler.DownsampleFullMinutes(parsed, opts.MinuteTolerance)
	sampleSpan.End()
	s.logger.InfoContext(ctx, "scans downsampled to whole minutes",
		slog.Int("kept", len(sampled.Rows)),
		slog.Int("dropped", len(parsed.Rows)-len(sampled.Rows)))

	renderCtx, renderSpan := infrastructure.Tracer().Start(ctx, "report.render")
	err = s.writer.Write(sampled, opts, outputPath, filepath.Base(inputPath))
	renderSpan.End()
	if err != nil {
		return "", s.fail(renderCtx, span, "report rendering failed", err)
	}

	s.logger.InfoContext(ctx, "report generated", slog.String("output", outputPath))
	return outputPath, nil
}

// Regroup rewrites the face/core grouping cells of an existing report.
func (s *ReportService) Regroup(ctx context.Context, reportPath string, opts domain.ReportOptions) error {
	ctx, span := infrastructure.Tracer().Start(ctx, "report.regroup")
	defer span.End()
	span.SetAttributes(attribute.String("report", reportPath))

	if err := s.validator.ValidateOptions(opts); err != nil {
		return s.fail(ctx, span, "invalid report options", err)
	}
	if err := s.rewriter.ApplyGrouping(reportPath, opts); err != nil {
		return s.fail(ctx, span, "grouping update failed", err)
	}

	s.logger.InfoContext(ctx, "report regrouped", slog.String("report", reportPath))
	return nil
}

// Inspect parses an export without rendering anything, for previewing
// what a conversion would pick up.
func (s *ReportService) Inspect(ctx context.Context, inputPath string) (*domain.LoggerFile, error) {
	ctx, span := infrastructure.Tracer().Start(ctx, "report.inspect")
	defer span.End()
	span.SetAttributes(attribute.String("input", inputPath))

	if err := s.validator.ValidateInputFile(inputPath); err != nil {
		return nil, s.fail(ctx, span, "input file rejected", err)
	}

	parsed, err := s.parser.ParseFile(inputPath)
	if err != nil {
		return nil, s.fail(ctx, span, "parse failed", err)
	}
	return parsed, nil
}

// fail records the error on both the span and the log, then returns it.
func (s *ReportService) fail(ctx context.Context, span trace.Span, msg string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	s.logger.ErrorContext(ctx, msg, slog.String("error", err.Error()))
	return err
}
