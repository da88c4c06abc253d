package dataprocessing

import (
	"log/slog"
	"math"

	"instrcli/pkg/contracts/domain"
)

// DefaultMinuteTolerance is how far, in seconds, a scan may sit from a
// whole elapsed minute and still be kept when no tolerance is given.
const DefaultMinuteTolerance = 0.5

// Resampler downsamples ~10-second scan data to one row per whole
// elapsed minute.
type Resampler struct {
	logger *slog.Logger
}

// NewResampler creates a resampler with the given logger.
func NewResampler(logger *slog.Logger) *Resampler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resampler{logger: logger}
}

// DownsampleFullMinutes keeps the first row (the ambient reference) and
// every later row whose elapsed time lands within tolSeconds of a whole
// minute. Kept rows get their elapsed value rounded to that minute.
// The input file is not modified.
func (r *Resampler) DownsampleFullMinutes(parsed *domain.LoggerFile, tolSeconds float64) *domain.LoggerFile {
	if tolSeconds <= 0 {
		tolSeconds = DefaultMinuteTolerance
	}

	kept := make([]domain.ScanRow, 0, len(parsed.Rows))
	for idx, row := range parsed.Rows {
		if idx == 0 {
			kept = append(kept, row)
			continue
		}

		elapsedSec := row.ElapsedMinutes * 60.0
		nearest := math.Round(elapsedSec/60.0) * 60.0
		if math.Abs(elapsedSec-nearest) <= tolSeconds {
			row.ElapsedMinutes = nearest / 60.0
			kept = append(kept, row)
		}
	}

	r.logger.Debug("downsampled to whole minutes",
		slog.Int("input_rows", len(parsed.Rows)),
		slog.Int("kept_rows", len(kept)),
		slog.Float64("tolerance_seconds", tolSeconds))

	return &domain.LoggerFile{
		Metadata: parsed.Metadata,
		Channels: parsed.Channels,
		Rows:     kept,
	}
}
