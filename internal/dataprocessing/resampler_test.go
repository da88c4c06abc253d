package dataprocessing

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instrcli/pkg/contracts/domain"
)

// scanRowsAt builds rows at the given elapsed offsets (in seconds) from
// a fixed start time.
func scanRowsAt(offsets ...float64) []domain.ScanRow {
	start := time.Date(2025, 11, 19, 14, 30, 0, 0, time.Local)
	rows := make([]domain.ScanRow, len(offsets))
	for i, off := range offsets {
		rows[i] = domain.ScanRow{
			Scan:           i + 1,
			Timestamp:      start.Add(time.Duration(off * float64(time.Second))),
			ElapsedMinutes: off / 60.0,
			Values:         map[int]float64{101: 20.0 + float64(i)},
		}
	}
	return rows
}

func TestResampler_DownsampleFullMinutes(t *testing.T) {
	resampler := NewResampler(slog.Default())

	// 10-second cadence with a little clock drift around the minutes
	parsed := &domain.LoggerFile{
		Channels: []int{101},
		Rows:     scanRowsAt(0, 10, 20, 30, 40, 50, 59.8, 70, 80, 90, 100, 110, 120.3),
	}

	out := resampler.DownsampleFullMinutes(parsed, 0.5)

	require.Len(t, out.Rows, 3)
	assert.Equal(t, 1, out.Rows[0].Scan)
	assert.Equal(t, 0.0, out.Rows[0].ElapsedMinutes)
	assert.Equal(t, 7, out.Rows[1].Scan)
	assert.Equal(t, 1.0, out.Rows[1].ElapsedMinutes)
	assert.Equal(t, 13, out.Rows[2].Scan)
	assert.Equal(t, 2.0, out.Rows[2].ElapsedMinutes)
}

func TestResampler_FirstRowAlwaysKept(t *testing.T) {
	resampler := NewResampler(nil)

	// First row sits nowhere near a whole minute boundary offset-wise,
	// but it is the ambient reference and must survive.
	parsed := &domain.LoggerFile{
		Channels: []int{101},
		Rows:     scanRowsAt(0),
	}
	parsed.Rows[0].ElapsedMinutes = 0.37

	out := resampler.DownsampleFullMinutes(parsed, 0.5)

	require.Len(t, out.Rows, 1)
	assert.Equal(t, 0.37, out.Rows[0].ElapsedMinutes)
}

func TestResampler_ToleranceBoundary(t *testing.T) {
	resampler := NewResampler(slog.Default())

	parsed := &domain.LoggerFile{
		Channels: []int{101},
		// 60.5s is exactly at tolerance, 61.0s is beyond it
		Rows: scanRowsAt(0, 60.5, 61.0),
	}

	out := resampler.DownsampleFullMinutes(parsed, 0.5)

	require.Len(t, out.Rows, 2)
	assert.Equal(t, 2, out.Rows[1].Scan)
	assert.Equal(t, 1.0, out.Rows[1].ElapsedMinutes)
}

func TestResampler_NonPositiveToleranceUsesDefault(t *testing.T) {
	resampler := NewResampler(slog.Default())

	parsed := &domain.LoggerFile{
		Channels: []int{101},
		Rows:     scanRowsAt(0, 60.3),
	}

	out := resampler.DownsampleFullMinutes(parsed, 0)

	// 0.3s drift is within the 0.5s default
	require.Len(t, out.Rows, 2)
}

func TestResampler_DoesNotMutateInput(t *testing.T) {
	resampler := NewResampler(slog.Default())

	parsed := &domain.LoggerFile{
		Metadata: map[string]string{"Name": "run"},
		Channels: []int{101},
		Rows:     scanRowsAt(0, 59.9, 120),
	}

	out := resampler.DownsampleFullMinutes(parsed, 0.5)

	assert.InDelta(t, 59.9/60.0, parsed.Rows[1].ElapsedMinutes, 1e-9)
	assert.Equal(t, 1.0, out.Rows[1].ElapsedMinutes)
	assert.Equal(t, parsed.Metadata, out.Metadata)
	assert.Equal(t, parsed.Channels, out.Channels)
}
