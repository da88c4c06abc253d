package validation

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "instrcli/internal/errors"
	"instrcli/pkg/contracts/domain"
)

func TestOptionsValidator_ValidateOptions(t *testing.T) {
	v := NewOptionsValidator(slog.Default())

	tests := []struct {
		name    string
		mutate  func(*domain.ReportOptions)
		wantErr bool
	}{
		{
			name:   "defaults pass",
			mutate: func(o *domain.ReportOptions) {},
		},
		{
			name: "zero counts allowed",
			mutate: func(o *domain.ReportOptions) {
				o.FaceCount = 0
				o.CoreCount = 0
			},
		},
		{
			name: "face start below one",
			mutate: func(o *domain.ReportOptions) {
				o.FaceStart = 0
			},
			wantErr: true,
		},
		{
			name: "furnace max below furnace min",
			mutate: func(o *domain.ReportOptions) {
				o.FurnaceMin = 400
				o.FurnaceMax = 300
			},
			wantErr: true,
		},
		{
			name: "tolerance must be positive",
			mutate: func(o *domain.ReportOptions) {
				o.MinuteTolerance = 0
			},
			wantErr: true,
		},
		{
			name: "tolerance capped at 30s",
			mutate: func(o *domain.ReportOptions) {
				o.MinuteTolerance = 31
			},
			wantErr: true,
		},
		{
			name: "face window exceeds specimen cap",
			mutate: func(o *domain.ReportOptions) {
				o.FaceStart = 32
				o.FaceCount = 5
			},
			wantErr: true,
		},
		{
			name: "core window exceeds specimen cap",
			mutate: func(o *domain.ReportOptions) {
				o.CoreStart = 34
				o.CoreCount = 3
			},
			wantErr: true,
		},
		{
			name: "window ends exactly at cap",
			mutate: func(o *domain.ReportOptions) {
				o.FaceStart = 31
				o.FaceCount = 5
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := domain.DefaultReportOptions()
			tt.mutate(&opts)

			err := v.ValidateOptions(opts)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation), "got %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestOptionsValidator_ValidateInputFile(t *testing.T) {
	v := NewOptionsValidator(nil)
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "export.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("data"), 0644))

	assert.NoError(t, v.ValidateInputFile(csvPath))

	// odd extension is a warning, not an error
	oddPath := filepath.Join(dir, "export.dat")
	require.NoError(t, os.WriteFile(oddPath, []byte("data"), 0644))
	assert.NoError(t, v.ValidateInputFile(oddPath))

	err := v.ValidateInputFile(filepath.Join(dir, "missing.csv"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))

	err = v.ValidateInputFile(dir)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))

	err = v.ValidateInputFile("  ")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestOptionsValidator_ValidateOutputPath(t *testing.T) {
	v := NewOptionsValidator(slog.Default())
	dir := t.TempDir()

	assert.NoError(t, v.ValidateOutputPath(filepath.Join(dir, "run - report.xlsx")))

	err := v.ValidateOutputPath(filepath.Join(dir, "run.csv"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))

	err = v.ValidateOutputPath(filepath.Join(dir, "no-such-subdir", "run.xlsx"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))

	err = v.ValidateOutputPath("")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}
