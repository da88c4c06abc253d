package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	apperrors "instrcli/internal/errors"
	"instrcli/pkg/contracts/domain"
)

func writeExport(t *testing.T, dir string) string {
	t.Helper()
	lines := []string{
		"Name\tFurnace run 7",
		"Owner\tFire Lab",
		"",
		"Channel\tName\tFunction",
		"1\tTC1\tTemp",
		"2\tTC2\tTemp",
		"301\tFurnace\tTemp",
		"Scan\tControl:\tAuto",
		"Scan\tTime\t1 (C)\tAlarm 1\t2 (C)\tAlarm 2\t301 (C)\tAlarm 301",
		"1\t19/11/2025\t09:00:00\t20.0\t0\t20.5\t0\t24.0\t0",
		"2\t19/11/2025\t09:00:30\t21.0\t0\t21.5\t0\t26.0\t0",
		"3\t19/11/2025\t09:01:00\t22.0\t0\t22.5\t0\t28.0\t0",
	}
	content := strings.Join(lines, "\r\n") + "\r\n"

	encoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	encoded, _, err := transform.String(encoder, content)
	require.NoError(t, err)

	path := filepath.Join(dir, "run.csv")
	require.NoError(t, os.WriteFile(path, []byte(encoded), 0644))
	return path
}

func TestReportService_Generate(t *testing.T) {
	dir := t.TempDir()
	input := writeExport(t, dir)

	svc := NewReportService(nil)
	outPath, err := svc.Generate(context.Background(), input, "", domain.DefaultReportOptions())
	require.NoError(t, err)

	// default output name derives from the input stem
	assert.Equal(t, filepath.Join(dir, "run - report.xlsx"), outPath)

	f, err := excelize.OpenFile(outPath)
	require.NoError(t, err)
	defer f.Close()

	idx, err := f.GetSheetIndex("Raw Data")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, idx, 0)

	// 09:00:30 is half a minute off, so only scans 1 and 3 survive
	scan, err := f.GetCellValue("Raw Data", "A15")
	require.NoError(t, err)
	assert.Equal(t, "3", scan)

	gone, err := f.GetCellValue("Raw Data", "A16")
	require.NoError(t, err)
	assert.Empty(t, gone)
}

func TestReportService_Generate_ExplicitOutput(t *testing.T) {
	dir := t.TempDir()
	input := writeExport(t, dir)
	out := filepath.Join(dir, "custom.xlsx")

	svc := NewReportService(nil)
	got, err := svc.Generate(context.Background(), input, out, domain.DefaultReportOptions())
	require.NoError(t, err)
	assert.Equal(t, out, got)

	_, err = os.Stat(out)
	assert.NoError(t, err)
}

func TestReportService_Generate_Errors(t *testing.T) {
	dir := t.TempDir()
	input := writeExport(t, dir)
	svc := NewReportService(nil)

	t.Run("bad options", func(t *testing.T) {
		opts := domain.DefaultReportOptions()
		opts.MinuteTolerance = -1
		_, err := svc.Generate(context.Background(), input, "", opts)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
	})

	t.Run("missing input", func(t *testing.T) {
		_, err := svc.Generate(context.Background(), filepath.Join(dir, "nope.csv"), "", domain.DefaultReportOptions())
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
	})

	t.Run("bad output extension", func(t *testing.T) {
		_, err := svc.Generate(context.Background(), input, filepath.Join(dir, "out.csv"), domain.DefaultReportOptions())
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
	})
}

func TestReportService_Regroup(t *testing.T) {
	dir := t.TempDir()
	input := writeExport(t, dir)

	svc := NewReportService(nil)
	outPath, err := svc.Generate(context.Background(), input, "", domain.DefaultReportOptions())
	require.NoError(t, err)

	opts := domain.DefaultReportOptions()
	opts.FaceStart = 2
	opts.FaceCount = 1
	require.NoError(t, svc.Regroup(context.Background(), outPath, opts))

	f, err := excelize.OpenFile(outPath)
	require.NoError(t, err)
	defer f.Close()

	faceStart, err := f.GetCellValue("Config", "B3")
	require.NoError(t, err)
	assert.Equal(t, "2", faceStart)
}

func TestReportService_Inspect(t *testing.T) {
	dir := t.TempDir()
	input := writeExport(t, dir)

	svc := NewReportService(nil)
	parsed, err := svc.Inspect(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, "Furnace run 7", parsed.Metadata[domain.MetaName])
	assert.Equal(t, []int{1, 2, 301}, parsed.Channels)
	assert.Len(t, parsed.Rows, 3)
}
