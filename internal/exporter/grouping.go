package exporter

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/xuri/excelize/v2"

	"instrcli/internal/errors"
	"instrcli/pkg/contracts/domain"
)

// specimenCountCell is where the Raw Data metadata block records how
// many specimen columns the report carries.
const specimenCountCell = "B8"

// GroupingRewriter updates the Config cells of an already generated
// report, so a grouping change does not require reparsing the export.
type GroupingRewriter struct {
	logger *slog.Logger
}

// NewGroupingRewriter creates a new grouping rewriter
func NewGroupingRewriter(logger *slog.Logger) *GroupingRewriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &GroupingRewriter{logger: logger}
}

// ApplyGrouping rewrites the face/core cells on the Config sheet of the
// workbook at path. The summary formulas reference those cells, so the
// report recalculates on next open.
func (g *GroupingRewriter) ApplyGrouping(path string, opts domain.ReportOptions) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return errors.NewStorageError("failed to open report workbook", err).
			WithContext("path", path)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(SheetConfig); err != nil || idx < 0 {
		return errors.NewValidationError(
			fmt.Sprintf("%s has no %s sheet, is it a generated report?", path, SheetConfig))
	}

	faceCount := opts.FaceCount
	coreCount := opts.CoreCount
	if n, ok := g.specimenCount(f); ok {
		faceCount = min(faceCount, n)
		coreCount = min(coreCount, max(0, n-opts.CoreStart+1))
	}

	cells := map[string]int{
		ConfigFaceStartCell: opts.FaceStart,
		ConfigFaceCountCell: faceCount,
		ConfigCoreStartCell: opts.CoreStart,
		ConfigCoreCountCell: coreCount,
	}
	for cell, value := range cells {
		if err := f.SetCellValue(SheetConfig, cell, value); err != nil {
			return errors.NewStorageError("failed to update config sheet", err).
				WithContext("cell", cell)
		}
	}

	if err := f.Save(); err != nil {
		return errors.NewStorageError("failed to save report workbook", err).
			WithContext("path", path)
	}

	g.logger.Info("report grouping updated",
		slog.String("path", path),
		slog.Int("face_start", opts.FaceStart),
		slog.Int("face_count", faceCount),
		slog.Int("core_start", opts.CoreStart),
		slog.Int("core_count", coreCount))
	return nil
}

// specimenCount reads the specimen column count the writer recorded in
// the Raw Data metadata block. Reports generated by other tools may not
// have it, in which case no clamping happens.
func (g *GroupingRewriter) specimenCount(f *excelize.File) (int, bool) {
	raw, err := f.GetCellValue(SheetRaw, specimenCountCell)
	if err != nil || raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
