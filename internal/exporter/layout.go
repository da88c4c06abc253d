package exporter

import (
	"github.com/xuri/excelize/v2"

	"instrcli/pkg/contracts/domain"
)

// Sheet names, in workbook order.
const (
	SheetSummary      = "Summary of Results"
	SheetObservations = "Observations"
	SheetRaw          = "Raw Data"
	SheetConfig       = "Config"
)

// Raw Data sheet geometry. The metadata block sits above the table.
const (
	groupHeaderRow  = 12
	columnHeaderRow = 13
	dataStartRow    = 14
)

// Config sheet cells the user edits after generation.
const (
	ConfigFaceStartCell = "B3"
	ConfigFaceCountCell = "B4"
	ConfigCoreStartCell = "B6"
	ConfigCoreCountCell = "B7"
)

// Layout holds the computed column geometry of the Raw Data sheet for
// one report. All columns are 1-based.
type Layout struct {
	Specimen []int
	Furnace  []int
	RowCount int

	SpecAbsStart  int
	SpecAbsEnd    int
	SpecRiseStart int
	SpecRiseEnd   int
	FurnAbsStart  int
	FurnAbsEnd    int
	FurnRiseStart int
	FurnRiseEnd   int
	SummaryStart  int
	SummaryEnd    int
}

// Summary column offsets from Layout.SummaryStart.
const (
	summaryMeanFace = iota
	summaryMaxFace
	summaryMeanCore
	summaryFurnaceMeanAbs
	summaryFurnaceMeanRise
	summaryColumns
)

// summaryHeaders are the column headers of the summary block, in order.
var summaryHeaders = []string{
	"Mean face ΔT",
	"Max face ΔT",
	"Mean core ΔT",
	"Furnace mean (abs)",
	"Furnace mean ΔT",
}

// NewLayout computes the Raw Data column geometry for the given channel
// groups and row count.
func NewLayout(groups domain.ChannelGroups, rowCount int) Layout {
	l := Layout{
		Specimen: groups.Specimen,
		Furnace:  groups.Furnace,
		RowCount: rowCount,
	}

	// Base columns: Scan, Date, Time, Elapsed (min)
	col := 5
	l.SpecAbsStart = col
	col += len(l.Specimen)
	l.SpecAbsEnd = col - 1

	l.SpecRiseStart = col
	col += len(l.Specimen)
	l.SpecRiseEnd = col - 1

	l.FurnAbsStart = col
	col += len(l.Furnace)
	l.FurnAbsEnd = col - 1

	l.FurnRiseStart = col
	col += len(l.Furnace)
	l.FurnRiseEnd = col - 1

	l.SummaryStart = col
	l.SummaryEnd = col + summaryColumns - 1

	return l
}

// LastDataRow returns the sheet row of the final data row.
func (l Layout) LastDataRow() int {
	return dataStartRow + l.RowCount - 1
}

// AmbientRow returns the sheet row holding the ambient reference scan.
func (l Layout) AmbientRow() int {
	return dataStartRow
}

// cellName converts coordinates to an A1-style reference. Column and
// row are always in range here, so the excelize error is impossible.
func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// colName converts a 1-based column number to its letter name.
func colName(col int) string {
	name, _ := excelize.ColumnNumberToName(col)
	return name
}
