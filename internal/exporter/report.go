package exporter

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/xuri/excelize/v2"

	"instrcli/internal/errors"
	"instrcli/pkg/contracts/domain"
)

// headerFillColor is the dark blue used on the legacy report headers.
const headerFillColor = "1F4E79"

// ReportWriter renders parsed logger data into the report workbook.
type ReportWriter struct {
	logger *slog.Logger
}

// NewReportWriter creates a new report writer
func NewReportWriter(logger *slog.Logger) *ReportWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportWriter{logger: logger}
}

// styleSet holds the style ids the writer reuses across sheets.
type styleSet struct {
	header     int
	bold       int
	title14    int
	title16    int
	center     int
	wrap       int
	date       int
	time       int
	elapsed    int
	oneDecimal int
}

// Write builds the report workbook and saves it to outPath.
func (w *ReportWriter) Write(parsed *domain.LoggerFile, opts domain.ReportOptions, outPath, sourceFilename string) error {
	groups := opts.GroupChannels(parsed.Channels)
	layout := NewLayout(groups, len(parsed.Rows))

	w.logger.Info("building report workbook",
		slog.String("output", outPath),
		slog.Int("specimen_channels", len(groups.Specimen)),
		slog.Int("furnace_channels", len(groups.Furnace)),
		slog.Int("data_rows", len(parsed.Rows)))

	f := excelize.NewFile()
	defer f.Close()

	if err := createSheets(f); err != nil {
		return err
	}

	styles, err := newStyleSet(f)
	if err != nil {
		return err
	}

	if err := w.writeConfigSheet(f, styles, opts, len(groups.Specimen)); err != nil {
		return err
	}
	if err := w.writeRawSheet(f, styles, parsed, layout, sourceFilename); err != nil {
		return err
	}
	if err := w.writeFormulas(f, styles, layout); err != nil {
		return err
	}
	if err := w.writeSummarySheet(f, styles, layout, sourceFilename); err != nil {
		return err
	}
	if err := w.writeObservationsSheet(f, styles); err != nil {
		return err
	}

	if err := hideGridlines(f); err != nil {
		return err
	}

	if err := f.SaveAs(outPath); err != nil {
		return errors.NewStorageError("failed to save report workbook", err).
			WithContext("path", outPath)
	}

	w.logger.Info("report workbook saved", slog.String("path", outPath))
	return nil
}

// createSheets renames the default sheet and creates the rest in the
// order the report presents them.
func createSheets(f *excelize.File) error {
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return errors.NewStorageError("failed to set up workbook sheets", err)
	}
	for _, name := range []string{SheetObservations, SheetRaw, SheetConfig} {
		if _, err := f.NewSheet(name); err != nil {
			return errors.NewStorageError("failed to set up workbook sheets", err)
		}
	}
	return nil
}

// newStyleSet registers every style the report uses.
func newStyleSet(f *excelize.File) (styleSet, error) {
	var s styleSet
	var err error

	build := func(style *excelize.Style) int {
		if err != nil {
			return 0
		}
		var id int
		id, err = f.NewStyle(style)
		return id
	}

	numFmt := func(format string) *excelize.Style {
		fmtCopy := format
		return &excelize.Style{CustomNumFmt: &fmtCopy}
	}

	s.header = build(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFillColor}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
			WrapText:   true,
		},
	})
	s.bold = build(&excelize.Style{Font: &excelize.Font{Bold: true}})
	s.title14 = build(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	s.title16 = build(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}})
	s.center = build(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	s.wrap = build(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true},
	})
	s.date = build(numFmt("dd/mm/yyyy"))
	s.time = build(numFmt("hh:mm:ss"))
	s.elapsed = build(numFmt("0"))
	s.oneDecimal = build(numFmt("0.0"))

	if err != nil {
		return styleSet{}, errors.NewStorageError("failed to register workbook styles", err)
	}
	return s, nil
}

// writeConfigSheet writes the editable grouping cells. Counts are
// clamped to the channels actually present so the OFFSET formulas never
// reach past the specimen block.
func (w *ReportWriter) writeConfigSheet(f *excelize.File, styles styleSet, opts domain.ReportOptions, specimenCount int) error {
	faceCount := min(opts.FaceCount, specimenCount)
	coreCount := min(opts.CoreCount, max(0, specimenCount-opts.CoreStart+1))

	cells := []struct {
		cell  string
		value interface{}
	}{
		{"A1", "Group configuration (edit these if your TC layout differs)"},
		{"A3", "Face start TC #"},
		{"A4", "Face count"},
		{"A6", "Core start TC #"},
		{"A7", "Core count"},
		{ConfigFaceStartCell, opts.FaceStart},
		{ConfigFaceCountCell, faceCount},
		{ConfigCoreStartCell, opts.CoreStart},
		{ConfigCoreCountCell, coreCount},
	}
	for _, c := range cells {
		if err := f.SetCellValue(SheetConfig, c.cell, c.value); err != nil {
			return errors.NewStorageError("failed to write config sheet", err)
		}
	}

	if err := f.SetCellStyle(SheetConfig, "A1", "A1", styles.bold); err != nil {
		return errors.NewStorageError("failed to style config sheet", err)
	}
	if err := f.SetColWidth(SheetConfig, "A", "A", 28); err != nil {
		return errors.NewStorageError("failed to size config sheet columns", err)
	}
	return f.SetColWidth(SheetConfig, "B", "B", 16)
}

// writeRawSheet writes the metadata block, the two header rows and the
// absolute readings.
func (w *ReportWriter) writeRawSheet(f *excelize.File, styles styleSet, parsed *domain.LoggerFile, layout Layout, sourceFilename string) error {
	set := func(cell string, value interface{}) error {
		return f.SetCellValue(SheetRaw, cell, value)
	}

	if err := set("A1", "Imported logger data (absolute and temperature rise)"); err != nil {
		return errors.NewStorageError("failed to write raw data sheet", err)
	}
	if err := f.SetCellStyle(SheetRaw, "A1", "A1", styles.title14); err != nil {
		return errors.NewStorageError("failed to style raw data sheet", err)
	}

	metaRows := []struct {
		key   string
		value string
	}{
		{"Source file", sourceFilename},
		{"Name", parsed.Metadata[domain.MetaName]},
		{"Owner", parsed.Metadata[domain.MetaOwner]},
		{"Acquisition", parsed.Metadata[domain.MetaAcquisition]},
		{"Total channels", strconv.Itoa(len(parsed.Channels))},
		{"Specimen TCs", strconv.Itoa(len(layout.Specimen))},
		{"Furnace TCs", strconv.Itoa(len(layout.Furnace))},
	}
	for i, m := range metaRows {
		row := 3 + i
		if err := set(cellName(1, row), m.key); err != nil {
			return errors.NewStorageError("failed to write raw data sheet", err)
		}
		if err := f.SetCellStyle(SheetRaw, cellName(1, row), cellName(1, row), styles.bold); err != nil {
			return errors.NewStorageError("failed to style raw data sheet", err)
		}
		if err := set(cellName(2, row), m.value); err != nil {
			return errors.NewStorageError("failed to write raw data sheet", err)
		}
	}

	if err := w.writeHeaders(f, styles, layout); err != nil {
		return err
	}

	for i, row := range parsed.Rows {
		r := dataStartRow + i
		if err := set(cellName(1, r), row.Scan); err != nil {
			return errors.NewStorageError("failed to write raw data sheet", err)
		}
		if err := set(cellName(2, r), row.Timestamp); err != nil {
			return errors.NewStorageError("failed to write raw data sheet", err)
		}
		if err := set(cellName(3, r), row.Timestamp); err != nil {
			return errors.NewStorageError("failed to write raw data sheet", err)
		}
		if err := set(cellName(4, r), row.ElapsedMinutes); err != nil {
			return errors.NewStorageError("failed to write raw data sheet", err)
		}

		for j, ch := range layout.Specimen {
			if v, ok := row.Value(ch); ok {
				if err := set(cellName(layout.SpecAbsStart+j, r), v); err != nil {
					return errors.NewStorageError("failed to write raw data sheet", err)
				}
			}
		}
		for j, ch := range layout.Furnace {
			if v, ok := row.Value(ch); ok {
				if err := set(cellName(layout.FurnAbsStart+j, r), v); err != nil {
					return errors.NewStorageError("failed to write raw data sheet", err)
				}
			}
		}
	}

	last := layout.LastDataRow()
	if err := f.SetCellStyle(SheetRaw, cellName(2, dataStartRow), cellName(2, last), styles.date); err != nil {
		return errors.NewStorageError("failed to style raw data sheet", err)
	}
	if err := f.SetCellStyle(SheetRaw, cellName(3, dataStartRow), cellName(3, last), styles.time); err != nil {
		return errors.NewStorageError("failed to style raw data sheet", err)
	}
	if err := f.SetCellStyle(SheetRaw, cellName(4, dataStartRow), cellName(4, last), styles.elapsed); err != nil {
		return errors.NewStorageError("failed to style raw data sheet", err)
	}

	return w.applyRawSheetLayout(f, layout)
}

// writeHeaders writes the group name row and the styled column header
// row of the Raw Data table.
func (w *ReportWriter) writeHeaders(f *excelize.File, styles styleSet, layout Layout) error {
	set := func(col, row int, value interface{}) error {
		if err := f.SetCellValue(SheetRaw, cellName(col, row), value); err != nil {
			return errors.NewStorageError("failed to write raw data headers", err)
		}
		return nil
	}

	for c, h := range []string{"Scan", "Date", "Time", "Elapsed (min)"} {
		if err := set(c+1, columnHeaderRow, h); err != nil {
			return err
		}
	}

	for i := range layout.Specimen {
		col := layout.SpecAbsStart + i
		if err := set(col, groupHeaderRow, fmt.Sprintf("TC%d", i+1)); err != nil {
			return err
		}
		if err := set(col, columnHeaderRow, layout.Specimen[i]); err != nil {
			return err
		}
	}
	for i := range layout.Specimen {
		col := layout.SpecRiseStart + i
		if err := set(col, groupHeaderRow, fmt.Sprintf("TC%d ΔT", i+1)); err != nil {
			return err
		}
		if err := set(col, columnHeaderRow, fmt.Sprintf("ΔT%d", i+1)); err != nil {
			return err
		}
	}
	for i := range layout.Furnace {
		col := layout.FurnAbsStart + i
		if err := set(col, groupHeaderRow, fmt.Sprintf("Furnace TC%d", i+1)); err != nil {
			return err
		}
		if err := set(col, columnHeaderRow, layout.Furnace[i]); err != nil {
			return err
		}
	}
	for i := range layout.Furnace {
		col := layout.FurnRiseStart + i
		if err := set(col, groupHeaderRow, fmt.Sprintf("Furnace TC%d ΔT", i+1)); err != nil {
			return err
		}
		if err := set(col, columnHeaderRow, fmt.Sprintf("FΔT%d", i+1)); err != nil {
			return err
		}
	}
	for i, h := range summaryHeaders {
		col := layout.SummaryStart + i
		if err := set(col, groupHeaderRow, "Summary"); err != nil {
			return err
		}
		if err := set(col, columnHeaderRow, h); err != nil {
			return err
		}
	}

	if err := f.SetCellStyle(SheetRaw,
		cellName(1, columnHeaderRow), cellName(layout.SummaryEnd, columnHeaderRow),
		styles.header); err != nil {
		return errors.NewStorageError("failed to style raw data headers", err)
	}
	if err := f.SetCellStyle(SheetRaw,
		cellName(1, groupHeaderRow), cellName(layout.SummaryEnd, groupHeaderRow),
		styles.center); err != nil {
		return errors.NewStorageError("failed to style raw data headers", err)
	}
	if err := f.SetRowHeight(SheetRaw, groupHeaderRow, 22); err != nil {
		return errors.NewStorageError("failed to size raw data headers", err)
	}
	if err := f.SetRowHeight(SheetRaw, columnHeaderRow, 28); err != nil {
		return errors.NewStorageError("failed to size raw data headers", err)
	}
	return nil
}

// applyRawSheetLayout sets column widths, hides the ΔT formula columns
// to match the legacy report, and freezes the header panes.
func (w *ReportWriter) applyRawSheetLayout(f *excelize.File, layout Layout) error {
	if err := f.SetColWidth(SheetRaw, "A", "A", 8); err != nil {
		return errors.NewStorageError("failed to size raw data columns", err)
	}
	if err := f.SetColWidth(SheetRaw, "B", "B", 12); err != nil {
		return errors.NewStorageError("failed to size raw data columns", err)
	}
	if err := f.SetColWidth(SheetRaw, "C", "C", 12); err != nil {
		return errors.NewStorageError("failed to size raw data columns", err)
	}
	if err := f.SetColWidth(SheetRaw, "D", "D", 13); err != nil {
		return errors.NewStorageError("failed to size raw data columns", err)
	}

	if len(layout.Specimen) > 0 {
		cols := colName(layout.SpecRiseStart) + ":" + colName(layout.SpecRiseEnd)
		if err := f.SetColVisible(SheetRaw, cols, false); err != nil {
			return errors.NewStorageError("failed to hide rise columns", err)
		}
	}
	if len(layout.Furnace) > 0 {
		cols := colName(layout.FurnRiseStart) + ":" + colName(layout.FurnRiseEnd)
		if err := f.SetColVisible(SheetRaw, cols, false); err != nil {
			return errors.NewStorageError("failed to hide rise columns", err)
		}
	}

	err := f.SetPanes(SheetRaw, &excelize.Panes{
		Freeze:      true,
		XSplit:      4,
		YSplit:      columnHeaderRow,
		TopLeftCell: cellName(5, dataStartRow),
		ActivePane:  "bottomRight",
	})
	if err != nil {
		return errors.NewStorageError("failed to freeze raw data panes", err)
	}
	return nil
}

// writeFormulas fills the ΔT and summary formula columns for every data
// row. All derived values live in the sheet, not in Go, so the report
// recalculates when a user edits readings.
func (w *ReportWriter) writeFormulas(f *excelize.File, styles styleSet, layout Layout) error {
	setFormula := func(col, row int, formula string) error {
		if err := f.SetCellFormula(SheetRaw, cellName(col, row), formula); err != nil {
			return errors.NewStorageError("failed to write report formulas", err)
		}
		return nil
	}

	ambient := layout.AmbientRow()
	for r := dataStartRow; r <= layout.LastDataRow(); r++ {
		for j := range layout.Specimen {
			absAddr := cellName(layout.SpecAbsStart+j, r)
			ambAddr := cellName(layout.SpecAbsStart+j, ambient)
			formula := fmt.Sprintf(`IF(%s="","",%s-%s)`, absAddr, absAddr, ambAddr)
			if err := setFormula(layout.SpecRiseStart+j, r, formula); err != nil {
				return err
			}
		}
		for j := range layout.Furnace {
			absAddr := cellName(layout.FurnAbsStart+j, r)
			ambAddr := cellName(layout.FurnAbsStart+j, ambient)
			formula := fmt.Sprintf(`IF(%s="","",%s-%s)`, absAddr, absAddr, ambAddr)
			if err := setFormula(layout.FurnRiseStart+j, r, formula); err != nil {
				return err
			}
		}

		firstRise := cellName(layout.SpecRiseStart, r)
		faceRange := fmt.Sprintf("OFFSET(%s,0,%s!$B$3-1,1,%s!$B$4)", firstRise, SheetConfig, SheetConfig)
		coreRange := fmt.Sprintf("OFFSET(%s,0,%s!$B$6-1,1,%s!$B$7)", firstRise, SheetConfig, SheetConfig)

		if err := setFormula(layout.SummaryStart+summaryMeanFace, r,
			fmt.Sprintf(`IF(%s!$B$4=0,"",AVERAGE(%s))`, SheetConfig, faceRange)); err != nil {
			return err
		}
		if err := setFormula(layout.SummaryStart+summaryMaxFace, r,
			fmt.Sprintf(`IF(%s!$B$4=0,"",MAX(%s))`, SheetConfig, faceRange)); err != nil {
			return err
		}
		if err := setFormula(layout.SummaryStart+summaryMeanCore, r,
			fmt.Sprintf(`IF(%s!$B$7=0,"",AVERAGE(%s))`, SheetConfig, coreRange)); err != nil {
			return err
		}

		if len(layout.Furnace) > 0 {
			absRange := cellName(layout.FurnAbsStart, r) + ":" + cellName(layout.FurnAbsEnd, r)
			riseRange := cellName(layout.FurnRiseStart, r) + ":" + cellName(layout.FurnRiseEnd, r)
			if err := setFormula(layout.SummaryStart+summaryFurnaceMeanAbs, r,
				fmt.Sprintf("AVERAGE(%s)", absRange)); err != nil {
				return err
			}
			if err := setFormula(layout.SummaryStart+summaryFurnaceMeanRise, r,
				fmt.Sprintf("AVERAGE(%s)", riseRange)); err != nil {
				return err
			}
		}
	}

	last := layout.LastDataRow()
	if len(layout.Specimen) > 0 {
		if err := f.SetCellStyle(SheetRaw,
			cellName(layout.SpecRiseStart, dataStartRow), cellName(layout.SpecRiseEnd, last),
			styles.oneDecimal); err != nil {
			return errors.NewStorageError("failed to style report formulas", err)
		}
	}
	if len(layout.Furnace) > 0 {
		if err := f.SetCellStyle(SheetRaw,
			cellName(layout.FurnRiseStart, dataStartRow), cellName(layout.FurnRiseEnd, last),
			styles.oneDecimal); err != nil {
			return errors.NewStorageError("failed to style report formulas", err)
		}
	}
	if err := f.SetCellStyle(SheetRaw,
		cellName(layout.SummaryStart, dataStartRow), cellName(layout.SummaryEnd, last),
		styles.oneDecimal); err != nil {
		return errors.NewStorageError("failed to style report formulas", err)
	}
	return nil
}

// writeSummarySheet writes the overview block and the three line charts.
func (w *ReportWriter) writeSummarySheet(f *excelize.File, styles styleSet, layout Layout, sourceFilename string) error {
	cells := []struct {
		cell  string
		value interface{}
	}{
		{"A1", "Test summary (auto-generated)"},
		{"A3", "Source file"},
		{"B3", sourceFilename},
		{"A4", "Total specimen TCs"},
		{"B4", len(layout.Specimen)},
		{"A5", "Total furnace TCs"},
		{"B5", len(layout.Furnace)},
		{"A6", "Note"},
		{"B6", "Edit Config tab if face/core grouping differs (defaults: face 1-5, core 6-10)."},
	}
	for _, c := range cells {
		if err := f.SetCellValue(SheetSummary, c.cell, c.value); err != nil {
			return errors.NewStorageError("failed to write summary sheet", err)
		}
	}
	if err := f.SetCellStyle(SheetSummary, "A1", "A1", styles.title16); err != nil {
		return errors.NewStorageError("failed to style summary sheet", err)
	}
	if err := f.SetColWidth(SheetSummary, "A", "A", 22); err != nil {
		return errors.NewStorageError("failed to size summary sheet columns", err)
	}
	if err := f.SetColWidth(SheetSummary, "B", "B", 70); err != nil {
		return errors.NewStorageError("failed to size summary sheet columns", err)
	}

	charts := []struct {
		title  string
		column int
		anchor string
	}{
		{"Mean temperature rise (face)", layout.SummaryStart + summaryMeanFace, "A9"},
		{"Maximum temperature rise (face)", layout.SummaryStart + summaryMaxFace, "A25"},
		{"Mean temperature rise (core)", layout.SummaryStart + summaryMeanCore, "A41"},
	}
	for _, c := range charts {
		if err := w.addLineChart(f, layout, c.title, c.column, c.anchor); err != nil {
			return err
		}
	}
	return nil
}

// addLineChart plots one summary column against elapsed minutes.
func (w *ReportWriter) addLineChart(f *excelize.File, layout Layout, title string, column int, anchor string) error {
	categories := fmt.Sprintf("'%s'!$D$%d:$D$%d", SheetRaw, dataStartRow, layout.LastDataRow())
	values := fmt.Sprintf("'%s'!$%s$%d:$%s$%d",
		SheetRaw, colName(column), dataStartRow, colName(column), layout.LastDataRow())

	err := f.AddChart(SheetSummary, anchor, &excelize.Chart{
		Type: excelize.Line,
		Series: []excelize.ChartSeries{
			{
				Categories: categories,
				Values:     values,
			},
		},
		Title: []excelize.RichTextRun{{Text: title}},
		XAxis: excelize.ChartAxis{
			Title: []excelize.RichTextRun{{Text: "Elapsed (min)"}},
		},
		YAxis: excelize.ChartAxis{
			Title: []excelize.RichTextRun{{Text: "Temperature rise (°C)"}},
		},
		Legend:    excelize.ChartLegend{Position: "none"},
		Dimension: excelize.ChartDimension{Width: 640, Height: 290},
	})
	if err != nil {
		return errors.NewStorageError("failed to add chart", err).
			WithContext("title", title)
	}
	return nil
}

// writeObservationsSheet writes the free-form notes tab.
func (w *ReportWriter) writeObservationsSheet(f *excelize.File, styles styleSet) error {
	if err := f.SetCellValue(SheetObservations, "A1", "Observations"); err != nil {
		return errors.NewStorageError("failed to write observations sheet", err)
	}
	if err := f.SetCellStyle(SheetObservations, "A1", "A1", styles.title14); err != nil {
		return errors.NewStorageError("failed to style observations sheet", err)
	}
	if err := f.SetCellValue(SheetObservations, "A3",
		"(This tab is intentionally free-form. Paste or type your test-specific notes here.)"); err != nil {
		return errors.NewStorageError("failed to write observations sheet", err)
	}
	if err := f.SetCellStyle(SheetObservations, "A3", "A3", styles.wrap); err != nil {
		return errors.NewStorageError("failed to style observations sheet", err)
	}
	return f.SetColWidth(SheetObservations, "A", "A", 100)
}

// hideGridlines turns gridlines off on every sheet for the report look.
func hideGridlines(f *excelize.File) error {
	show := false
	for _, sheet := range []string{SheetSummary, SheetObservations, SheetRaw, SheetConfig} {
		if err := f.SetSheetView(sheet, 0, &excelize.ViewOptions{ShowGridLines: &show}); err != nil {
			return errors.NewStorageError("failed to set sheet view", err).
				WithContext("sheet", sheet)
		}
	}
	return nil
}
