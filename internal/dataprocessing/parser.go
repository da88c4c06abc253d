package dataprocessing

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"instrcli/internal/errors"
	"instrcli/pkg/contracts/domain"
)

// Delimiter variants seen in INSTR exports.
const (
	delimTab   = "\t"
	delimComma = ","
)

// metadataKeys are the preamble keys worth keeping.
var metadataKeys = map[string]bool{
	domain.MetaName:            true,
	domain.MetaOwner:           true,
	domain.MetaComments:        true,
	domain.MetaTotal:           true,
	domain.MetaAcquisition:     true,
	domain.MetaAcquisitionDate: true,
}

var timeRe = regexp.MustCompile(`^(\d{1,2}):(\d{2}):(\d{2})(?::(\d{1,3}))?$`)
var dateRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)

// Parser reads INSTR logger exports.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a parser with the given logger.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// ParseFile reads an INSTR export and extracts metadata, the channel
// list and the scan rows.
func (p *Parser) ParseFile(path string) (*domain.LoggerFile, error) {
	lines, err := readLinesUTF16(path)
	if err != nil {
		return nil, errors.NewStorageError("failed to read logger export", err).
			WithContext("path", path)
	}

	delim := detectDelimiter(lines)
	p.logger.Debug("detected export delimiter",
		slog.String("path", path),
		slog.Bool("tab_delimited", delim == delimTab))

	meta := parseMetadata(lines)

	chStart, chEnd, err := findChannelBlock(lines, delim)
	if err != nil {
		return nil, err
	}
	channels, err := parseChannels(lines, chStart, chEnd, delim)
	if err != nil {
		return nil, err
	}

	headerIdx, err := findDataHeader(lines, delim)
	if err != nil {
		return nil, err
	}

	rows := p.parseDataRows(lines[headerIdx+1:], channels, delim)
	if len(rows) == 0 {
		return nil, errors.NewParsingError("no data rows parsed from file", nil).
			WithContext("path", path)
	}

	p.logger.Info("parsed logger export",
		slog.String("path", path),
		slog.Int("channel_count", len(channels)),
		slog.Int("row_count", len(rows)))

	return &domain.LoggerFile{
		Metadata: meta,
		Channels: channels,
		Rows:     rows,
	}, nil
}

// readLinesUTF16 reads the export file. INSTR exports are UTF-16,
// normally little endian with a BOM.
func readLinesUTF16(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	scanner := bufio.NewScanner(transform.NewReader(f, decoder))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// detectDelimiter returns tab or comma depending on the channel table
// header format. If the header is missing it falls back to whichever
// delimiter is more common among the early lines.
func detectDelimiter(lines []string) string {
	limit := len(lines)
	if limit > 200 {
		limit = 200
	}
	for _, line := range lines[:limit] {
		s := strings.TrimSpace(line)
		if strings.HasPrefix(s, "Channel") && strings.Contains(s, "Name") && strings.Contains(s, "Function") {
			if strings.Contains(s, "Channel\tName\tFunction") {
				return delimTab
			}
			if strings.Contains(s, "Channel,Name,Function") {
				return delimComma
			}
		}
	}

	limit = len(lines)
	if limit > 50 {
		limit = 50
	}
	tabHits, commaHits := 0, 0
	for _, line := range lines[:limit] {
		if strings.Contains(line, delimTab) {
			tabHits++
		}
		if strings.Contains(line, delimComma) {
			commaHits++
		}
	}
	if tabHits >= commaHits {
		return delimTab
	}
	return delimComma
}

// splitFields splits a line on the delimiter and trims each field.
// Some rows carry stray leading spaces before markers like "Control:".
func splitFields(line, delim string) []string {
	parts := strings.Split(line, delim)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// parseMetadata extracts the recognised key/value rows from the
// preamble. Metadata rows differ between exports (tab or comma), so the
// delimiter is chosen per line.
func parseMetadata(lines []string) map[string]string {
	meta := make(map[string]string)
	limit := len(lines)
	if limit > 60 {
		limit = 60
	}
	for _, line := range lines[:limit] {
		delim := delimComma
		if strings.Contains(line, delimTab) {
			delim = delimTab
		}
		parts := splitFields(line, delim)
		if len(parts) == 0 {
			continue
		}
		key := strings.TrimSuffix(strings.TrimSpace(parts[0]), ":")
		if !metadataKeys[key] {
			continue
		}
		var values []string
		for _, p := range parts[1:] {
			if p != "" {
				values = append(values, p)
			}
		}
		meta[key] = strings.Join(values, " ")
	}
	return meta
}

// findChannelBlock returns the [start, end) line range of the channel
// definition rows. Both export formats place a "Scan ... Control:"
// marker line between the channel table and the data header.
func findChannelBlock(lines []string, delim string) (int, int, error) {
	header := "Channel" + delim + "Name" + delim + "Function"

	start := -1
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), header) {
			start = i + 1
			break
		}
	}
	if start == -1 {
		return 0, 0, errors.NewParsingError("could not find channel definition table header", nil)
	}

	for i := start; i < len(lines); i++ {
		s := strings.TrimLeft(lines[i], " \t")
		if strings.HasPrefix(s, "Scan") && strings.Contains(s, "Control:") {
			return start, i, nil
		}
	}
	return 0, 0, errors.NewParsingError("could not find end of channel definition block", nil)
}

// parseChannels reads the channel numbers from the definition block.
func parseChannels(lines []string, start, end int, delim string) ([]int, error) {
	var channels []int
	for _, line := range lines[start:end] {
		parts := splitFields(line, delim)
		if len(parts) == 0 {
			continue
		}
		ch, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		channels = append(channels, ch)
	}
	if len(channels) == 0 {
		return nil, errors.NewParsingError("no channels found in channel definition block", nil)
	}
	return channels, nil
}

// findDataHeader locates the data table header row (Scan, Time, ...).
func findDataHeader(lines []string, delim string) (int, error) {
	for i, line := range lines {
		s := strings.TrimSpace(line)
		if delim == delimTab {
			if strings.HasPrefix(s, "Scan\tTime\t") {
				return i, nil
			}
		} else {
			if strings.HasPrefix(s, "Scan,Time,") || strings.HasPrefix(s, "Scan,Time") {
				return i, nil
			}
		}
	}
	return 0, errors.NewParsingError("could not find data table header", nil)
}

// parseDataRows parses the scan rows following the data header. Two
// layouts exist:
//
//	tab export:   Scan, Date, Time, (value, alarm)*N
//	comma export: Scan, DateTime, (value, alarm)*N
func (p *Parser) parseDataRows(lines []string, channels []int, delim string) []domain.ScanRow {
	var rows []domain.ScanRow
	var firstTS time.Time
	haveFirst := false

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		parts := splitFields(line, delim)
		if len(parts) < 3 {
			continue
		}

		// Repeated section headers appear when exports are concatenated
		if strings.HasPrefix(strings.ToLower(parts[0]), "scan") &&
			strings.Contains(strings.ToLower(parts[1]), "time") {
			continue
		}

		scan, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}

		var ts time.Time
		var dataStart int
		if delim == delimTab {
			if len(parts) < 4 {
				continue
			}
			ts, err = parseTimestamp(parts[1], parts[2])
			if err != nil {
				p.logger.Debug("skipping row with bad timestamp",
					slog.Int("scan", scan),
					slog.String("error", err.Error()))
				continue
			}
			dataStart = 3
		} else {
			ts, err = parseTimestampOneField(parts[1])
			if err != nil {
				p.logger.Debug("skipping row with bad timestamp",
					slog.Int("scan", scan),
					slog.String("error", err.Error()))
				continue
			}
			dataStart = 2
		}

		if !haveFirst {
			firstTS = ts
			haveFirst = true
		}
		elapsed := ts.Sub(firstTS).Minutes()

		values := make(map[int]float64, len(channels))
		// Each channel contributes two columns: value, alarm. Trailing
		// empty columns are ignored.
		for ci := range channels {
			vIdx := dataStart + ci*2
			if vIdx >= len(parts) {
				break
			}
			v := parts[vIdx]
			if v == "" {
				continue
			}
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				continue
			}
			values[channels[ci]] = f
		}

		rows = append(rows, domain.ScanRow{
			Scan:           scan,
			Timestamp:      ts,
			ElapsedMinutes: elapsed,
			Values:         values,
		})
	}

	return rows
}

// parseTimestamp parses a dd/mm/yyyy date plus an hh:mm:ss time with an
// optional millisecond fragment (hh:mm:ss:fff).
func parseTimestamp(dateS, timeS string) (time.Time, error) {
	dm := dateRe.FindStringSubmatch(strings.TrimSpace(dateS))
	if dm == nil {
		return time.Time{}, fmt.Errorf("unrecognised date format: %q", dateS)
	}
	day, _ := strconv.Atoi(dm[1])
	month, _ := strconv.Atoi(dm[2])
	year, _ := strconv.Atoi(dm[3])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("date out of range: %q", dateS)
	}

	tm := timeRe.FindStringSubmatch(strings.TrimSpace(timeS))
	if tm == nil {
		return time.Time{}, fmt.Errorf("unrecognised time format: %q", timeS)
	}
	hh, _ := strconv.Atoi(tm[1])
	mm, _ := strconv.Atoi(tm[2])
	ss, _ := strconv.Atoi(tm[3])
	nanos := 0
	if tm[4] != "" {
		ms, _ := strconv.Atoi(tm[4])
		nanos = ms * int(time.Millisecond)
	}

	return time.Date(year, time.Month(month), day, hh, mm, ss, nanos, time.Local), nil
}

// parseTimestampOneField parses a combined "dd/mm/yyyy hh:mm:ss:fff"
// field from comma-delimited exports.
func parseTimestampOneField(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	dateS, timeS, found := strings.Cut(s, " ")
	if !found {
		return time.Time{}, fmt.Errorf("unrecognised datetime format: %q", s)
	}
	return parseTimestamp(dateS, timeS)
}
