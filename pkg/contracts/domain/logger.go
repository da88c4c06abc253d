package domain

import (
	"time"
)

// LoggerFile represents a parsed INSTR data-logger export.
type LoggerFile struct {
	// Metadata holds the key/value rows from the file preamble
	// (Name, Owner, Acquisition, ...).
	Metadata map[string]string `json:"metadata"`

	// Channels lists the channel numbers from the channel definition
	// table, in file order.
	Channels []int `json:"channels"`

	// Rows holds the scan rows in file order. The first row is the
	// ambient reference scan.
	Rows []ScanRow `json:"rows"`
}

// ScanRow is a single logger scan with one reading per channel.
type ScanRow struct {
	Scan           int             `json:"scan"`
	Timestamp      time.Time       `json:"timestamp"`
	ElapsedMinutes float64         `json:"elapsed_minutes"`
	Values         map[int]float64 `json:"values"`
}

// Value returns the reading for a channel and whether it was present
// in the scan. Channels drop out mid-test, so absence is normal.
func (r ScanRow) Value(channel int) (float64, bool) {
	v, ok := r.Values[channel]
	return v, ok
}

// Metadata keys recognised in the export preamble.
const (
	MetaName            = "Name"
	MetaOwner           = "Owner"
	MetaComments        = "Comments"
	MetaTotal           = "Total"
	MetaAcquisition     = "Acquisition"
	MetaAcquisitionDate = "Acquisition Date"
)
