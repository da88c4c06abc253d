// Package dataprocessing turns a raw INSTR logger export into the domain
// model the exporter renders.
//
// The export is a loosely structured UTF-16 text file with three
// sections: a metadata preamble, a channel definition table, and a data
// table where every channel owns a value column and an alarm column.
// Field separators vary between exports (tab or comma), so the parser
// detects the delimiter before reading anything else.
//
// Parsing is deliberately forgiving: unreadable rows and cells are
// skipped, not fatal. Loggers drop channels mid-test and exports carry
// trailing junk columns; a report from the readable rows beats no report.
package dataprocessing
