// Package exporter renders a parsed logger file into the xlsx report.
//
// The workbook layout is fixed: "Summary of Results" (charts),
// "Observations" (free-form), "Raw Data" (readings plus formula
// columns) and "Config" (editable grouping cells). Temperature-rise
// values are written as formulas against the ambient row rather than
// precomputed numbers, so the report stays live when a user edits
// readings or regroups thermocouples on the Config sheet.
package exporter
