// Package services wires parsing, resampling and rendering into the
// operations the command line tools expose.
package services
