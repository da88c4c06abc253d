package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"instrcli/internal/errors"
	"instrcli/pkg/contracts/domain"
)

// OptionsValidator validates report options and input files before a
// conversion starts.
type OptionsValidator struct {
	logger   *slog.Logger
	validate *validator.Validate
}

// NewOptionsValidator creates a new options validator
func NewOptionsValidator(logger *slog.Logger) *OptionsValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &OptionsValidator{
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// ValidateOptions checks a ReportOptions value against its struct tags
// and the cross-field rules the tags cannot express.
func (v *OptionsValidator) ValidateOptions(opts domain.ReportOptions) error {
	if err := v.validate.Struct(opts); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			v.logger.Error("report options rejected",
				slog.String("field", fe.Field()),
				slog.String("rule", fe.Tag()))
			return errors.NewValidationError(
				fmt.Sprintf("option %s fails rule %q", fe.Field(), fe.Tag()))
		}
		return errors.NewValidationError(err.Error())
	}

	// The face/core windows index into the specimen channel list, which
	// the layout caps.
	if opts.FaceStart+opts.FaceCount-1 > domain.MaxSpecimenChannels {
		return errors.NewValidationError(fmt.Sprintf(
			"face window %d-%d exceeds the %d specimen channel limit",
			opts.FaceStart, opts.FaceStart+opts.FaceCount-1, domain.MaxSpecimenChannels))
	}
	if opts.CoreStart+opts.CoreCount-1 > domain.MaxSpecimenChannels {
		return errors.NewValidationError(fmt.Sprintf(
			"core window %d-%d exceeds the %d specimen channel limit",
			opts.CoreStart, opts.CoreStart+opts.CoreCount-1, domain.MaxSpecimenChannels))
	}

	return nil
}

// ValidateInputFile checks that the input export exists, is a regular
// file and looks like a CSV export.
func (v *OptionsValidator) ValidateInputFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.NewValidationError("input file path is empty")
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("input file does not exist", slog.String("path", path))
		return errors.NewNotFoundError(fmt.Sprintf("input file %s", path))
	}
	if err != nil {
		return errors.NewStorageError("failed to stat input file", err).
			WithContext("path", path)
	}
	if info.IsDir() {
		return errors.NewValidationError(fmt.Sprintf("%s is a directory, not a file", path))
	}

	if ext := strings.ToLower(filepath.Ext(path)); ext != ".csv" && ext != ".txt" {
		v.logger.Warn("input file has an unexpected extension",
			slog.String("path", path),
			slog.String("extension", ext))
		// Not fatal. Loggers export with odd names; the parser decides.
	}

	return nil
}

// ValidateOutputPath ensures the output directory exists and the output
// file name ends in .xlsx.
func (v *OptionsValidator) ValidateOutputPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.NewValidationError("output file path is empty")
	}

	if ext := strings.ToLower(filepath.Ext(path)); ext != ".xlsx" {
		return errors.NewValidationError(fmt.Sprintf("output file must be .xlsx, got %q", ext))
	}

	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return errors.NewStorageError("output directory is not accessible", err).
			WithContext("directory", dir)
	}
	if !info.IsDir() {
		return errors.NewValidationError(fmt.Sprintf("%s is not a directory", dir))
	}

	return nil
}
