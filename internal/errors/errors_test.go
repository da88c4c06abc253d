package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "with cause",
			err:  NewParsingError("bad channel table", fmt.Errorf("line 12")),
			want: "[PARSING] bad channel table: line 12",
		},
		{
			name: "without cause",
			err:  NewValidationError("face count out of range"),
			want: "[VALIDATION] face count out of range",
		},
		{
			name: "not found",
			err:  NewNotFoundError("input file"),
			want: "[NOT_FOUND] input file not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := NewStorageError("cannot write report", cause)

	assert.True(t, stderrors.Is(err, cause))

	var appErr *AppError
	require.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, ErrTypeStorage, appErr.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := NewConfigError("bad logging level", nil).
		WithContext("level", "loud").
		WithContext("file", "config.yaml")

	assert.Equal(t, "loud", err.Context["level"])
	assert.Equal(t, "config.yaml", err.Context["file"])
}

func TestIsType(t *testing.T) {
	err := NewParsingError("no data rows", nil)

	assert.True(t, IsType(err, ErrTypeParsing))
	assert.False(t, IsType(err, ErrTypeStorage))
	assert.False(t, IsType(fmt.Errorf("plain"), ErrTypeParsing))
}
