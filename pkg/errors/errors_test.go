package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	e := New(CodeParseError, "bad magic")
	assert.Equal(t, "[PARSE_ERROR] bad magic", e.Error())

	wrapped := Wrap(CodeParseError, "bad magic", fmt.Errorf("got %q", "P7"))
	assert.Equal(t, `[PARSE_ERROR] bad magic: got "P7"`, wrapped.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	inner := stderrors.New("short read")
	e := Wrap(CodeParseError, "header truncated", inner)

	assert.Equal(t, inner, e.Unwrap())
	assert.True(t, stderrors.Is(e, inner))
}

func TestAppError_IsByCode(t *testing.T) {
	e := Wrap(CodeInvalidInput, "colormax out of range", nil)

	assert.True(t, stderrors.Is(e, ErrInvalidInput))
	assert.False(t, stderrors.Is(e, ErrParseError))
	assert.True(t, IsInvalidInput(e))
	assert.False(t, IsParseError(e))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, CodeDatabaseError, GetErrorCode(Wrap(CodeDatabaseError, "insert failed", nil)))
	assert.Equal(t, CodeUnknown, GetErrorCode(stderrors.New("plain")))

	// Wrapped deeper with fmt.Errorf still resolves
	deep := fmt.Errorf("outer: %w", New(CodeStorageError, "upload failed"))
	assert.Equal(t, CodeStorageError, GetErrorCode(deep))
}

func TestGetErrorMessage(t *testing.T) {
	require.Equal(t, "upload failed", GetErrorMessage(New(CodeStorageError, "upload failed")))
	assert.Equal(t, "plain", GetErrorMessage(stderrors.New("plain")))
	assert.Equal(t, "", GetErrorMessage(nil))
}
