package errors_test

import (
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/agentstation/checkmate/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNotFoundError(t *testing.T) {
	err := pkgerrors.NewNotFoundError("rule", "V-1001")
	assert.Equal(t, "rule with ID V-1001 not found", err.Error())
	assert.True(t, pkgerrors.IsNotFound(err))

	wrapped := errors.Join(errors.New("failed"), err)
	assert.True(t, pkgerrors.IsNotFound(wrapped))
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := pkgerrors.NewValidationError("concurrency", -1, "must be positive")
		assert.Equal(t, "validation failed for field concurrency: must be positive", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "empty template"}
		assert.Equal(t, "validation failed: empty template", err.Error())
	})
}

func TestParseError(t *testing.T) {
	t.Run("with file and field", func(t *testing.T) {
		err := pkgerrors.NewParseError("cklb", "old/host1.cklb", "stigs[0].rules[3].group_id_src", "missing required field", nil)
		assert.Equal(t, "cklb parse error in old/host1.cklb at stigs[0].rules[3].group_id_src: missing required field", err.Error())
		assert.True(t, pkgerrors.IsParseError(err))
	})

	t.Run("wrapped cause", func(t *testing.T) {
		cause := errors.New("unexpected end of JSON input")
		err := pkgerrors.WrapParse("json", "bad.cklb", cause)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsParseError(err))
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "bad.cklb")
	})

	t.Run("nil passthrough", func(t *testing.T) {
		assert.NoError(t, pkgerrors.WrapParse("json", "x", nil))
	})
}

func TestIOError(t *testing.T) {
	cause := errors.New("permission denied")
	err := pkgerrors.WrapIO("write", "/out/merged.cklb", cause)

	var ioErr *pkgerrors.IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "write", ioErr.Operation)
	assert.Equal(t, "/out/merged.cklb", ioErr.Path)
	assert.ErrorIs(t, err, cause)
	assert.NoError(t, pkgerrors.WrapIO("write", "x", nil))
}

func TestIdentityMismatchError(t *testing.T) {
	err := pkgerrors.NewIdentityMismatchError("WIN10", "WIN_10")
	assert.True(t, pkgerrors.IsIdentityMismatch(err))
	assert.Contains(t, err.Error(), `"WIN10"`)
	assert.Contains(t, err.Error(), `"WIN_10"`)

	wrapped := fmt.Errorf("upgrade host1: %w", err)
	var mm *pkgerrors.IdentityMismatchError
	require.True(t, errors.As(wrapped, &mm))
	assert.Equal(t, "WIN_10", mm.NewID)
}

func TestMergeError(t *testing.T) {
	t.Run("with conflicts", func(t *testing.T) {
		err := pkgerrors.NewMergeError("old.cklb", "new.cklb", []string{"V-1001"}, nil)
		assert.Contains(t, err.Error(), "V-1001")
		assert.True(t, pkgerrors.IsMergeError(err))
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("nil bundle")
		err := pkgerrors.NewMergeError("old", "new", nil, cause)
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "nil bundle")
	})
}

func TestConfigError(t *testing.T) {
	cause := errors.New("bad value")
	err := pkgerrors.NewConfigError("reconciler", "invalid concurrency", cause)
	assert.Equal(t, "configuration error in reconciler: invalid concurrency", err.Error())
	assert.ErrorIs(t, err, cause)
}
