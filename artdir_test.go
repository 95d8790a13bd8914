package artdir_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/artdir"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := artdir.Errorf(artdir.ENOTFOUND, "location %q not found", "boston")

	assert.Equal(t, artdir.ENOTFOUND, artdir.ErrorCode(err))
	assert.Equal(t, "location \"boston\" not found", artdir.ErrorMessage(err))
}

func TestErrorCode_WrappedError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("loading: %w", artdir.Errorf(artdir.EINVALID, "bad json"))

	assert.Equal(t, artdir.EINVALID, artdir.ErrorCode(err))
	assert.Equal(t, "bad json", artdir.ErrorMessage(err))
}

func TestErrorCode_ForeignError(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")

	assert.Equal(t, artdir.EINTERNAL, artdir.ErrorCode(err))
	assert.Equal(t, "Internal error.", artdir.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, artdir.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, artdir.ErrorMessage(nil))
}
