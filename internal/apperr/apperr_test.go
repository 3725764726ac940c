package apperr

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsKind(t *testing.T) {
	err := New(NotFound, "catalog.read", fs.ErrNotExist)
	wrapped := fmt.Errorf("generate: %w", err)

	assert.ErrorIs(t, wrapped, NotFound)
	assert.ErrorIs(t, wrapped, fs.ErrNotExist)
	assert.NotErrorIs(t, wrapped, CodecError)
	assert.Equal(t, NotFound, KindOf(wrapped))
}

func TestErrorMessage(t *testing.T) {
	err := Errorf(CodecError, "encode", "quality %d out of range", 101)
	assert.Equal(t, "encode: codec_error: quality 101 out of range", err.Error())
	assert.Equal(t, "io_error", New(IOError, "", nil).Error())
}

func TestHTTPStatus(t *testing.T) {
	cases := map[error]int{
		New(NotFound, "x", nil):             http.StatusNotFound,
		New(CodecError, "x", nil):           http.StatusUnprocessableEntity,
		New(InvalidDimensions, "x", nil):    http.StatusUnprocessableEntity,
		New(InvalidConfiguration, "x", nil): http.StatusBadRequest,
		New(IOError, "x", nil):              http.StatusServiceUnavailable,
		errors.New("boom"):                  http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, HTTPStatus(err), err.Error())
	}
}
