package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("open archive: %w", New(CodeStructural, "manifest.json missing"))

	assert.True(t, stderrors.Is(err, New(CodeStructural, "")))
	assert.False(t, stderrors.Is(err, New(CodeVersionIncompatible, "")))
	assert.Equal(t, CodeStructural, CodeOf(err))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := stderrors.New("unexpected EOF")
	err := Wrap(CodeStructural, "parse project-state.json", cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "parse project-state.json: unexpected EOF", err.Error())
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, CodeUnknown, CodeOf(stderrors.New("boom")))
	assert.False(t, HasCode(nil, CodeInternal))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeStructural, http.StatusBadRequest},
		{CodeNoExportableContent, http.StatusBadRequest},
		{CodeVersionIncompatible, http.StatusUnprocessableEntity},
		{CodeRemoteFetchFailure, http.StatusBadGateway},
		{CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(string(tc.code), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.code.HTTPStatus())
		})
	}
}
