package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifiedError_ErrorString(t *testing.T) {
	err := NewError(CategoryValidation, "bad manifest").Build()
	assert.Equal(t, "[validation:error] bad manifest", err.Error())

	wrapped := WrapError(fmt.Errorf("boom"), CategoryTagDB, "query failed").Build()
	assert.Equal(t, "[tagdb:error] query failed: boom", wrapped.Error())
	assert.EqualError(t, wrapped.Unwrap(), "boom")
}

func TestPreconditionViolation(t *testing.T) {
	err := PreconditionViolation("manifest already installed")
	require.True(t, IsPrecondition(err))
	reason, ok := err.Context().Get("reason")
	require.True(t, ok)
	assert.Equal(t, "manifest already installed", reason)
}

func TestAsClassified_WrappedChain(t *testing.T) {
	inner := TagNotFound("TAG-1")
	outer := fmt.Errorf("resolving expected tags: %w", inner)

	c, ok := AsClassified(outer)
	require.True(t, ok)
	assert.Equal(t, CategoryNotFound, c.Category())
}

func TestHTTPAdapter_StatusCodes(t *testing.T) {
	a := NewHTTPErrorAdapter(nil)
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{PreconditionViolation("active cycle"), http.StatusConflict},
		{ValidationFailed("orders", "empty"), http.StatusBadRequest},
		{TagNotFound("T"), http.StatusNotFound},
		{ReaderError("start", fmt.Errorf("x")), http.StatusBadGateway},
		{TagDBError("get", fmt.Errorf("x")), http.StatusInternalServerError},
		{fmt.Errorf("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, a.StatusCodeFor(tc.err))
	}
}

func TestCLIAdapter_ExitCodes(t *testing.T) {
	a := NewCLIErrorAdapter(false, nil)
	assert.Equal(t, 0, a.ExitCodeFor(nil))
	assert.Equal(t, 2, a.ExitCodeFor(PreconditionViolation("x")))
	assert.Equal(t, 7, a.ExitCodeFor(ConfigError("ports.api", "missing")))
	assert.Equal(t, 9, a.ExitCodeFor(TagDBError("put", fmt.Errorf("x"))))
	assert.Equal(t, 1, a.ExitCodeFor(fmt.Errorf("plain")))
}

func TestNotifyError_IsRetryableWarning(t *testing.T) {
	err := NotifyError("missing_tags", fmt.Errorf("nats down"))
	assert.Equal(t, SeverityWarning, err.Severity())
	assert.True(t, err.CanRetry())
}
