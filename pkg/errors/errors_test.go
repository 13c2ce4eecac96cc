package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesWrappedCode(t *testing.T) {
	err := fmt.Errorf("resolve room: %w", NotFound("Chat room", nil))

	assert.True(t, Is(err, "NOT_FOUND"))
	assert.False(t, Is(err, "FORBIDDEN"))
	assert.Equal(t, http.StatusNotFound, StatusOf(err))
}

func TestStatusOfPlainError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusOf(fmt.Errorf("boom")))
}

func TestUpstreamKeepsCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Upstream("Marketplace API unavailable", 0, cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusBadGateway, err.Status)
}

func TestAs(t *testing.T) {
	appErr, ok := As(fmt.Errorf("send: %w", TooManyRequests("slow down")))
	assert.True(t, ok)
	assert.Equal(t, "TOO_MANY_REQUESTS", appErr.Code)

	_, ok = As(fmt.Errorf("boom"))
	assert.False(t, ok)
}
