package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestGetLimit(t *testing.T) {
	e := echo.New()
	cases := map[string]int{
		"/":             50,
		"/?limit=10":    10,
		"/?limit=-3":    50,
		"/?limit=abc":   50,
		"/?limit=10000": 200,
	}

	for target, want := range cases {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		c := e.NewContext(req, httptest.NewRecorder())
		assert.Equal(t, want, GetLimit(c, 50, 200), target)
	}
}
