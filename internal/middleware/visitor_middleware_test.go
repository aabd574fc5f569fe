package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func visitorEcho() *echo.Echo {
	e := echo.New()
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, GetVisitorID(c))
	}, VisitorMiddleware())
	return e
}

func TestMiddlewareIssuesVisitorCookie(t *testing.T) {
	e := visitorEcho()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Body.String())

	var cookie *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "visitor_token" {
			cookie = ck
		}
	}
	require.NotNil(t, cookie, "visitor cookie missing")
	assert.True(t, cookie.HttpOnly)
}

func TestMiddlewareKeepsVisitorAcrossRequests(t *testing.T) {
	e := visitorEcho()

	first := httptest.NewRecorder()
	e.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	id := first.Body.String()

	second := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range first.Result().Cookies() {
		req.AddCookie(ck)
	}
	e.ServeHTTP(second, req)

	assert.Equal(t, id, second.Body.String())
	// no new cookie on a valid session
	assert.Empty(t, second.Result().Cookies())
}

func TestMiddlewareReplacesTamperedCookie(t *testing.T) {
	e := visitorEcho()

	first := httptest.NewRecorder()
	e.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	id := first.Body.String()

	second := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "visitor_token", Value: "not-a-jwt"})
	e.ServeHTTP(second, req)

	require.Equal(t, http.StatusOK, second.Code)
	assert.NotEqual(t, id, second.Body.String())
	assert.NotEmpty(t, second.Result().Cookies(), "a fresh cookie should be issued")
}
