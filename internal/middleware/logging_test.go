package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/require"
)

func newLoggedEcho(buf *bytes.Buffer) *echo.Echo {
	e := echo.New()
	logger := slog.New(slog.NewJSONHandler(buf, nil))
	e.Use(echomw.RequestID(), RequestLogger(logger))
	e.GET("/ping", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	return e
}

func lastLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)

	var line map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &line))
	return line
}

func TestRequestLoggerUsesGeneratedRequestID(t *testing.T) {
	var buf bytes.Buffer
	e := newLoggedEcho(&buf)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	generated := rec.Header().Get(echo.HeaderXRequestID)
	require.NotEmpty(t, generated)

	line := lastLogLine(t, &buf)
	require.Equal(t, generated, line["request_id"])
	require.Equal(t, "/ping", line["path"])
}

func TestRequestLoggerKeepsInboundRequestID(t *testing.T) {
	var buf bytes.Buffer
	e := newLoggedEcho(&buf)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(echo.HeaderXRequestID, "trace-42")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	line := lastLogLine(t, &buf)
	require.Equal(t, "trace-42", line["request_id"])
}
