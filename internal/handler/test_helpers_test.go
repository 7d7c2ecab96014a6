package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func newTestEcho() *echo.Echo {
	return echo.New()
}

// newJSONRequest encodes body as JSON; a nil body sends no payload.
func newJSONRequest(method, target string, body any) *http.Request {
	var bodyReader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, bodyReader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return req
}

// newJSONRequestRaw sends body unmodified, for malformed payload cases.
func newJSONRequestRaw(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func newTestContext(e *echo.Echo, req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func setPathParams(c echo.Context, params map[string]string) {
	names := make([]string, 0, len(params))
	values := make([]string, 0, len(params))
	for name, value := range params {
		names = append(names, name)
		values = append(values, value)
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
}

// assertJSONResponse checks the status and decodes the body into target when set.
func assertJSONResponse(t *testing.T, rec *httptest.ResponseRecorder, expectedStatus int, target any) {
	t.Helper()
	require.Equal(t, expectedStatus, rec.Code, "unexpected status code: %s", rec.Body.String())
	if target != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), target), "failed to parse JSON response")
	}
}
