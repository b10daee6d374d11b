package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaelony/dx-fintools-fs/pkg/storage"
	"github.com/aaelony/dx-fintools-fs/pkg/web/config"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	history, err := storage.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { history.Close() })

	server, err := New(&config.Config{}, history)
	require.NoError(t, err)
	return server
}

func postJSON(t *testing.T, handler http.Handler, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func TestFutureValueEndpoint(t *testing.T) {
	router := testServer(t).Router()

	resp := postJSON(t, router, "/api/fv", computeRequest{
		Principal:   "1,000.00",
		Years:       "10",
		RatePercent: 5,
		Compounding: "annual",
	})

	require.Equal(t, http.StatusOK, resp.Code)

	var result computeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.InDelta(t, 1628.89, result.Value, 0.001)
	assert.Equal(t, "$1,628.89", result.Formatted)
	assert.Contains(t, result.Description, "Annually future value of $1,000.00")
}

func TestPresentValueEndpoint(t *testing.T) {
	router := testServer(t).Router()

	resp := postJSON(t, router, "/api/pv", computeRequest{
		Principal:   "1628.89",
		Years:       "10",
		RatePercent: 5,
		Compounding: "annual",
	})

	require.Equal(t, http.StatusOK, resp.Code)

	var result computeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.InDelta(t, 1000, result.Value, 0.011)
	assert.Contains(t, result.Description, "present value")
}

func TestComputeValidation(t *testing.T) {
	router := testServer(t).Router()

	resp := postJSON(t, router, "/api/fv", computeRequest{
		Principal:   "",
		Years:       "abc",
		RatePercent: -1,
		Compounding: "fortnightly",
	})

	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	var body errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Principal amount is required", body.Errors["principal"])
	assert.Equal(t, "Please enter a valid number (digits and decimal point only)", body.Errors["years"])
	assert.Equal(t, "Interest rate must be zero or greater", body.Errors["rate_percent"])
	assert.Contains(t, body.Errors["compounding"], "fortnightly")
}

func TestCustomCompounding(t *testing.T) {
	router := testServer(t).Router()

	resp := postJSON(t, router, "/api/fv", computeRequest{
		Principal:     "1000",
		Years:         "1",
		RatePercent:   5,
		Compounding:   "custom",
		CustomPeriods: 365,
	})

	require.Equal(t, http.StatusOK, resp.Code)

	var result computeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Contains(t, result.Description, "Custom")

	resp = postJSON(t, router, "/api/fv", computeRequest{
		Principal:   "1000",
		Years:       "1",
		RatePercent: 5,
		Compounding: "custom",
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestHistoryEndpoint(t *testing.T) {
	router := testServer(t).Router()

	resp := postJSON(t, router, "/api/fv", computeRequest{
		Principal:   "500",
		Years:       "2",
		RatePercent: 3,
		Compounding: "monthly",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	require.Equal(t, http.StatusOK, recorder.Code)

	var entries []storage.Entry
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "fv", entries[0].Kind)
	assert.Equal(t, "Monthly", entries[0].Compounding)
	assert.Equal(t, 500.0, entries[0].Principal)
}

func TestIndexPage(t *testing.T) {
	router := testServer(t).Router()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	page := recorder.Body.String()
	assert.Contains(t, page, "Future Value Calculator")
	assert.Contains(t, page, `value="1000.00"`)
	assert.Contains(t, page, "Annually future value of $1,000.00")
}

func TestHealthEndpoint(t *testing.T) {
	router := testServer(t).Router()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "ok\n", recorder.Body.String())
}
