package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ecmwf/earthkit-time/internal/config"
	"github.com/ecmwf/earthkit-time/internal/presetstore"
	"github.com/ecmwf/earthkit-time/preset"
)

// =============================================================================
// TEST SETUP HELPERS
// =============================================================================

// testEnv sets up a complete test environment with store, config, and router.
type testEnv struct {
	store  *presetstore.Store
	cfg    *config.Config
	router http.Handler
	apiKey string
}

// setupTest creates a fresh test environment.
func setupTest(t *testing.T) *testEnv {
	t.Helper()

	storeCfg := presetstore.Config{
		Path:            ":memory:",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError, // Quiet during tests
	}))

	store, err := presetstore.Open(storeCfg, logger)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	if _, err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate test store: %v", err)
	}

	apiKey := "api-test-key-32-characters-minimum-length"
	cfg := &config.Config{
		Port:      8080,
		Env:       config.EnvDevelopment,
		StorePath: ":memory:",
		APIKey:    apiKey,
		LogLevel:  "error",
		LogFormat: "text",
	}

	handlers := NewHandlers(store, preset.NewLoader(), cfg, logger)

	return &testEnv{
		store:  store,
		cfg:    cfg,
		router: SetupRoutes(handlers, cfg, logger),
		apiKey: apiKey,
	}
}

// get performs a GET request against the router.
func (env *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr
}

// makeRequest builds an HTTP request with an optional JSON body and API key.
func makeRequest(method, path string, body any, apiKey string) *http.Request {
	var bodyReader io.Reader
	if body != nil {
		jsonData, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(jsonData)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	return req
}

// parseResponse parses a JSON response body.
func parseResponse(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v, body: %s", err, rr.Body.String())
	}
}

// dateResponse is the wire form of single-date endpoints.
type dateResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Date string `json:"date"`
	} `json:"data"`
}

// datesResponse is the wire form of date-list endpoints.
type datesResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Dates []string `json:"dates"`
	} `json:"data"`
}

func checkDateList(t *testing.T, rr *httptest.ResponseRecorder, want ...string) {
	t.Helper()
	var resp datesResponse
	parseResponse(t, rr, &resp)
	if !resp.Success {
		t.Fatal("Success = false, want true")
	}
	if len(resp.Data.Dates) != len(want) {
		t.Fatalf("got %d dates %v, want %d", len(resp.Data.Dates), resp.Data.Dates, len(want))
	}
	for i := range want {
		if resp.Data.Dates[i] != want[i] {
			t.Errorf("dates[%d] = %s, want %s", i, resp.Data.Dates[i], want[i])
		}
	}
}

// =============================================================================
// HEALTH
// =============================================================================

func TestHealthCheck(t *testing.T) {
	env := setupTest(t)
	rr := env.get(t, "/health")
	if rr.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusOK)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
}

// =============================================================================
// SEQUENCE ENDPOINTS
// =============================================================================

func TestSeqNext(t *testing.T) {
	env := setupTest(t)

	rr := env.get(t, "/api/v1/sequences/ecmwf-mon-thu/next?date=20240514")
	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, body: %s", rr.Code, rr.Body.String())
	}
	var resp dateResponse
	parseResponse(t, rr, &resp)
	// Next Monday or Thursday after Tuesday 2024-05-14
	if resp.Data.Date != "20240516" {
		t.Errorf("date = %s, want 20240516", resp.Data.Date)
	}
}

func TestSeqNext_InclusiveAndSkip(t *testing.T) {
	env := setupTest(t)

	rr := env.get(t, "/api/v1/sequences/ecmwf-mon-thu/next?date=20240516&inclusive=true")
	var resp dateResponse
	parseResponse(t, rr, &resp)
	if resp.Data.Date != "20240516" {
		t.Errorf("inclusive date = %s, want 20240516", resp.Data.Date)
	}

	rr = env.get(t, "/api/v1/sequences/ecmwf-mon-thu/next?date=20240514&skip=1")
	parseResponse(t, rr, &resp)
	if resp.Data.Date != "20240520" {
		t.Errorf("skip date = %s, want 20240520", resp.Data.Date)
	}
}

func TestSeqPrevious(t *testing.T) {
	env := setupTest(t)

	rr := env.get(t, "/api/v1/sequences/ecmwf-mon-thu/previous?date=20240514")
	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, body: %s", rr.Code, rr.Body.String())
	}
	var resp dateResponse
	parseResponse(t, rr, &resp)
	if resp.Data.Date != "20240513" {
		t.Errorf("date = %s, want 20240513", resp.Data.Date)
	}
}

func TestSeqNearest(t *testing.T) {
	env := setupTest(t)

	rr := env.get(t, "/api/v1/sequences/ecmwf-mon-thu/nearest?date=20240515")
	var resp dateResponse
	parseResponse(t, rr, &resp)
	// Wednesday is one day from Thursday and two from Monday.
	if resp.Data.Date != "20240516" {
		t.Errorf("date = %s, want 20240516", resp.Data.Date)
	}

	rr = env.get(t, "/api/v1/sequences/ecmwf-mon-thu/nearest?date=20240515&resolve=bogus")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestSeqRange(t *testing.T) {
	env := setupTest(t)

	rr := env.get(t, "/api/v1/sequences/ecmwf-mon-thu/range?from=20240513&to=20240523")
	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, body: %s", rr.Code, rr.Body.String())
	}
	checkDateList(t, rr, "20240513", "20240516", "20240520", "20240523")

	rr = env.get(t, "/api/v1/sequences/ecmwf-mon-thu/range?from=20240513&to=20240523&exclude_start=true&exclude_end=true")
	checkDateList(t, rr, "20240516", "20240520")
}

func TestSeqRange_Reversed(t *testing.T) {
	env := setupTest(t)
	rr := env.get(t, "/api/v1/sequences/ecmwf-mon-thu/range?from=20240523&to=20240513")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestSeqBracket(t *testing.T) {
	env := setupTest(t)

	rr := env.get(t, "/api/v1/sequences/ecmwf-mon-thu/bracket?date=20240516&before=1&after=1")
	checkDateList(t, rr, "20240513", "20240520")

	rr = env.get(t, "/api/v1/sequences/ecmwf-mon-thu/bracket?date=20240516&before=1&after=1&inclusive=true")
	checkDateList(t, rr, "20240513", "20240516", "20240520")

	// after defaults to before
	rr = env.get(t, "/api/v1/sequences/ecmwf-mon-thu/bracket?date=20240516&before=2")
	checkDateList(t, rr, "20240509", "20240513", "20240520", "20240523")
}

func TestSeqUnknownPreset(t *testing.T) {
	env := setupTest(t)
	rr := env.get(t, "/api/v1/sequences/no-such/next?date=20240514")
	if rr.Code != http.StatusNotFound {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestSeqBadDate(t *testing.T) {
	env := setupTest(t)
	rr := env.get(t, "/api/v1/sequences/ecmwf-mon-thu/next?date=20240231")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusBadRequest)
	}

	rr = env.get(t, "/api/v1/sequences/ecmwf-mon-thu/next")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("missing date Status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestSeqCalendarICS(t *testing.T) {
	env := setupTest(t)

	rr := env.get(t, "/api/v1/sequences/ecmwf-mon-thu/calendar.ics?from=20240513&to=20240520")
	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, body: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("Content-Type = %q, want text/calendar", ct)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "BEGIN:VCALENDAR") {
		t.Error("missing VCALENDAR envelope")
	}
	// Three occurrences: Mon 13, Thu 16, Mon 20.
	if got := strings.Count(body, "BEGIN:VEVENT"); got != 3 {
		t.Errorf("event count = %d, want 3", got)
	}
}

// =============================================================================
// PRESET MANAGEMENT
// =============================================================================

func TestCreatePresetAndQuery(t *testing.T) {
	env := setupTest(t)

	reqBody := map[string]any{
		"name":       "saturdays",
		"definition": "type: weekly\ndays: [5]\n",
	}
	req := makeRequest("POST", "/api/v1/presets", reqBody, env.apiKey)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("Status = %d, want %d, body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	// The stored preset is immediately usable by the sequence endpoints.
	get := env.get(t, "/api/v1/sequences/saturdays/next?date=19991125")
	var resp dateResponse
	parseResponse(t, get, &resp)
	if resp.Data.Date != "19991127" {
		t.Errorf("date = %s, want 19991127", resp.Data.Date)
	}
}

func TestCreatePreset_InvalidDefinition(t *testing.T) {
	env := setupTest(t)

	tests := []map[string]any{
		{"name": "bad", "definition": "type: weekly\ndays: [9]\n"},
		{"name": "bad", "definition": "type: nope\n"},
		{"name": "bad", "definition": ": not yaml ["},
		{"name": "", "definition": "type: daily\n"},
		{"name": "bad", "definition": ""},
	}
	for _, reqBody := range tests {
		req := makeRequest("POST", "/api/v1/presets", reqBody, env.apiKey)
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("Status = %d for %v, want %d", rr.Code, reqBody, http.StatusBadRequest)
		}
	}
}

func TestCreatePreset_RequiresAPIKey(t *testing.T) {
	env := setupTest(t)

	reqBody := map[string]any{"name": "locked", "definition": "type: daily\n"}
	req := makeRequest("POST", "/api/v1/presets", reqBody, "")
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}

	req = makeRequest("POST", "/api/v1/presets", reqBody, "wrong-key")
	rr = httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Status = %d with wrong key, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestListPresets(t *testing.T) {
	env := setupTest(t)

	if _, err := env.store.SavePreset(context.Background(), "stored-one", "type: daily\n"); err != nil {
		t.Fatal(err)
	}

	rr := env.get(t, "/api/v1/presets")
	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d", rr.Code)
	}

	var resp struct {
		Success bool `json:"success"`
		Data    []struct {
			Name   string `json:"name"`
			Source string `json:"source"`
		} `json:"data"`
	}
	parseResponse(t, rr, &resp)

	sources := make(map[string]string, len(resp.Data))
	for _, p := range resp.Data {
		sources[p.Name] = p.Source
	}
	if sources["stored-one"] != "stored" {
		t.Errorf("stored-one source = %q, want stored", sources["stored-one"])
	}
	if sources["ecmwf-mon-thu"] != "builtin" {
		t.Errorf("ecmwf-mon-thu source = %q, want builtin", sources["ecmwf-mon-thu"])
	}
}

func TestDeletePreset(t *testing.T) {
	env := setupTest(t)

	if _, err := env.store.SavePreset(context.Background(), "doomed", "type: daily\n"); err != nil {
		t.Fatal(err)
	}

	req := makeRequest("DELETE", "/api/v1/presets/doomed", nil, env.apiKey)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, body: %s", rr.Code, rr.Body.String())
	}

	req = makeRequest("DELETE", "/api/v1/presets/doomed", nil, env.apiKey)
	rr = httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("second delete Status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestStoredPresetShadowsBuiltin(t *testing.T) {
	env := setupTest(t)

	// Override the builtin Monday/Thursday preset with Tuesdays only.
	if _, err := env.store.SavePreset(context.Background(), "ecmwf-mon-thu", "type: weekly\ndays: [1]\n"); err != nil {
		t.Fatal(err)
	}

	rr := env.get(t, "/api/v1/sequences/ecmwf-mon-thu/next?date=20240513")
	var resp dateResponse
	parseResponse(t, rr, &resp)
	if resp.Data.Date != "20240514" {
		t.Errorf("date = %s, want 20240514 (stored definition wins)", resp.Data.Date)
	}
}

// =============================================================================
// CLIMATOLOGY ENDPOINTS
// =============================================================================

func TestClimatologyRange(t *testing.T) {
	env := setupTest(t)

	rr := env.get(t, "/api/v1/climatology/range?date=20061023&from_year=2003&to_year=2005")
	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, body: %s", rr.Code, rr.Body.String())
	}
	checkDateList(t, rr, "20031023", "20041023", "20051023")

	rr = env.get(t, "/api/v1/climatology/range?date=20061023&from_rel_year=-2&to_date=20051231")
	checkDateList(t, rr, "20041023", "20051023")
}

func TestClimatologyRange_BadParams(t *testing.T) {
	env := setupTest(t)

	// both from_year and from_date
	rr := env.get(t, "/api/v1/climatology/range?date=20061023&from_year=2003&from_date=20030101&to_year=2005")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusBadRequest)
	}

	// neither
	rr = env.get(t, "/api/v1/climatology/range?date=20061023&to_year=2005")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusBadRequest)
	}

	// reversed years
	rr = env.get(t, "/api/v1/climatology/range?date=20061023&from_year=2005&to_year=2003")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestClimatologyModelClimate(t *testing.T) {
	env := setupTest(t)

	if _, err := env.store.SavePreset(context.Background(), "thursdays", "type: weekly\ndays: [3]\n"); err != nil {
		t.Fatal(err)
	}

	rr := env.get(t, "/api/v1/climatology/mclim?sequence=thursdays&date=20230810&from_year=2021&to_year=2022&before=1&after=1")
	if rr.Code != http.StatusOK {
		t.Fatalf("Status = %d, body: %s", rr.Code, rr.Body.String())
	}
	checkDateList(t, rr, "20210805", "20210812", "20220804", "20220811")
}

func TestClimatologyModelClimate_MissingParams(t *testing.T) {
	env := setupTest(t)

	// no sequence
	rr := env.get(t, "/api/v1/climatology/mclim?date=20230810&from_year=2021&to_year=2022&before=1&after=1")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusBadRequest)
	}

	// no before/after
	rr = env.get(t, "/api/v1/climatology/mclim?sequence=ecmwf-mon-thu&date=20230810&from_year=2021&to_year=2022")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
