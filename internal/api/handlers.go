package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"

	"github.com/ecmwf/earthkit-time/calendar"
	"github.com/ecmwf/earthkit-time/climatology"
	"github.com/ecmwf/earthkit-time/internal/config"
	"github.com/ecmwf/earthkit-time/internal/logger"
	"github.com/ecmwf/earthkit-time/internal/presetstore"
	"github.com/ecmwf/earthkit-time/preset"
	"github.com/ecmwf/earthkit-time/sequence"
)

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	store  *presetstore.Store
	loader *preset.Loader
	cfg    *config.Config
	logger *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(store *presetstore.Store, loader *preset.Loader, cfg *config.Config, logger *slog.Logger) *Handlers {
	return &Handlers{
		store:  store,
		loader: loader,
		cfg:    cfg,
		logger: logger,
	}
}

// resolveSequence looks a sequence name up in the preset store first, then
// in the file/built-in loader.
func (h *Handlers) resolveSequence(ctx context.Context, name string) (*sequence.Sequence, error) {
	stored, err := h.store.GetPreset(ctx, name)
	if err == nil {
		var description map[string]any
		if err := yaml.Unmarshal([]byte(stored.Definition), &description); err != nil {
			return nil, fmt.Errorf("stored preset %q: %w", name, err)
		}
		return sequence.FromMap(description)
	}
	if !presetstore.IsNotFound(err) {
		return nil, err
	}
	return h.loader.Load(name)
}

// writeSequenceError maps resolution and query errors to HTTP statuses.
func (h *Handlers) writeSequenceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, preset.ErrNotFound) || presetstore.IsNotFound(err):
		WriteNotFound(w, err.Error())
	case errors.Is(err, sequence.ErrInvalidArgument):
		WriteBadRequest(w, err.Error())
	default:
		logger.FromContext(r.Context(), h.logger).Error("request failed",
			slog.Any("error", err),
			slog.String("path", r.URL.Path))
		WriteInternalError(w, "Internal server error")
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Health(r.Context()); err != nil {
		logger.FromContext(r.Context(), h.logger).Warn("health check failed", slog.Any("error", err))
		WriteError(w, http.StatusServiceUnavailable, "Preset store unhealthy", "HEALTH_CHECK_FAILED")
		return
	}
	WriteSuccess(w, map[string]string{"status": "healthy"})
}

// =============================================================================
// Preset management
// =============================================================================

// presetInfo is the wire form of a preset listing entry.
type presetInfo struct {
	Name   string `json:"name"`
	Source string `json:"source"` // "stored" or "builtin"
}

// ListPresets handles GET /api/v1/presets
func (h *Handlers) ListPresets(w http.ResponseWriter, r *http.Request) {
	stored, err := h.store.ListPresets(r.Context())
	if err != nil {
		h.writeSequenceError(w, r, err)
		return
	}
	names, err := h.loader.Names()
	if err != nil {
		h.writeSequenceError(w, r, err)
		return
	}

	seen := make(map[string]bool, len(stored))
	out := make([]presetInfo, 0, len(stored)+len(names))
	for _, p := range stored {
		seen[p.Name] = true
		out = append(out, presetInfo{Name: p.Name, Source: "stored"})
	}
	for _, name := range names {
		if !seen[name] {
			out = append(out, presetInfo{Name: name, Source: "builtin"})
		}
	}
	WriteSuccess(w, out)
}

// createPresetRequest is the body of POST /api/v1/presets.
type createPresetRequest struct {
	Name       string `json:"name"`
	Definition string `json:"definition"` // YAML sequence description
}

// CreatePreset handles POST /api/v1/presets
func (h *Handlers) CreatePreset(w http.ResponseWriter, r *http.Request) {
	var req createPresetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body")
		return
	}
	if req.Name == "" || req.Definition == "" {
		WriteBadRequest(w, "Both name and definition are required")
		return
	}

	// Reject definitions the sequence factory cannot build, so every
	// stored row is usable.
	var description map[string]any
	if err := yaml.Unmarshal([]byte(req.Definition), &description); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid YAML definition: %v", err))
		return
	}
	if _, err := sequence.FromMap(description); err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	saved, err := h.store.SavePreset(r.Context(), req.Name, req.Definition)
	if err != nil {
		h.writeSequenceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, Response{Success: true, Data: saved})
}

// DeletePreset handles DELETE /api/v1/presets/{name}
func (h *Handlers) DeletePreset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.store.DeletePreset(r.Context(), name); err != nil {
		h.writeSequenceError(w, r, err)
		return
	}
	WriteSuccess(w, map[string]string{"deleted": name})
}

// =============================================================================
// Sequence queries
// =============================================================================

// SeqNext handles GET /api/v1/sequences/{name}/next?date=YYYYMMDD&inclusive=&skip=
func (h *Handlers) SeqNext(w http.ResponseWriter, r *http.Request) {
	h.seqSeek(w, r, false)
}

// SeqPrevious handles GET /api/v1/sequences/{name}/previous?date=YYYYMMDD&inclusive=&skip=
func (h *Handlers) SeqPrevious(w http.ResponseWriter, r *http.Request) {
	h.seqSeek(w, r, true)
}

func (h *Handlers) seqSeek(w http.ResponseWriter, r *http.Request, previous bool) {
	seq, err := h.resolveSequence(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.writeSequenceError(w, r, err)
		return
	}
	date, err := dateParam(r, "date")
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	inclusive := boolParam(r, "inclusive")
	skip, err := intParam(r, "skip", 0)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	var result calendar.Date
	if previous {
		result, err = seq.Previous(date, inclusive, skip)
	} else {
		result, err = seq.Next(date, inclusive, skip)
	}
	if err != nil {
		h.writeSequenceError(w, r, err)
		return
	}
	WriteSuccess(w, map[string]string{"date": result.String()})
}

// SeqNearest handles GET /api/v1/sequences/{name}/nearest?date=YYYYMMDD&resolve=
func (h *Handlers) SeqNearest(w http.ResponseWriter, r *http.Request) {
	seq, err := h.resolveSequence(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.writeSequenceError(w, r, err)
		return
	}
	date, err := dateParam(r, "date")
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	resolve := sequence.ResolvePrevious
	if v := r.URL.Query().Get("resolve"); v != "" {
		resolve = sequence.Resolve(v)
	}
	result, err := seq.Nearest(date, resolve)
	if err != nil {
		h.writeSequenceError(w, r, err)
		return
	}
	WriteSuccess(w, map[string]string{"date": result.String()})
}

// SeqRange handles GET /api/v1/sequences/{name}/range?from=&to=&exclude_start=&exclude_end=
func (h *Handlers) SeqRange(w http.ResponseWriter, r *http.Request) {
	seq, err := h.resolveSequence(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.writeSequenceError(w, r, err)
		return
	}
	from, err := dateParam(r, "from")
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	to, err := dateParam(r, "to")
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	dates, err := seq.Range(from, to, !boolParam(r, "exclude_start"), !boolParam(r, "exclude_end"))
	if err != nil {
		h.writeSequenceError(w, r, err)
		return
	}
	WriteSuccess(w, map[string]any{"dates": formatDates(dates)})
}

// SeqBracket handles GET /api/v1/sequences/{name}/bracket?date=&before=&after=&inclusive=
func (h *Handlers) SeqBracket(w http.ResponseWriter, r *http.Request) {
	seq, err := h.resolveSequence(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.writeSequenceError(w, r, err)
		return
	}
	date, err := dateParam(r, "date")
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	before, err := intParam(r, "before", 1)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	after, err := intParam(r, "after", before)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	dates, err := seq.Bracket(date, before, after, boolParam(r, "inclusive"))
	if err != nil {
		h.writeSequenceError(w, r, err)
		return
	}
	WriteSuccess(w, map[string]any{"dates": formatDates(dates)})
}

// =============================================================================
// Climatology
// =============================================================================

// ClimatologyRange handles GET /api/v1/climatology/range
func (h *Handlers) ClimatologyRange(w http.ResponseWriter, r *http.Request) {
	reference, err := dateParam(r, "date")
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	start, err := yearPointParam(r, "from", reference)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	end, err := yearPointParam(r, "to", reference)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	dates, err := climatology.DateRange(reference, start, end)
	if err != nil {
		h.writeSequenceError(w, r, err)
		return
	}
	WriteSuccess(w, map[string]any{"dates": formatDates(dates)})
}

// ClimatologyModelClimate handles GET /api/v1/climatology/mclim
func (h *Handlers) ClimatologyModelClimate(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("sequence")
	if name == "" {
		WriteBadRequest(w, "sequence parameter is required")
		return
	}
	seq, err := h.resolveSequence(r.Context(), name)
	if err != nil {
		h.writeSequenceError(w, r, err)
		return
	}
	reference, err := dateParam(r, "date")
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	start, err := yearPointParam(r, "from", reference)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	end, err := yearPointParam(r, "to", reference)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	before, err := intParam(r, "before", -1)
	if err != nil || before < 0 {
		WriteBadRequest(w, "before parameter is required and must be non-negative")
		return
	}
	after, err := intParam(r, "after", -1)
	if err != nil || after < 0 {
		WriteBadRequest(w, "after parameter is required and must be non-negative")
		return
	}
	dates, err := climatology.ModelClimateDates(reference, start, end, before, after, seq)
	if err != nil {
		h.writeSequenceError(w, r, err)
		return
	}
	WriteSuccess(w, map[string]any{"dates": formatDates(dates)})
}

// =============================================================================
// Query parameter helpers
// =============================================================================

func dateParam(r *http.Request, key string) (calendar.Date, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return calendar.Date{}, fmt.Errorf("%s parameter is required (YYYYMMDD)", key)
	}
	d, err := calendar.ParseDate(value)
	if err != nil {
		return calendar.Date{}, fmt.Errorf("invalid %s parameter: %v", key, err)
	}
	return d, nil
}

func boolParam(r *http.Request, key string) bool {
	switch r.URL.Query().Get(key) {
	case "true", "1", "yes":
		return true
	}
	return false
}

func intParam(r *http.Request, key string, defaultValue int) (int, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter: %q", key, value)
	}
	return n, nil
}

// yearPointParam reads one end of a climatological year range. Exactly one
// of <key>_year, <key>_date, <key>_rel_year must be present.
func yearPointParam(r *http.Request, key string, reference calendar.Date) (climatology.YearPoint, error) {
	query := r.URL.Query()
	yearStr := query.Get(key + "_year")
	dateStr := query.Get(key + "_date")
	relStr := query.Get(key + "_rel_year")

	set := 0
	for _, s := range []string{yearStr, dateStr, relStr} {
		if s != "" {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("exactly one of %s_year, %s_date, %s_rel_year is required", key, key, key)
	}

	switch {
	case yearStr != "":
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			return nil, fmt.Errorf("invalid %s_year parameter: %q", key, yearStr)
		}
		return climatology.Year(year), nil
	case relStr != "":
		offset, err := strconv.Atoi(relStr)
		if err != nil {
			return nil, fmt.Errorf("invalid %s_rel_year parameter: %q", key, relStr)
		}
		return climatology.RelativeYear(offset), nil
	default:
		d, err := calendar.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("invalid %s_date parameter: %v", key, err)
		}
		return climatology.At(d), nil
	}
}

func formatDates(dates []calendar.Date) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.String()
	}
	return out
}
