// Package server exposes the rent calculator and the in-progress form over HTTP.
package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/iwvelando/tal-calculator/internal/calculator"
	"github.com/iwvelando/tal-calculator/internal/export"
	"github.com/iwvelando/tal-calculator/internal/geocode"
	"github.com/iwvelando/tal-calculator/internal/i18n"
	"github.com/iwvelando/tal-calculator/internal/store"
	"github.com/iwvelando/tal-calculator/pkg/constants"
	"github.com/iwvelando/tal-calculator/pkg/form"
	"github.com/iwvelando/tal-calculator/pkg/validation"
	"go.uber.org/zap"
)

// Line kinds accepted in /api/form/{kind} routes.
const (
	kindRepairs  = "repairs"
	kindExpenses = "expenses"
	kindAid      = "aid"
)

// Options wires the handler to its collaborators. Only Logger may be left
// zero; a nil Store keeps the form in memory and a nil Lookup disables
// address suggestions.
type Options struct {
	Logger        *zap.Logger
	MaxUploadSize int64
	Version       string
	Parameters    calculator.Parameters
	Language      i18n.Language
	Store         store.Store
	StorageKey    string
	AutosaveDelay time.Duration
	Lookup        geocode.Lookup
	Now           func() time.Time
}

// Handler serves the calculator API. Close must be called on shutdown so a
// pending autosave is written.
type Handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	params        calculator.Parameters
	language      i18n.Language
	store         store.Store
	storageKey    string
	autosave      *store.AutoSaver
	lookup        geocode.Lookup
	now           func() time.Time

	router http.Handler

	mu    sync.Mutex
	facts form.Facts
}

// NewHandler constructs the HTTP handler and restores the saved form, if any.
func NewHandler(opts Options) *Handler {
	h := &Handler{
		logger:        opts.Logger,
		maxUploadSize: opts.MaxUploadSize,
		version:       strings.TrimSpace(opts.Version),
		params:        opts.Parameters,
		language:      opts.Language,
		store:         opts.Store,
		storageKey:    opts.StorageKey,
		lookup:        opts.Lookup,
		now:           opts.Now,
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.maxUploadSize <= 0 {
		h.maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}
	if h.version == "" {
		h.version = "dev"
	}
	if h.params == (calculator.Parameters{}) {
		h.params = calculator.DefaultParameters()
	}
	if h.language == "" {
		h.language = i18n.French
	}
	if h.storageKey == "" {
		h.storageKey = constants.DefaultStorageKey
	}
	if h.now == nil {
		h.now = time.Now
	}

	if h.store != nil {
		delay := opts.AutosaveDelay
		if delay <= 0 {
			delay = time.Duration(constants.DefaultAutosaveDelayMillis) * time.Millisecond
		}
		h.autosave = store.NewAutoSaver(h.store, h.storageKey, delay, h.logger)

		facts, err := h.store.Load(h.storageKey)
		switch {
		case err == nil:
			h.facts = facts
		case errors.Is(err, store.ErrNotFound):
		default:
			h.logger.Warn("failed to restore saved form, starting empty",
				zap.String("op", "server.NewHandler"),
				zap.String("key", h.storageKey),
				zap.Error(err),
			)
		}
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/calculate", h.handleCalculate).Methods(http.MethodPost)
	api.HandleFunc("/export", h.handleExport).Methods(http.MethodPost)
	api.HandleFunc("/form", h.handleGetForm).Methods(http.MethodGet)
	api.HandleFunc("/form", h.handleReplaceForm).Methods(http.MethodPut)
	api.HandleFunc("/form", h.handleResetForm).Methods(http.MethodDelete)
	api.HandleFunc("/form/{kind:repairs|expenses|aid}", h.handleAddLine).Methods(http.MethodPost)
	api.HandleFunc("/form/{kind:repairs|expenses|aid}/{id}", h.handleUpdateLine).Methods(http.MethodPatch)
	api.HandleFunc("/form/{kind:repairs|expenses|aid}/{id}", h.handleRemoveLine).Methods(http.MethodDelete)
	api.HandleFunc("/address", h.handleAddress).Methods(http.MethodGet)
	api.HandleFunc("/version", h.handleVersion).Methods(http.MethodGet)

	logged := handlers.CustomLoggingHandler(io.Discard, r, h.logRequest)
	h.router = handlers.RecoveryHandler(
		handlers.RecoveryLogger(zap.NewStdLog(h.logger)),
		handlers.PrintRecoveryStack(true),
	)(logged)

	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// Close writes any pending autosave.
func (h *Handler) Close() error {
	if h.autosave == nil {
		return nil
	}
	return h.autosave.Close()
}

func (h *Handler) logRequest(_ io.Writer, p handlers.LogFormatterParams) {
	h.logger.Info("request",
		zap.String("op", "server.request"),
		zap.String("method", p.Request.Method),
		zap.String("path", p.URL.Path),
		zap.Int("status", p.StatusCode),
		zap.Int("size", p.Size),
		zap.Duration("duration", time.Since(p.TimeStamp)),
	)
}

type calculationResponse struct {
	Values   calculator.Values `json:"values"`
	Warnings []string          `json:"warnings,omitempty"`
	Duration string            `json:"duration"`
}

type formResponse struct {
	ID       string            `json:"id,omitempty"`
	Facts    form.Facts        `json:"facts"`
	Values   calculator.Values `json:"values"`
	Warnings []string          `json:"warnings,omitempty"`
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCalculate"
	start := time.Now()

	var facts form.Facts
	if !h.decodeBody(w, r, &facts, op) {
		return
	}
	facts = facts.Normalize()

	values := calculator.CalculateAll(h.logger, h.params, facts)
	elapsed := time.Since(start)

	h.logger.Info("rent calculated",
		zap.String("op", op),
		zap.Float64("newRecommendedRent", values.NewRecommendedRent),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, calculationResponse{
		Values:   values,
		Warnings: validation.ValidateFacts(facts),
		Duration: elapsed.String(),
	})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExport"

	lang := h.language
	if raw := r.URL.Query().Get("lang"); raw != "" {
		parsed, err := i18n.Parse(raw)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, err.Error(), op)
			return
		}
		lang = parsed
	}

	formatName := strings.ToLower(r.URL.Query().Get("format"))
	if formatName == "" {
		formatName = constants.OutputFormatMarkdown
	}
	if formatName != constants.OutputFormatMarkdown && formatName != constants.OutputFormatHTML {
		h.respondError(w, http.StatusBadRequest,
			fmt.Sprintf("unsupported export format %q, expected markdown or html", formatName), op)
		return
	}

	var facts form.Facts
	if !h.decodeBody(w, r, &facts, op) {
		return
	}
	facts = facts.Normalize()
	values := calculator.CalculateAll(h.logger, h.params, facts)

	var (
		body        string
		contentType string
	)
	if formatName == constants.OutputFormatHTML {
		page, err := export.HTML(facts, values, lang, h.now())
		if err != nil {
			h.respondError(w, http.StatusInternalServerError, err.Error(), op)
			return
		}
		body, contentType = page, "text/html; charset=utf-8"
	} else {
		body, contentType = export.Markdown(facts, values, lang, h.now()), "text/markdown; charset=utf-8"
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, body); err != nil {
		h.logger.Error("failed to write export", zap.String("op", op), zap.Error(err))
	}
}

func (h *Handler) handleGetForm(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	facts := h.facts
	h.mu.Unlock()

	h.writeJSON(w, http.StatusOK, h.formResponse("", facts))
}

func (h *Handler) handleReplaceForm(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleReplaceForm"

	var facts form.Facts
	if !h.decodeBody(w, r, &facts, op) {
		return
	}
	if len(facts.Repairs) > constants.MaxRepairLines {
		h.respondLineError(w, form.ErrRepairLimit, op)
		return
	}

	facts = h.commit(facts.Normalize())
	h.writeJSON(w, http.StatusOK, h.formResponse("", facts))
}

func (h *Handler) handleResetForm(w http.ResponseWriter, _ *http.Request) {
	const op = "server.handleResetForm"

	h.mu.Lock()
	defer h.mu.Unlock()
	h.facts = form.Facts{}

	if h.autosave != nil {
		h.autosave.Discard()
	}
	if h.store != nil {
		if err := h.store.Delete(h.storageKey); err != nil {
			h.respondError(w, http.StatusInternalServerError, err.Error(), op)
			return
		}
	}

	h.logger.Info("form reset", zap.String("op", op))
	h.writeJSON(w, http.StatusOK, h.formResponse("", form.Facts{}))
}

func (h *Handler) handleAddLine(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAddLine"
	kind := mux.Vars(r)["kind"]

	h.mu.Lock()
	var (
		facts form.Facts
		id    string
		err   error
	)
	switch kind {
	case kindRepairs:
		facts, id, err = h.facts.AddRepair()
	case kindExpenses:
		facts, id = h.facts.AddNewExpense()
	case kindAid:
		facts, id = h.facts.AddAidVariation()
	}
	if err == nil {
		h.facts = facts
		h.schedule(facts)
	}
	h.mu.Unlock()

	if err != nil {
		h.respondLineError(w, err, op)
		return
	}

	h.writeJSON(w, http.StatusCreated, h.formResponse(id, facts))
}

func (h *Handler) handleUpdateLine(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleUpdateLine"
	vars := mux.Vars(r)
	kind, id := vars["kind"], vars["id"]

	var update func(form.Facts) (form.Facts, error)
	switch kind {
	case kindRepairs:
		var patch form.RepairPatch
		if !h.decodeBody(w, r, &patch, op) {
			return
		}
		update = func(f form.Facts) (form.Facts, error) { return f.UpdateRepair(id, patch) }
	case kindExpenses:
		var patch form.ExpensePatch
		if !h.decodeBody(w, r, &patch, op) {
			return
		}
		update = func(f form.Facts) (form.Facts, error) { return f.UpdateNewExpense(id, patch) }
	case kindAid:
		var patch form.AidVariationPatch
		if !h.decodeBody(w, r, &patch, op) {
			return
		}
		update = func(f form.Facts) (form.Facts, error) { return f.UpdateAidVariation(id, patch) }
	}

	h.applyLineChange(w, id, update, op)
}

func (h *Handler) handleRemoveLine(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind, id := vars["kind"], vars["id"]

	var remove func(form.Facts) (form.Facts, error)
	switch kind {
	case kindRepairs:
		remove = func(f form.Facts) (form.Facts, error) { return f.RemoveRepair(id) }
	case kindExpenses:
		remove = func(f form.Facts) (form.Facts, error) { return f.RemoveNewExpense(id) }
	case kindAid:
		remove = func(f form.Facts) (form.Facts, error) { return f.RemoveAidVariation(id) }
	}

	h.applyLineChange(w, id, remove, "server.handleRemoveLine")
}

func (h *Handler) applyLineChange(w http.ResponseWriter, id string, change func(form.Facts) (form.Facts, error), op string) {
	h.mu.Lock()
	facts, err := change(h.facts)
	if err == nil {
		h.facts = facts
		h.schedule(facts)
	}
	h.mu.Unlock()

	if err != nil {
		h.respondLineError(w, err, op)
		return
	}

	h.writeJSON(w, http.StatusOK, h.formResponse(id, facts))
}

func (h *Handler) handleAddress(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAddress"
	if h.lookup == nil {
		h.writeJSON(w, http.StatusOK, map[string][]geocode.Suggestion{"suggestions": {}})
		return
	}

	suggestions, err := h.lookup.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.respondError(w, http.StatusBadGateway, err.Error(), op)
		return
	}
	if suggestions == nil {
		suggestions = []geocode.Suggestion{}
	}
	h.writeJSON(w, http.StatusOK, map[string][]geocode.Suggestion{"suggestions": suggestions})
}

func (h *Handler) handleVersion(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"version":       h.version,
		"referenceYear": h.params.ReferenceYear,
		"cpiRate":       h.params.CPIRate,
	})
}

// commit replaces the current form and schedules it for saving.
func (h *Handler) commit(facts form.Facts) form.Facts {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.facts = facts
	h.schedule(facts)
	return facts
}

// schedule must be called with h.mu held so snapshots reach the autosave in
// the order they became current.
func (h *Handler) schedule(facts form.Facts) {
	if h.autosave != nil {
		h.autosave.Schedule(facts)
	}
}

func (h *Handler) formResponse(id string, facts form.Facts) formResponse {
	return formResponse{
		ID:       id,
		Facts:    facts,
		Values:   calculator.CalculateAll(h.logger, h.params, facts),
		Warnings: validation.ValidateFacts(facts),
	}
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxUploadSize), op)
			return false
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to read request body: %v", err), op)
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request body: %v", err), op)
		return false
	}
	return true
}

func (h *Handler) respondLineError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, form.ErrRepairLimit):
		h.respondError(w, http.StatusConflict, err.Error(), op)
	case errors.Is(err, form.ErrLineNotFound):
		h.respondError(w, http.StatusNotFound, err.Error(), op)
	default:
		h.respondError(w, http.StatusInternalServerError, err.Error(), op)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
