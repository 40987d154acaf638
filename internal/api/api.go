// Package api serves checks, throws and history over local HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Faultbox/dicebowl/internal/game/check"
	"github.com/Faultbox/dicebowl/internal/game/sheet"
	dietype "github.com/Faultbox/dicebowl/pkg/dice"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
	maxThrowCount       = 10
	maxBodyBytes        = 1 << 16
)

// Checker performs checks.
type Checker interface {
	Attribute(ctx context.Context, name string, modifier int) (check.Result, error)
	Talent(ctx context.Context, name string, modifier int) (check.Result, error)
}

// History lists recorded checks, newest first.
type History interface {
	Recent(ctx context.Context, limit int) ([]check.Result, error)
}

// Handler holds the collaborators and serves HTTP.
type Handler struct {
	checks    Checker
	history   History
	roller    check.Roller
	character *sheet.Character
	log       *zap.Logger
}

// NewHandler returns a handler. history and roller may be nil; their routes
// then answer 503.
func NewHandler(checks Checker, history History, roller check.Roller, character *sheet.Character, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{checks: checks, history: history, roller: roller, character: character, log: log}
}

// RegisterRoutes mounts the API routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.health)
	r.Get("/character", h.getCharacter)
	r.Get("/history", h.listHistory)
	r.Post("/throws", h.throw)
	r.Route("/checks", func(r chi.Router) {
		r.Post("/attribute", h.attributeCheck)
		r.Post("/talent", h.talentCheck)
	})
}

// NewRouter builds the router with the standard middleware stack.
func NewRouter(h *Handler, timeout time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.log))
	r.Use(middleware.Recoverer)
	if timeout > 0 {
		r.Use(middleware.Timeout(timeout))
	}
	h.RegisterRoutes(r)
	return r
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

type checkRequest struct {
	Attribute string `json:"attribute"`
	Talent    string `json:"talent"`
	Modifier  int    `json:"modifier"`
}

type throwRequest struct {
	Type  dietype.Type `json:"type"`
	Count int          `json:"count"`
}

type throwResponse struct {
	Type   dietype.Type `json:"type"`
	Values []int        `json:"values"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) getCharacter(w http.ResponseWriter, _ *http.Request) {
	if h.character == nil {
		writeError(w, http.StatusNotFound, "no character loaded")
		return
	}
	writeJSON(w, http.StatusOK, h.character)
}

func (h *Handler) listHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeError(w, http.StatusServiceUnavailable, "history disabled")
		return
	}
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}
	results, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) attributeCheck(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if !decode(w, r, &req) {
		return
	}
	name := strings.TrimSpace(req.Attribute)
	if name == "" {
		writeError(w, http.StatusBadRequest, "attribute required")
		return
	}
	res, err := h.checks.Attribute(r.Context(), name, req.Modifier)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) talentCheck(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if !decode(w, r, &req) {
		return
	}
	name := strings.TrimSpace(req.Talent)
	if name == "" {
		writeError(w, http.StatusBadRequest, "talent required")
		return
	}
	res, err := h.checks.Talent(r.Context(), name, req.Modifier)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) throw(w http.ResponseWriter, r *http.Request) {
	if h.roller == nil {
		writeError(w, http.StatusServiceUnavailable, "no dice available")
		return
	}
	req := throwRequest{Type: dietype.D20, Count: 1}
	if !decode(w, r, &req) {
		return
	}
	if req.Count < 1 || req.Count > maxThrowCount {
		writeError(w, http.StatusBadRequest, "count must be between 1 and "+strconv.Itoa(maxThrowCount))
		return
	}
	values, err := h.roller.Roll(r.Context(), req.Type, req.Count)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, throwResponse{Type: req.Type, Values: values})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, check.ErrUnknownTalent), errors.Is(err, check.ErrUnknownAttribute):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, dietype.ErrUnsupportedType):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "timed out")
	default:
		h.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
