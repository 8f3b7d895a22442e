package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/diegoclair/checkin-scheduler/internal/domain/entity"
	"github.com/diegoclair/checkin-scheduler/internal/domain/service"
	"github.com/rs/zerolog"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
	healthTimeout       = 2 * time.Second
)

// StatusProvider lists the rule table with its fire state
type StatusProvider interface {
	Status() []service.RuleStatus
}

// HistoryProvider reads back recorded messages
type HistoryProvider interface {
	History(ctx context.Context, recipientID string, limit int) ([]*entity.Message, error)
	Count(ctx context.Context, channelTag string) (int64, error)
}

// HealthChecker provides database health status for the /health endpoint.
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type CountResponse struct {
	Channel string `json:"channel"`
	Count   int64  `json:"count"`
}

type Handler struct {
	status      StatusProvider
	history     HistoryProvider
	recipientID string
	channelTag  string
	db          HealthChecker
	metrics     http.Handler
	log         zerolog.Logger
}

func NewHandler(status StatusProvider, log zerolog.Logger) *Handler {
	return &Handler{status: status, log: log.With().Str("component", "api").Logger()}
}

// WithHealthChecker makes /health fail when the database is unreachable
func (h *Handler) WithHealthChecker(db HealthChecker) *Handler {
	h.db = db
	return h
}

// WithHistory exposes the message log of recipientID on /messages and the
// number of messages recorded under channelTag on /messages/count
func (h *Handler) WithHistory(history HistoryProvider, recipientID, channelTag string) *Handler {
	h.history = history
	h.recipientID = recipientID
	h.channelTag = channelTag
	return h
}

// WithMetrics serves handler on /metrics
func (h *Handler) WithMetrics(handler http.Handler) *Handler {
	h.metrics = handler
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	switch r.URL.Path {
	case "/health":
		h.health(w, r)
	case "/rules":
		writeJSON(w, http.StatusOK, h.status.Status())
	case "/messages":
		h.messages(w, r)
	case "/messages/count":
		h.messageCount(w, r)
	case "/metrics":
		if h.metrics == nil {
			writeError(w, http.StatusNotFound, "metrics disabled")
			return
		}
		h.metrics.ServeHTTP(w, r)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := h.db.PingContext(ctx); err != nil {
			h.log.Warn().Err(err).Msg("health check failed")
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, "database unavailable")
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

func (h *Handler) messages(w http.ResponseWriter, r *http.Request) {
	if h.history == nil || h.recipientID == "" {
		writeError(w, http.StatusNotFound, "message history disabled")
		return
	}

	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	messages, err := h.history.History(r.Context(), h.recipientID, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list messages")
		writeError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}
	if messages == nil {
		messages = []*entity.Message{}
	}

	writeJSON(w, http.StatusOK, messages)
}

func (h *Handler) messageCount(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeError(w, http.StatusNotFound, "message history disabled")
		return
	}

	count, err := h.history.Count(r.Context(), h.channelTag)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to count messages")
		writeError(w, http.StatusInternalServerError, "failed to count messages")
		return
	}

	writeJSON(w, http.StatusOK, CountResponse{Channel: h.channelTag, Count: count})
}

func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultHistoryLimit, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, fmt.Errorf("limit must be a positive integer")
	}
	if limit > maxHistoryLimit {
		return 0, fmt.Errorf("limit exceeds maximum of %d", maxHistoryLimit)
	}
	return limit, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
