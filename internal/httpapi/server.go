package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/smartlock/gateway/internal/smartlock/service"
	"github.com/smartlock/gateway/internal/smartlock/store"
	"github.com/smartlock/gateway/internal/smartlock/types"
)

type Dependencies struct {
	Logger zerolog.Logger
	Addr   string
	Access *service.AccessService
	Audit  *service.AuditService
}

type Server struct {
	httpServer *http.Server
	logger     zerolog.Logger
	access     *service.AccessService
	audit      *service.AuditService
}

func NewServer(d Dependencies) *Server {
	s := &Server{
		logger: d.Logger,
		access: d.Access,
		audit:  d.Audit,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(d.Logger))

	r.Post("/api/access/verify", s.handleVerify)
	r.Get("/api/access/logs", s.handleLogs)
	r.Get("/api/access/stats", s.handleStats)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req types.AccessRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	resp, err := s.access.Verify(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCardID):
			writeError(w, http.StatusBadRequest, "invalid_card_id", err.Error())
		case errors.Is(err, store.ErrUnknownCard):
			writeError(w, http.StatusNotFound, "unknown_card", "card is not registered")
		default:
			s.logger.Error().Err(err).Msg("verify error")
			writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleLogs lists audit records.  Omitted start/end default to the
// epoch and the current time.
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	q := service.LogQuery{}

	if v := r.URL.Query().Get("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_user_id", "user_id must be an integer")
			return
		}
		q.UserID = &id
	}
	if v := r.URL.Query().Get("card_id"); v != "" {
		q.CardID = &v
	}

	var ok bool
	if q.Start, ok = parseTimeParam(w, r, "start"); !ok {
		return
	}
	if q.End, ok = parseTimeParam(w, r, "end"); !ok {
		return
	}

	recs, err := s.audit.Logs(r.Context(), q)
	if err != nil {
		s.logger.Error().Err(err).Msg("logs query error")
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	out := make([]types.AttemptLog, 0, len(recs))
	for _, rec := range recs {
		out = append(out, attemptToAPI(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	start, ok := parseTimeParam(w, r, "start")
	if !ok {
		return
	}
	end, ok := parseTimeParam(w, r, "end")
	if !ok {
		return
	}

	stats, err := s.audit.Summarize(r.Context(), start, end)
	if err != nil {
		s.logger.Error().Err(err).Msg("stats query error")
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// parseTimeParam reads an optional RFC3339 query parameter.  On a parse
// failure it writes the error response and returns ok=false.
func parseTimeParam(w http.ResponseWriter, r *http.Request, name string) (*time.Time, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_"+name, name+" must be RFC3339")
		return nil, false
	}
	return &t, true
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: code, Message: msg})
}
