package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"bjorkvang/internal/config"
	"bjorkvang/internal/domain"
	"bjorkvang/internal/export"
	"bjorkvang/internal/metrics"

	"github.com/rs/zerolog"
)

// HTTPServer exposes the booking API: the public submission and
// calendar endpoints, the authenticated admin surface and the decision
// links the board receives by mail.
type HTTPServer struct {
	cfg      *config.Config
	service  domain.BookingService
	spaces   domain.SpaceService
	exporter *export.Exporter
	cache    domain.CalendarCache
	auth     *HTTPAuth
	server   *http.Server
	logger   *zerolog.Logger
}

func NewHTTPServer(
	cfg *config.Config,
	service domain.BookingService,
	spaces domain.SpaceService,
	exporter *export.Exporter,
	cache domain.CalendarCache,
	logger *zerolog.Logger,
) *HTTPServer {
	mux := http.NewServeMux()
	srv := &HTTPServer{
		cfg:      cfg,
		service:  service,
		spaces:   spaces,
		exporter: exporter,
		cache:    cache,
		logger:   logger,
	}
	srv.auth = NewHTTPAuth(cfg.Auth, cfg.RateLimit)

	mux.HandleFunc("/api/booking", srv.handleBooking)
	mux.HandleFunc("/api/booking/calendar", srv.handlePublicCalendar)
	mux.HandleFunc("/api/booking/approve", srv.handleApprove)
	mux.HandleFunc("/api/booking/reject", srv.handleReject)
	mux.HandleFunc("/api/booking/admin", srv.auth.Require(srv.handleAdminList))
	mux.HandleFunc("/api/booking/admin/calendar", srv.auth.Require(srv.handleAdminCalendar))
	mux.HandleFunc("/api/booking/admin/export", srv.auth.Require(srv.handleAdminExport))
	mux.HandleFunc("/api/spaces", srv.handleSpaces)
	mux.HandleFunc("/healthz", srv.handleHealth)

	handler := srv.loggingMiddleware(srv.corsMiddleware(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.Server.AllowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+s.cfg.Auth.HeaderAPIKey)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		metrics.IncHTTP(r.URL.Path)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

func writeHTML(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(body))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
