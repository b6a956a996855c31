package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bjorkvang/internal/booking"
	"bjorkvang/internal/database"
	"bjorkvang/internal/service"
	"bjorkvang/internal/view"
)

const dateLayout = "2006-01-02"

func (s *HTTPServer) handleBooking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if !s.allowSubmission(r) {
		writeError(w, http.StatusTooManyRequests, "too many requests")
		return
	}

	raw, err := decodeRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b, err := s.service.Submit(r.Context(), raw)
	if err != nil {
		s.writeSubmitError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"id":     b.ID,
		"status": b.Status,
		"start":  b.Start.Format(time.RFC3339),
		"end":    b.End.Format(time.RFC3339),
	})
}

func (s *HTTPServer) writeSubmitError(w http.ResponseWriter, err error) {
	var vErr *booking.ValidationError
	if errors.As(err, &vErr) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  vErr.Reason,
			"fields": vErr.Fields,
		})
		return
	}

	if errors.Is(err, database.ErrPastDate) || errors.Is(err, database.ErrDateTooFar) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var cErr *database.ConflictError
	if errors.As(err, &cErr) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error": "booking conflict",
			"conflict": map[string]string{
				"start": cErr.Start.Format(time.RFC3339),
				"end":   cErr.End.Format(time.RFC3339),
			},
		})
		return
	}

	if errors.Is(err, service.ErrMailNotConfigured) {
		writeError(w, http.StatusInternalServerError, "notification configuration missing")
		return
	}

	s.logger.Error().Err(err).Msg("booking submit error")
	writeError(w, http.StatusInternalServerError, "internal error")
}

// decodeRequest accepts a JSON object or a urlencoded form. The field
// names are loose on purpose; the alias table sorts them out.
func decodeRequest(r *http.Request) (map[string]any, error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		raw := make(map[string]any, len(r.PostForm))
		for key, values := range r.PostForm {
			if len(values) == 1 {
				raw[key] = values[0]
			} else {
				raw[key] = strings.Join(values, ",")
			}
		}
		return raw, nil
	}

	var raw map[string]any
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (s *HTTPServer) allowSubmission(r *http.Request) bool {
	if s.cache == nil {
		return true
	}

	allowed, err := s.cache.CheckRateLimit(r.Context(), clientIP(r),
		s.cfg.Booking.RateLimitSubmissions,
		time.Duration(s.cfg.Booking.RateLimitWindow)*time.Second)
	if err != nil {
		// Rate limiting is best effort; a cache outage must not block
		// submissions.
		s.logger.Warn().Err(err).Msg("rate limit check failed")
		return true
	}
	return allowed
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx > 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return "unknown"
}

func (s *HTTPServer) handlePublicCalendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	entries, err := s.service.ListPublic(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("public calendar error")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"bookings": entries})
}

func (s *HTTPServer) handleAdminList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	bookings, err := s.service.ListAdmin(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("admin list error")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *HTTPServer) handleAdminCalendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	bookings, err := s.service.ListAdmin(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("admin calendar error")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"events": view.AdminEvents(bookings)})
}

func (s *HTTPServer) handleAdminExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.exporter == nil {
		writeError(w, http.StatusNotImplemented, "export is not configured")
		return
	}

	now := time.Now()
	startDate := now
	endDate := now.AddDate(0, 2, 0)

	if raw := strings.TrimSpace(r.URL.Query().Get("start")); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid start date; expected YYYY-MM-DD")
			return
		}
		startDate = parsed
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("end")); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid end date; expected YYYY-MM-DD")
			return
		}
		endDate = parsed
	}
	if endDate.Before(startDate) {
		writeError(w, http.StatusBadRequest, "end date is before start date")
		return
	}

	filePath, err := s.exporter.ExportBookings(r.Context(), startDate, endDate)
	if err != nil {
		s.logger.Error().Err(err).Msg("export error")
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", filepath.Base(filePath)))
	http.ServeFile(w, r, filePath)
	_ = os.Remove(filePath)
}

func (s *HTTPServer) handleApprove(w http.ResponseWriter, r *http.Request) {
	s.handleDecision(w, r, true)
}

func (s *HTTPServer) handleReject(w http.ResponseWriter, r *http.Request) {
	s.handleDecision(w, r, false)
}

// handleDecision serves the links from the board mail, so the responses
// are small HTML pages rather than JSON.
func (s *HTTPServer) handleDecision(w http.ResponseWriter, r *http.Request, approve bool) {
	if r.Method != http.MethodGet {
		writeHTML(w, http.StatusMethodNotAllowed, view.ErrorPage("Ugyldig forespørsel."))
		return
	}

	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		writeHTML(w, http.StatusBadRequest, view.ErrorPage("Booking-ID mangler."))
		return
	}

	var err error
	if approve {
		_, err = s.service.Approve(r.Context(), id)
	} else {
		_, err = s.service.Reject(r.Context(), id)
	}

	switch {
	case err == nil:
		writeHTML(w, http.StatusOK, view.DecisionPage(approve))
	case errors.Is(err, database.ErrNotFound):
		writeHTML(w, http.StatusNotFound, view.ErrorPage("Fant ingen booking med denne ID-en."))
	case errors.Is(err, database.ErrInvalidTransition),
		errors.Is(err, database.ErrConcurrentModification):
		writeHTML(w, http.StatusConflict, view.ErrorPage("Denne bookingen er allerede behandlet."))
	default:
		s.logger.Error().Err(err).Str("booking_id", id).Msg("decision error")
		writeHTML(w, http.StatusInternalServerError, view.ErrorPage("Noe gikk galt. Prøv igjen senere."))
	}
}

func (s *HTTPServer) handleSpaces(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"spaces": s.spaces.GetActiveSpaces()})
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.cfg.App.Version,
	})
}
