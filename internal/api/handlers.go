package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/julianstephens/famquest/internal/constants"
	fqerrors "github.com/julianstephens/famquest/internal/errors"
	"github.com/julianstephens/famquest/internal/logger"
	"github.com/julianstephens/famquest/internal/storage"
	"github.com/julianstephens/famquest/internal/streaks"
)

type completeRequest struct {
	MemberID string `json:"member_id"`
}

type recalculateResponse struct {
	Results []streaks.MemberResult `json:"results"`
	Failed  int                    `json:"failed"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": constants.Version})
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var req completeRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.MemberID) == "" {
		writeError(w, http.StatusBadRequest, "member_id is required")
		return
	}

	outcome, err := s.completions.CompleteHabitForMember(r.Context(), vars["familyID"], vars["habitID"], req.MemberID)
	if err != nil {
		writeDomainError(w, r, err, "could not save completion")
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	board, err := s.dashboard.Today(r.Context(), mux.Vars(r)["familyID"])
	if err != nil {
		writeDomainError(w, r, err, "could not load today's habits")
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := s.dashboard.Leaderboard(r.Context(), mux.Vars(r)["familyID"])
	if err != nil {
		writeDomainError(w, r, err, "could not load leaderboard")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleMemberStats(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	stats, err := s.dashboard.MemberStats(r.Context(), mux.Vars(r)["memberID"], month)
	if err != nil {
		if month != "" && !errors.Is(err, storage.ErrNotFound) && !errors.Is(err, fqerrors.ErrConfiguration) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeDomainError(w, r, err, "could not load member stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleRecalculateStreaks(w http.ResponseWriter, r *http.Request) {
	familyID := r.URL.Query().Get("family_id")
	results, err := s.recalculator.RecalculateStreaks(r.Context(), familyID)
	if err != nil {
		writeDomainError(w, r, err, "could not recalculate streaks")
		return
	}
	resp := recalculateResponse{Results: results}
	for _, res := range results {
		if res.Err != nil {
			resp.Failed++
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// requireAdmin checks the admin secret header in constant time. Without a
// configured secret the admin routes answer 404.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.AdminSecret == "" {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		got := r.Header.Get(constants.AdminSecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.cfg.AdminSecret)) != 1 {
			requestLog(r).Warn("Rejected admin request", "remote", r.RemoteAddr)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, fqerrors.ErrInvalidTarget), errors.Is(err, fqerrors.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError exposes validation messages to the client but replaces
// server-side failures with a generic message.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error, generic string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		requestLog(r).Error("Request failed", "error", err)
		writeError(w, status, generic)
		return
	}
	writeError(w, status, err.Error())
}

func decodeJSON(body io.ReadCloser, dst any) error {
	defer body.Close()
	dec := json.NewDecoder(io.LimitReader(body, 1<<16))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// requestLog scopes log entries to the request and any family or member in the route.
func requestLog(r *http.Request) logger.Scope {
	lg := logger.With("method", r.Method, "path", r.URL.Path)
	vars := mux.Vars(r)
	for _, key := range []string{"familyID", "habitID", "memberID"} {
		if v := vars[key]; v != "" {
			lg = lg.With(strings.TrimSuffix(key, "ID"), v)
		}
	}
	return lg
}
