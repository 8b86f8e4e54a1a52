package control

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pawmatch/pawmatch/internal/core/domain"
	"github.com/pawmatch/pawmatch/internal/faults"
	"github.com/pawmatch/pawmatch/internal/metrics"
	"github.com/pawmatch/pawmatch/internal/tournament"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/tournaments", s.handleStartTournament)
	mux.HandleFunc("GET /api/tournaments/{id}", s.handleGetTournament)
	mux.HandleFunc("POST /api/tournaments/{id}/votes", s.handleVote)
	mux.HandleFunc("POST /api/tournaments/{id}/undo", s.handleUndo)
	mux.HandleFunc("GET /api/tournaments/{id}/progress", s.handleProgress)
	mux.HandleFunc("GET /api/tournaments/{id}/bracket", s.handleBracket)

	mux.HandleFunc("GET /api/names", s.handleListNames)
	mux.HandleFunc("GET /api/leaderboard", s.handleLeaderboard)

	mux.HandleFunc("POST /api/suggestions", s.handleAddSuggestion)
	mux.HandleFunc("GET /api/suggestions", s.handleListSuggestions)

	mux.HandleFunc("POST /api/admin/names", s.handleModerateNames)
	mux.HandleFunc("POST /api/admin/suggestions/{id}/approve", s.handleApproveSuggestion)

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

// errorResponse is the uniform error payload: a presentable message plus the
// retry affordance flag. Raw diagnostics stay in the logs.
type errorResponse struct {
	Error     string `json:"error"`
	ErrorID   string `json:"error_id"`
	Retryable bool   `json:"retryable"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, raw any, context string) {
	fe := s.faults.Handle(raw, context, faults.Metadata{})
	writeJSON(w, status, errorResponse{
		Error:     fe.UserMessage,
		ErrorID:   fe.ID,
		Retryable: fe.IsRetryable,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ---------------------------------------------------------------------------
// Tournaments
// ---------------------------------------------------------------------------

type startTournamentRequest struct {
	Rounds int   `json:"rounds,omitempty"`
	Seed   int64 `json:"seed,omitempty"`
}

type matchView struct {
	Left        domain.NameEntry `json:"left"`
	Right       domain.NameEntry `json:"right"`
	MatchNumber int              `json:"match_number"`
	Round       int              `json:"round"`
}

type tournamentView struct {
	SessionID string              `json:"session_id"`
	Match     *matchView          `json:"match,omitempty"`
	Complete  bool                `json:"complete"`
	Progress  tournament.Progress `json:"progress"`
	UndoMS    int64               `json:"undo_remaining_ms"`
}

func (s *Server) tournamentView(sess *tournament.Session) tournamentView {
	view := tournamentView{
		SessionID: sess.ID(),
		Progress:  sess.Progress(),
		UndoMS:    sess.UndoRemaining().Milliseconds(),
	}
	if match, ok := sess.Current(); ok {
		view.Match = &matchView{
			Left:        match.Left,
			Right:       match.Right,
			MatchNumber: match.MatchNumber,
			Round:       match.Round,
		}
	} else {
		view.Complete = true
	}
	return view
}

func (s *Server) handleStartTournament(w http.ResponseWriter, r *http.Request) {
	var req startTournamentRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "validation failed: invalid JSON body", "tournament_start")
			return
		}
	}

	sess, err := s.newSession(r.Context(), req.Rounds, req.Seed)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrInsufficientEntries) {
			status = http.StatusConflict
		}
		s.writeError(w, status, err, "tournament_start")
		return
	}

	writeJSON(w, http.StatusCreated, s.tournamentView(sess))
}

func (s *Server) handleGetTournament(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.findSession(r.Context(), r.PathValue("id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "validation failed: unknown tournament session", "tournament")
		return
	}
	writeJSON(w, http.StatusOK, s.tournamentView(sess))
}

type voteRequest struct {
	Option domain.VoteOption `json:"option"`
}

type voteResponse struct {
	Vote domain.Vote    `json:"vote"`
	Next tournamentView `json:"next"`
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	sess, ok := s.findSession(r.Context(), r.PathValue("id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "validation failed: unknown tournament session", "vote")
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "validation failed: invalid JSON body", "vote")
		return
	}
	if !req.Option.Valid() {
		s.writeError(w, http.StatusBadRequest, "validation failed: unknown vote option", "vote")
		return
	}

	vote, err := sess.Vote(r.Context(), req.Option)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrTournamentComplete) {
			status = http.StatusConflict
		}
		var unknown *domain.UnknownEntryError
		if errors.As(err, &unknown) {
			status = http.StatusConflict
		}
		s.writeError(w, status, err, "vote")
		return
	}

	metrics.VoteLatency.Observe(time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, voteResponse{Vote: vote, Next: s.tournamentView(sess)})
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.findSession(r.Context(), r.PathValue("id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "validation failed: unknown tournament session", "undo")
		return
	}

	if err := sess.Undo(r.Context()); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrUndoWindowClosed) {
			status = http.StatusConflict
		}
		s.writeError(w, status, err, "undo")
		return
	}

	writeJSON(w, http.StatusOK, s.tournamentView(sess))
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.findSession(r.Context(), r.PathValue("id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "validation failed: unknown tournament session", "tournament")
		return
	}
	writeJSON(w, http.StatusOK, sess.Progress())
}

func (s *Server) handleBracket(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.findSession(r.Context(), r.PathValue("id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "validation failed: unknown tournament session", "tournament")
		return
	}
	writeJSON(w, http.StatusOK, sess.Bracket())
}

// ---------------------------------------------------------------------------
// Names and leaderboard
// ---------------------------------------------------------------------------

func (s *Server) handleListNames(w http.ResponseWriter, r *http.Request) {
	var (
		entries []domain.NameEntry
		err     error
	)
	if r.URL.Query().Get("include_hidden") == "true" {
		entries, err = s.names.List(r.Context())
	} else {
		entries, err = s.names.ListVotable(r.Context())
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err, "names")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if q := r.URL.Query().Get("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := s.leaderboard(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err, "leaderboard")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// ---------------------------------------------------------------------------
// Moderation
// ---------------------------------------------------------------------------

type moderateRequest struct {
	IDs    []string `json:"ids"`
	Action string   `json:"action"` // hide, unhide, lock, unlock
}

func (s *Server) handleModerateNames(w http.ResponseWriter, r *http.Request) {
	var req moderateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "validation failed: invalid JSON body", "admin")
		return
	}
	if len(req.IDs) == 0 {
		s.writeError(w, http.StatusBadRequest, "validation failed: ids are required", "admin")
		return
	}

	var err error
	switch req.Action {
	case "hide":
		err = s.names.SetHidden(r.Context(), req.IDs, true)
	case "unhide":
		err = s.names.SetHidden(r.Context(), req.IDs, false)
	case "lock":
		err = s.names.SetLockedIn(r.Context(), req.IDs, true)
	case "unlock":
		err = s.names.SetLockedIn(r.Context(), req.IDs, false)
	default:
		s.writeError(w, http.StatusBadRequest, "validation failed: unknown action", "admin")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err, "admin")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"updated": len(req.IDs)})
}

// ---------------------------------------------------------------------------
// Suggestions
// ---------------------------------------------------------------------------

type suggestionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	SubmittedBy string `json:"submitted_by"`
}

func (s *Server) handleAddSuggestion(w http.ResponseWriter, r *http.Request) {
	var req suggestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "validation failed: invalid JSON body", "suggestion")
		return
	}
	if req.Name == "" || req.SubmittedBy == "" {
		s.writeError(w, http.StatusBadRequest, "validation failed: name and submitted_by are required", "suggestion")
		return
	}

	sg := domain.Suggestion{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		SubmittedBy: req.SubmittedBy,
		Status:      domain.SuggestionPending,
		CreatedAt:   time.Now(),
	}
	if err := s.suggestions.Add(r.Context(), &sg); err != nil {
		s.writeError(w, http.StatusInternalServerError, err, "suggestion")
		return
	}

	writeJSON(w, http.StatusCreated, sg)
}

func (s *Server) handleListSuggestions(w http.ResponseWriter, r *http.Request) {
	status := domain.SuggestionStatus(r.URL.Query().Get("status"))

	suggestions, err := s.suggestions.List(r.Context(), status)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err, "suggestion")
		return
	}
	writeJSON(w, http.StatusOK, suggestions)
}

// handleApproveSuggestion promotes a suggestion into the name pool.
func (s *Server) handleApproveSuggestion(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	suggestions, err := s.suggestions.List(r.Context(), "")
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err, "admin")
		return
	}

	var target *domain.Suggestion
	for i := range suggestions {
		if suggestions[i].ID == id {
			target = &suggestions[i]
			break
		}
	}
	if target == nil {
		s.writeError(w, http.StatusNotFound, "validation failed: unknown suggestion", "admin")
		return
	}

	if err := s.suggestions.SetStatus(r.Context(), id, domain.SuggestionApproved); err != nil {
		s.writeError(w, http.StatusInternalServerError, err, "admin")
		return
	}

	entry := domain.NameEntry{
		ID:          target.ID,
		Name:        target.Name,
		Description: target.Description,
		Rating:      domain.DefaultRating,
	}
	if err := s.names.Save(r.Context(), &entry); err != nil {
		s.writeError(w, http.StatusInternalServerError, err, "admin")
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// ---------------------------------------------------------------------------
// Health
// ---------------------------------------------------------------------------

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.Health(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "healthy",
		"sessions": s.sessions.Count(),
	})
}
