// internal/httpserver/server.go
//
// HTTP host for the duel engine.
// Responsibilities:
//   - Router + middleware (JSON, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/words/{word}", "/scores/top".
//   - Duel endpoints (require auth): mounted under /duels/{variant}.
//   - Per-user rate limiting on authenticated routes.
//   - Mapping engine errors to JSON {"error": code, "message": text}.
//
// Notes:
//   - Identity comes from a bearer JWT whose "id" claim is the numeric
//     user id. There are no accounts; whoever holds JWT_SECRET mints tokens.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/worduel/internal/game"
	"github.com/robalobadob/worduel/internal/limit"
	"github.com/robalobadob/worduel/internal/session"
)

// Server bundles the router and the services behind it.
type Server struct {
	r      *chi.Mux
	svc    *session.Service
	limits *limit.Registry
	secret []byte
}

// New constructs a Server, installs middleware, and registers routes.
func New(svc *session.Service, limits *limit.Registry, jwtSecret string) *Server {
	s := &Server{r: chi.NewRouter(), svc: svc, limits: limits, secret: []byte(jwtSecret)}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"worduel","endpoints":["/health","/duels","/duels/{variant}/*","/scores/top","/scores/me","/words/{word}"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":    true,
			"games": s.svc.ActiveGames(),
			"words": s.svc.Dictionary().Len(),
		})
	})

	s.r.Get("/words/{word}", s.handleWord)
	s.r.Get("/scores/top", s.handleTop)

	s.r.Group(func(r chi.Router) {
		r.Use(s.requireAuth(), s.rateLimit)
		r.Get("/scores/me", s.handleMyScore)
		r.Get("/duels", s.handleOverview)
		s.mountDuels(r)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Handler exposes the router for http.Server and tests.
func (s *Server) Handler() http.Handler { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// rateLimit throttles each authenticated user independently.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if me, ok := currentUser(r); ok && !s.limits.Allow(me) {
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate_limited", Message: "too many requests, slow down"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ public -------------------------------------

// wordRes is the GET /words/{word} payload. Match is set when ?base= is
// given: the word scored against base.
type wordRes struct {
	Word  string    `json:"word"`
	Known bool      `json:"known"`
	Match *matchRes `json:"match,omitempty"`
}

type matchRes struct {
	Base     string             `json:"base"`
	Marks    []game.MatchLetter `json:"marks"`
	Rendered string             `json:"rendered"`
}

// handleWord looks a word up in the dictionary and optionally scores it
// against ?base=.
func (s *Server) handleWord(w http.ResponseWriter, r *http.Request) {
	word := strings.ToLower(chi.URLParam(r, "word"))
	res := wordRes{Word: word, Known: s.svc.Dictionary().Contains(word)}
	if base := strings.ToLower(r.URL.Query().Get("base")); base != "" {
		if len(base) != len(word) {
			writeError(w, r, &game.WordLengthError{Length: len(word)})
			return
		}
		marks := game.MatchWord(base, word)
		res.Match = &matchRes{Base: base, Marks: marks, Rendered: game.RenderMatch(word, marks)}
	}
	writeJSON(w, http.StatusOK, res)
}

// handleTop returns the leaderboard. n defaults to 10, capped to 1..50.
func (s *Server) handleTop(w http.ResponseWriter, r *http.Request) {
	n := 10
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad_count", Message: "n must be an integer"})
			return
		}
		n = min(max(parsed, 1), 50)
	}
	top, err := s.svc.Scores().ListTop(r.Context(), n)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": top})
}

func (s *Server) handleMyScore(w http.ResponseWriter, r *http.Request) {
	me, _ := currentUser(r)
	pts, err := s.svc.Scores().Get(r.Context(), me)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": me, "points": pts})
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	me, _ := currentUser(r)
	writeJSON(w, http.StatusOK, s.svc.Overview(me))
}

// ------------------------------- errors ------------------------------------

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// errorCodes maps engine errors to HTTP status and code.
var errorCodes = []struct {
	err    error
	status int
	code   string
}{
	{game.ErrBadWordLength, http.StatusBadRequest, "bad_word_length"},
	{game.ErrWordNotFound, http.StatusBadRequest, "word_not_found"},
	{game.ErrSelfChallenge, http.StatusBadRequest, "self_challenge"},
	{game.ErrForfeitBadUser, http.StatusBadRequest, "forfeit_bad_user"},
	{game.ErrNoGame, http.StatusNotFound, "no_game"},
	{game.ErrNoInvite, http.StatusNotFound, "no_invite"},
	{game.ErrAlreadyInGame, http.StatusConflict, "already_in_game"},
	{game.ErrGameStarted, http.StatusConflict, "game_started"},
	{game.ErrBadAccept, http.StatusForbidden, "bad_accept"},
	{game.ErrGameDeleted, http.StatusGone, "game_deleted"},
}

// writeError sends err as JSON. Unknown errors are logged and reported as
// internal without their text.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			writeJSON(w, e.status, errorBody{Error: e.code, Message: err.Error()})
			return
		}
	}
	log.Error().Err(err).Str("requestId", chimw.GetReqID(r.Context())).Str("path", r.URL.Path).Msg("request failed")
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal", Message: "internal error"})
}

// writeJSON encodes v with status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decode reads a JSON body into v, writing a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_json", Message: err.Error()})
		return false
	}
	return true
}
