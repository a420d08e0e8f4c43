// internal/httpserver/routes_duels.go
//
// HTTP routes for duels. All require auth and live under /duels/{variant}
// where variant is "timed" or "turn":
//   - POST /challenge  {opponent, word}    word may be a length, e.g. "6"
//   - POST /accept     {challenger, word}
//   - POST /reject     {challenger}
//   - POST /guess      {opponent?, word}  opponent required for turn duels
//   - POST /forfeit    {opponent}
//   - GET  /keyboard   ?opponent=
//   - GET  /status     ?opponent=

package httpserver

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/worduel/internal/game"
)

type ctxVariantKey struct{}

// mountDuels registers all /duels/{variant} routes on r.
func (s *Server) mountDuels(r chi.Router) {
	r.Route("/duels/{variant}", func(r chi.Router) {
		r.Use(withVariant)
		r.Post("/challenge", s.handleChallenge)
		r.Post("/accept", s.handleAccept)
		r.Post("/reject", s.handleReject)
		r.Post("/guess", s.handleGuess)
		r.Post("/forfeit", s.handleForfeit)
		r.Get("/keyboard", s.handleKeyboard)
		r.Get("/status", s.handleStatus)
	})
}

// withVariant resolves {variant} once for every duel route.
func withVariant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, err := game.ParseVariant(chi.URLParam(r, "variant"))
		if err != nil {
			writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown_variant", Message: err.Error()})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxVariantKey{}, v)))
	})
}

func variantOf(r *http.Request) game.Variant {
	v, _ := r.Context().Value(ctxVariantKey{}).(game.Variant)
	return v
}

// opponentParam reads ?opponent=; absent means 0, which only timed duels
// accept.
func opponentParam(w http.ResponseWriter, r *http.Request) (game.UserID, bool) {
	raw := r.URL.Query().Get("opponent")
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad_opponent", Message: "opponent must be a numeric user id"})
		return 0, false
	}
	return game.UserID(id), true
}

type challengeReq struct {
	Opponent game.UserID `json:"opponent"`
	Word     string      `json:"word"`
}

type acceptReq struct {
	Challenger game.UserID `json:"challenger"`
	Word       string      `json:"word"`
}

type gameRes struct {
	GameID game.ID `json:"gameId"`
}

func (s *Server) handleChallenge(w http.ResponseWriter, r *http.Request) {
	var req challengeReq
	if !decode(w, r, &req) {
		return
	}
	me, _ := currentUser(r)
	id, err := s.svc.Challenge(me, req.Opponent, variantOf(r), req.Word)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, gameRes{GameID: id})
}

func (s *Server) handleAccept(w http.ResponseWriter, r *http.Request) {
	var req acceptReq
	if !decode(w, r, &req) {
		return
	}
	me, _ := currentUser(r)
	id, err := s.svc.AcceptInvite(me, req.Challenger, variantOf(r), req.Word)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, gameRes{GameID: id})
}

// handleReject drops an invite and reveals the word that was proposed.
func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	var req acceptReq
	if !decode(w, r, &req) {
		return
	}
	me, _ := currentUser(r)
	d, err := s.svc.RejectInvite(me, req.Challenger, variantOf(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	res := map[string]any{"rejected": true}
	if d != nil {
		res["word"] = d.Secret(1)
	}
	writeJSON(w, http.StatusOK, res)
}

type guessReq struct {
	Opponent game.UserID `json:"opponent"`
	Word     string      `json:"word"`
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if !decode(w, r, &req) {
		return
	}
	me, _ := currentUser(r)
	m, err := s.svc.Guess(me, variantOf(r), req.Opponent, req.Word)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleForfeit(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if !decode(w, r, &req) {
		return
	}
	me, _ := currentUser(r)
	m, err := s.svc.Forfeit(me, variantOf(r), req.Opponent)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleKeyboard(w http.ResponseWriter, r *http.Request) {
	opp, ok := opponentParam(w, r)
	if !ok {
		return
	}
	me, _ := currentUser(r)
	kb, err := s.svc.Keyboard(me, variantOf(r), opp)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"keyboard": kb})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	opp, ok := opponentParam(w, r)
	if !ok {
		return
	}
	me, _ := currentUser(r)
	m, err := s.svc.Status(me, variantOf(r), opp)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}
