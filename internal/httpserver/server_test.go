package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/robalobadob/worduel/internal/game"
	"github.com/robalobadob/worduel/internal/limit"
	"github.com/robalobadob/worduel/internal/session"
	"github.com/robalobadob/worduel/internal/words"
)

const testSecret = "test_secret"

type client struct {
	t     *testing.T
	h     http.Handler
	token string
}

func newTestServer(t *testing.T, limits *limit.Registry) *Server {
	t.Helper()
	dict := words.New([]string{"north", "slide", "tower", "trial", "lease", "crane"})
	if limits == nil {
		limits = limit.New(1000, 1000)
	}
	return New(session.New(dict), limits, testSecret)
}

func as(t *testing.T, s *Server, user game.UserID) *client {
	t.Helper()
	tok, _, err := SignToken(testSecret, user, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return &client{t: t, h: s.Handler(), token: tok}
}

func (c *client) do(method, path string, body any) (int, map[string]any) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)

	out := map[string]any{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		c.t.Fatalf("%s %s: non-JSON body %q", method, path, rec.Body.String())
	}
	return rec.Code, out
}

func TestTimedDuelOverHTTP(t *testing.T) {
	s := newTestServer(t, nil)
	a, b := as(t, s, 1), as(t, s, 2)

	code, body := a.do("POST", "/duels/timed/challenge", map[string]any{"opponent": 2, "word": "north"})
	if code != http.StatusCreated || body["gameId"] == nil {
		t.Fatalf("challenge: %d %v", code, body)
	}
	code, body = b.do("GET", "/duels", nil)
	if code != http.StatusOK || len(body["invites"].([]any)) != 1 {
		t.Fatalf("overview: %d %v", code, body)
	}
	if code, body = b.do("POST", "/duels/timed/accept", map[string]any{"challenger": 1, "word": "slide"}); code != http.StatusOK {
		t.Fatalf("accept: %d %v", code, body)
	}

	code, body = a.do("POST", "/duels/timed/guess", map[string]any{"word": "slide"})
	if code != http.StatusOK || body["accepted"] != true || body["progress"] != "ending(0)" {
		t.Fatalf("guess a: %d %v", code, body)
	}
	code, body = b.do("GET", "/duels/timed/status", nil)
	if code != http.StatusOK || body["progress"] != "ending(0)" {
		t.Fatalf("status: %d %v", code, body)
	}
	code, body = b.do("GET", "/duels/timed/keyboard", nil)
	if code != http.StatusOK || body["keyboard"] == "" {
		t.Fatalf("keyboard: %d %v", code, body)
	}
	code, body = b.do("POST", "/duels/timed/guess", map[string]any{"word": "north"})
	if code != http.StatusOK || !strings.HasPrefix(body["progress"].(string), "over") {
		t.Fatalf("guess b: %d %v", code, body)
	}

	code, body = a.do("GET", "/scores/top?n=5", nil)
	if code != http.StatusOK || len(body["entries"].([]any)) != 2 {
		t.Fatalf("top: %d %v", code, body)
	}
	code, body = a.do("GET", "/duels/timed/status", nil)
	if code != http.StatusNotFound || body["error"] != "no_game" {
		t.Fatalf("status after game over: %d %v", code, body)
	}
	if code, _ = a.do("GET", "/scores/me", nil); code != http.StatusOK {
		t.Fatalf("scores/me: %d", code)
	}
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t, nil)
	a := as(t, s, 1)

	cases := []struct {
		method, path string
		body         any
		status       int
		code         string
	}{
		{"POST", "/duels/timed/challenge", map[string]any{"opponent": 1, "word": "north"}, 400, "self_challenge"},
		{"POST", "/duels/timed/challenge", map[string]any{"opponent": 2, "word": "zzzzz"}, 400, "word_not_found"},
		{"POST", "/duels/timed/challenge", map[string]any{"opponent": 2, "word": "9"}, 400, "bad_word_length"},
		{"POST", "/duels/timed/accept", map[string]any{"challenger": 2, "word": "north"}, 404, "no_invite"},
		{"POST", "/duels/turn/guess", map[string]any{"opponent": 2, "word": "north"}, 404, "no_game"},
		{"POST", "/duels/blitz/guess", map[string]any{"word": "north"}, 404, "unknown_variant"},
		{"GET", "/duels/turn/status?opponent=x", nil, 400, "bad_opponent"},
	}
	for _, c := range cases {
		status, body := a.do(c.method, c.path, c.body)
		if status != c.status || body["error"] != c.code {
			t.Errorf("%s %s: %d %v, want %d %s", c.method, c.path, status, body, c.status, c.code)
		}
	}

	status, body := a.do("POST", "/duels/timed/challenge", nil)
	if status != http.StatusBadRequest || body["error"] != "invalid_json" {
		t.Errorf("empty body: %d %v", status, body)
	}
}

func TestRejectRevealsWord(t *testing.T) {
	s := newTestServer(t, nil)
	a, b := as(t, s, 1), as(t, s, 2)

	a.do("POST", "/duels/turn/challenge", map[string]any{"opponent": 2, "word": "north"})
	code, body := b.do("POST", "/duels/turn/reject", map[string]any{"challenger": 1})
	if code != http.StatusOK || body["word"] != "north" {
		t.Fatalf("reject: %d %v", code, body)
	}
	code, body = a.do("POST", "/duels/turn/forfeit", map[string]any{"opponent": 2})
	if code != http.StatusNotFound || body["error"] != "no_game" {
		t.Fatalf("forfeit after reject: %d %v", code, body)
	}
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t, nil)

	anon := &client{t: t, h: s.Handler()}
	if code, body := anon.do("GET", "/duels", nil); code != http.StatusUnauthorized || body["error"] != "unauthorized" {
		t.Fatalf("anonymous: %d %v", code, body)
	}

	forged, _, _ := SignToken("other_secret", 1, time.Hour)
	bad := &client{t: t, h: s.Handler(), token: forged}
	if code, body := bad.do("GET", "/duels", nil); code != http.StatusUnauthorized || body["error"] != "invalid_token" {
		t.Fatalf("forged: %d %v", code, body)
	}

	expired, _, _ := SignToken(testSecret, 1, -time.Minute)
	old := &client{t: t, h: s.Handler(), token: expired}
	if code, _ := old.do("GET", "/duels", nil); code != http.StatusUnauthorized {
		t.Fatalf("expired token: %d", code)
	}

	// public routes stay open
	if code, body := anon.do("GET", "/words/North?base=slide", nil); code != http.StatusOK || body["known"] != true {
		t.Fatalf("words: %d %v", code, body)
	}
	if code, _ := anon.do("GET", "/health", nil); code != http.StatusOK {
		t.Fatalf("health: %d", code)
	}
}

func TestRateLimited(t *testing.T) {
	s := newTestServer(t, limit.New(0.001, 2))
	a := as(t, s, 1)

	for i := 0; i < 2; i++ {
		if code, _ := a.do("GET", "/duels", nil); code != http.StatusOK {
			t.Fatalf("request %d: %d", i, code)
		}
	}
	if code, body := a.do("GET", "/duels", nil); code != http.StatusTooManyRequests || body["error"] != "rate_limited" {
		t.Fatalf("third request: %d %v", code, body)
	}
	if code, _ := as(t, s, 2).do("GET", "/duels", nil); code != http.StatusOK {
		t.Fatalf("other user throttled: %d", code)
	}
}

func TestUserIDClaim(t *testing.T) {
	cases := []struct {
		claim any
		want  game.UserID
		ok    bool
	}{
		{float64(42), 42, true},
		{json.Number("7"), 7, true},
		{"99", 99, true},
		{1.5, 0, false},
		{float64(0), 0, false},
		{nil, 0, false},
	}
	for _, c := range cases {
		got, err := userID(map[string]any{"id": c.claim})
		if (err == nil) != c.ok || (c.ok && got != c.want) {
			t.Errorf("userID(%v) = %d,%v", c.claim, got, err)
		}
	}
}
