// internal/httpserver/auth.go
//
// Bearer-token identity for the HTTP host.
//   - SignToken mints an HS256 JWT carrying a numeric "id" claim.
//   - requireAuth validates it and stores the user id in the request context.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/robalobadob/worduel/internal/game"
)

// ctxUserKey is the context key type for storing the caller's id.
type ctxUserKey struct{}

// SignToken issues a token for user valid for ttl.
func SignToken(secret string, user game.UserID, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  int64(user),
		"exp": exp.Unix(),
		"iat": now.Unix(),
	})
	ss, err := t.SignedString([]byte(secret))
	return ss, exp, err
}

// bearerToken extracts "Authorization: Bearer <token>".
func bearerToken(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return ""
}

// userID reads the numeric "id" claim. JSON numbers, json.Number and
// decimal strings are accepted.
func userID(claims jwt.MapClaims) (game.UserID, error) {
	var (
		id  int64
		err error
	)
	switch v := claims["id"].(type) {
	case float64:
		id = int64(v)
		if float64(id) != v {
			err = errors.New("id claim is not an integer")
		}
	case json.Number:
		id, err = v.Int64()
	case string:
		id, err = strconv.ParseInt(v, 10, 64)
	default:
		err = errors.New("missing id claim")
	}
	if err == nil && id <= 0 {
		err = errors.New("id claim must be positive")
	}
	return game.UserID(id), err
}

// requireAuth enforces a valid JWT and injects the user id into the request
// context.
func (s *Server) requireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearerToken(r)
			if tokenStr == "" {
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized", Message: "missing bearer token"})
				return
			}
			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				return s.secret, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid_token", Message: "invalid token"})
				return
			}
			id, err := userID(claims)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid_token", Message: err.Error()})
				return
			}
			ctx := context.WithValue(r.Context(), ctxUserKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// currentUser returns the authenticated caller, if any.
func currentUser(r *http.Request) (game.UserID, bool) {
	id, ok := r.Context().Value(ctxUserKey{}).(game.UserID)
	return id, ok
}
