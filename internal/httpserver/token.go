// internal/httpserver/token.go
//
// Signed player tokens.
//
// A player's identity is an opaque token minted at create/join time: an
// HS256 JWT whose subject is the player id and whose "room" claim binds it
// to one room code. Clients present it back as `Authorization: Bearer …`
// (or a `playerToken` query parameter for plain GETs). There is no account
// system behind this: the token is just a tamper-evident form of the
// per-player identifier, stable across reconnection.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// playerClaims is the token payload.
type playerClaims struct {
	Room string `json:"room"`
	Name string `json:"name"`
	jwt.RegisteredClaims
}

type ctxPlayerKey struct{}

// mintPlayerToken signs a token for playerID in room.
func (s *Server) mintPlayerToken(playerID, room, name string) (string, error) {
	now := time.Now()
	claims := playerClaims{
		Room: room,
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   playerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// parsePlayerToken verifies a token and returns its claims.
func (s *Server) parsePlayerToken(tokenStr string) (*playerClaims, error) {
	claims := &playerClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid player token")
	}
	if claims.Subject == "" || claims.Room == "" {
		return nil, errors.New("invalid player token")
	}
	return claims, nil
}

// bearerOrQuery pulls a token from the Authorization header or, failing
// that, the playerToken query parameter.
func bearerOrQuery(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("playerToken")
}

// withPlayer decorates requests with player claims when a valid token is
// present; handlers can still run for requests without one.
func (s *Server) withPlayer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tok := bearerOrQuery(r); tok != "" {
				if claims, err := s.parsePlayerToken(tok); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), ctxPlayerKey{}, claims))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requirePlayer enforces a valid token.
func (s *Server) requirePlayer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := bearerOrQuery(r)
			if tok == "" {
				http.Error(w, `{"error":"missing_token"}`, http.StatusUnauthorized)
				return
			}
			claims, err := s.parsePlayerToken(tok)
			if err != nil {
				http.Error(w, `{"error":"invalid_token"}`, http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), ctxPlayerKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// playerFrom returns the claims attached by the middleware, or nil.
func playerFrom(r *http.Request) *playerClaims {
	claims, _ := r.Context().Value(ctxPlayerKey{}).(*playerClaims)
	return claims
}
