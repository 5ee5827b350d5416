package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/nerrad567/smartcity-core/internal/auth"
)

const ctxKeyUser contextKey = "user"

// loginRequest is the request body for POST /auth/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the response body for POST /auth/login.
type loginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	Role        auth.Role `json:"role"`
}

// handleLogin exchanges operator credentials for a bearer token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeBadRequest(w, "username and password are required")
		return
	}

	u, ok := s.access.Authenticate(req.Username, req.Password)
	if !ok {
		s.logger.Warn("api login failed", "username", req.Username, "remote", r.RemoteAddr)
		writeUnauthorized(w, "invalid credentials")
		return
	}

	ttl := s.cfg.GetAccessTokenTTL()
	token, err := auth.GenerateAccessToken(u, s.cfg.JWT.Secret, ttl)
	if err != nil {
		s.logger.Error("issuing access token", "username", u.Username, "error", err)
		writeInternalError(w, "failed to issue token")
		return
	}

	s.logger.Info("api token issued", "username", u.Username, "role", u.Role)
	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(ttl.Seconds()),
		Role:        u.Role,
	})
}

// authenticate resolves an optional bearer token into the request's user.
// A request without Authorization passes through anonymous; a malformed or
// unverifiable token is rejected with 401.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			writeUnauthorized(w, "authorization must be a bearer token")
			return
		}
		claims, err := auth.ParseToken(token, s.cfg.JWT.Secret)
		if err != nil {
			writeUnauthorized(w, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyUser, claims.User())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireUser rejects requests that authenticate did not attach a user to.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := userFromContext(r.Context()); !ok {
			writeUnauthorized(w, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// userFromContext returns the token's user, if the request carried one.
func userFromContext(ctx context.Context) (auth.User, bool) {
	u, ok := ctx.Value(ctxKeyUser).(auth.User)
	return u, ok
}
