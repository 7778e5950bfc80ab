/*
auth.go - Login, session tokens, and the authentication middleware

PURPOSE:
  Issues HMAC-signed JWTs on login and turns a Bearer token back into the
  access.Actor every handler consumes. Passwords are stored as bcrypt
  hashes; the raw password never leaves this file.

CLAIMS:
  sub   user id
  role  canonical role string (normalized at login time)
  eid   linked employee id, may be empty
  did   department id, may be empty

FAILURE MODE:
  Login failures are uniformly 401 "invalid credentials" whether the email
  is unknown or the password wrong; the two cases are indistinguishable to
  a caller.

SEE ALSO:
  - access/policy.go: the Actor consumed downstream
  - server.go:        mounts RequireAuth on the protected routes
*/
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/warp/hr-engine/access"
	"github.com/warp/hr-engine/hr"
)

type actorContextKey struct{}

// ActorFrom extracts the authenticated actor placed by RequireAuth.
func ActorFrom(ctx context.Context) (access.Actor, bool) {
	a, ok := ctx.Value(actorContextKey{}).(access.Actor)
	return a, ok
}

// sessionClaims is the JWT payload.
type sessionClaims struct {
	Role         string `json:"role"`
	EmployeeID   string `json:"eid,omitempty"`
	DepartmentID string `json:"did,omitempty"`
	jwt.RegisteredClaims
}

// Auth issues and verifies session tokens.
type Auth struct {
	secret []byte
	ttl    time.Duration

	// Overridable in tests.
	now func() time.Time
}

func NewAuth(secret string, ttl time.Duration) *Auth {
	return &Auth{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// IssueToken signs a session token for the user.
func (a *Auth) IssueToken(u hr.User) (string, error) {
	now := a.now()
	claims := sessionClaims{
		Role:         string(access.NormalizeRole(string(u.Role))),
		EmployeeID:   u.EmployeeID,
		DepartmentID: u.DepartmentID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// VerifyToken parses and validates a token, returning the actor it encodes.
func (a *Auth) VerifyToken(tokenString string) (access.Actor, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return access.Actor{}, errors.New("invalid token")
	}
	return access.Actor{
		UserID:       claims.Subject,
		Role:         access.NormalizeRole(claims.Role),
		EmployeeID:   claims.EmployeeID,
		DepartmentID: claims.DepartmentID,
	}, nil
}

// RequireAuth rejects requests without a valid Bearer token and stores the
// decoded actor in the request context.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token", nil)
			return
		}
		actor, err := a.VerifyToken(tokenString)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token", nil)
			return
		}
		ctx := context.WithValue(r.Context(), actorContextKey{}, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Login authenticates email/password and returns a session token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required", nil)
		return
	}

	u, err := h.Store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}

	token, err := h.Auth.IssueToken(u)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token", nil)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: token, User: toUserDTO(u)})
}

// HashPassword is the single place passwords are hashed; used by the user
// handlers and seed tooling.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
