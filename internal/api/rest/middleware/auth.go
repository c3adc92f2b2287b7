// Package middleware provides various middleware functionality.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/localan/shortener/internal/config"
)

// AdminCookieName carries the admin session token for browser clients;
// API clients send the same token as a bearer header.
const AdminCookieName = "admin_token"

const adminSubject = "admin"

// Authenticator issues and verifies admin session tokens backed by the
// single shared admin credential.
type Authenticator struct {
	cfg *config.SecretConfig
}

// NewAuthenticator initializes a new authenticator.
func NewAuthenticator(cfg *config.SecretConfig) *Authenticator {
	return &Authenticator{cfg: cfg}
}

// VerifyPassword checks the submitted admin password. A configured bcrypt
// hash takes precedence over the plain-text credential.
func (a *Authenticator) VerifyPassword(password string) bool {
	if a.cfg.AdminPasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(a.cfg.AdminPasswordHash), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(a.cfg.AdminPassword), []byte(password)) == 1
}

// IssueToken creates a signed admin session token.
func (a *Authenticator) IssueToken() (string, error) {
	claims := &jwt.RegisteredClaims{
		Subject:   adminSubject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(a.cfg.TokenTTLHours) * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.cfg.JWTKey))
}

// RequireAdmin guards admin mutation endpoints. The session token is
// accepted from the Authorization bearer header or the admin cookie.
func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := bearerToken(r)
		if tokenString == "" {
			if cookie, err := r.Cookie(AdminCookieName); err == nil {
				tokenString = cookie.Value
			}
		}
		if tokenString == "" || !a.validToken(tokenString) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"admin authentication required"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Authenticator) validToken(tokenString string) bool {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(a.cfg.JWTKey), nil
	})
	return err == nil && token.Valid && claims.Subject == adminSubject
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
