package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	flashCookieName = "budget_flash"
	flashTTL        = 5 * time.Minute
)

type flashClaims struct {
	Message string `json:"msg"`
	jwt.RegisteredClaims
}

// FlashStore keeps a single one-shot message in a signed cookie. Reading the
// message clears it.
type FlashStore struct {
	secret []byte
	now    func() time.Time
}

func NewFlashStore(secret string) (*FlashStore, error) {
	if secret == "" {
		return nil, errors.New("flash secret is empty")
	}
	return &FlashStore{secret: []byte(secret), now: time.Now}, nil
}

// Set replaces the pending message.
func (f *FlashStore) Set(w http.ResponseWriter, message string) error {
	now := f.now()
	claims := flashClaims{
		Message: message,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(flashTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(f.secret)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(flashTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Pop returns the pending message and clears the cookie. Missing, tampered
// and expired cookies yield "".
func (f *FlashStore) Pop(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	var claims flashClaims
	_, err = jwt.ParseWithClaims(cookie.Value, &claims,
		func(*jwt.Token) (any, error) { return f.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(f.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return ""
	}
	return claims.Message
}
