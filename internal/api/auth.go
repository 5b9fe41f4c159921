package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"

	"github.com/UkralStul/academic-feed/internal/app"
	"github.com/UkralStul/academic-feed/internal/domain"
)

const issuer = "academic-feed"

// Tokens выпускает и проверяет JWT. sub - id пользователя, jti - id сессии.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl}
}

func (t *Tokens) Issue(sess app.Session) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        sess.ID,
		Subject:   sess.User.ID,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *Tokens) Parse(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.ID == "" || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// sessionFrom возвращает сессию, положенную authMiddleware.
func sessionFrom(ctx context.Context) app.Session {
	sess, _ := app.SessionFrom(ctx)
	return sess
}

// bearer достает токен из заголовка Authorization или параметра token
// (браузер не умеет передавать заголовки при открытии websocket).
func bearer(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		if !strings.HasPrefix(header, "Bearer ") {
			return "", errors.New("invalid authorization format")
		}
		return strings.TrimPrefix(header, "Bearer "), nil
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token, nil
	}
	return "", errors.New("authorization header required")
}

func (api *API) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := bearer(r)
		if err != nil {
			writeError(w, r, domain.NewAppError(domain.CodeUnauthorized, err.Error(), nil))
			return
		}

		claims, err := api.tokens.Parse(tokenString)
		if err != nil {
			log.Debugf("[authMiddleware][from:%v] %v", r.RemoteAddr, err)
			writeError(w, r, domain.ErrUnauthorized)
			return
		}

		// Сессия должна существовать: выход из системы отзывает токен.
		sess, err := api.svc.Session(r.Context(), claims.ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if sess.User.ID != claims.Subject {
			writeError(w, r, fmt.Errorf("session %s subject mismatch: %w", claims.ID, domain.ErrUnauthorized))
			return
		}

		next.ServeHTTP(w, r.WithContext(app.WithSession(r.Context(), sess)))
	})
}
