package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type contextKey string

const sessionKey contextKey = "session"

// SessionCookieName is the cookie holding the signed session token.
const SessionCookieName = "chatclone_session"

const sessionMaxAge = 30 * 24 * time.Hour

// Session is the per-browser state: who is chatting and which conversation
// is open. ChatID is empty until a conversation is started or selected.
type Session struct {
	UserID string
	ChatID string
}

// Sessions signs and verifies session cookies as HS256 JWTs.
type Sessions struct {
	secret        []byte
	defaultUserID string
	secure        bool
	logger        *zap.Logger
}

func NewSessions(secret, defaultUserID string, secure bool, logger *zap.Logger) *Sessions {
	return &Sessions{
		secret:        []byte(secret),
		defaultUserID: defaultUserID,
		secure:        secure,
		logger:        logger,
	}
}

// Sign encodes sess into a token.
func (s *Sessions) Sign(sess Session) (string, error) {
	claims := jwt.MapClaims{
		"user_id": sess.UserID,
		"chat_id": sess.ChatID,
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse verifies tokenStr and decodes the session it carries.
func (s *Sessions) Parse(tokenStr string) (Session, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		return Session{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Session{}, errors.New("invalid session claims")
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return Session{}, errors.New("session without user id")
	}
	chatID, _ := claims["chat_id"].(string)

	return Session{UserID: userID, ChatID: chatID}, nil
}

// Save stores sess in the response cookie.
func (s *Sessions) Save(w http.ResponseWriter, sess Session) error {
	token, err := s.Sign(sess)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Middleware loads the session cookie into the request context. Requests
// without a valid cookie get a fresh session for the default user.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.load(r)
		if !ok {
			sess = Session{UserID: s.defaultUserID}
			if err := s.Save(w, sess); err != nil {
				s.logger.Error("failed to issue session cookie", zap.Error(err))
			}
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
	})
}

func (s *Sessions) load(r *http.Request) (Session, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return Session{}, false
	}

	sess, err := s.Parse(cookie.Value)
	if err != nil {
		s.logger.Debug("discarding invalid session cookie", zap.Error(err))
		return Session{}, false
	}
	return sess, true
}

// WithSession attaches sess to ctx.
func WithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// GetSession extracts the session from the request context.
func GetSession(ctx context.Context) Session {
	sess, _ := ctx.Value(sessionKey).(Session)
	return sess
}
