package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/ebook-storefront/internal/domain/entity"
	"github.com/oksasatya/ebook-storefront/pkg/helpers"
)

// SessionService is the mock sign-in: an email address is enough to get a
// user id and a signed session token.
type SessionService struct {
	JWT    *helpers.JWTManager
	Redis  *redis.Client
	Logger *logrus.Logger
	now    func() time.Time
}

func NewSessionService(jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger) *SessionService {
	return &SessionService{JWT: jwt, Redis: rdb, Logger: logger, now: time.Now}
}

func sessionKey(userID string) string {
	return "user:session:" + userID
}

func emailKey(email string) string {
	return "user:email:" + email
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// SignIn returns a new session and its token. The same email maps to the same
// user id for as long as Redis remembers it. When the session record cannot be
// written no token is issued, since Load would reject it.
func (s *SessionService) SignIn(ctx context.Context, email string) (*entity.Session, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, "", errors.New("email is required")
	}

	now := s.now()
	u := entity.User{ID: s.userID(ctx, email, now), Email: email, CreatedAt: now}
	sid := uuid.NewString()

	token, exp, err := s.JWT.GenerateSessionToken(u.ID, u.Email, sid)
	if err != nil {
		s.log().WithError(err).WithField("user_id", u.ID).Error("generate session token failed")
		return nil, "", err
	}

	if s.Redis != nil {
		key := sessionKey(u.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{
			"user_id":    u.ID,
			"email":      u.Email,
			"sid":        sid,
			"logged_in":  true,
			"created_at": nowRFC3339(),
		})
		pipe.Expire(ctx, key, s.JWT.TTL)
		if _, rErr := pipe.Exec(ctx); rErr != nil {
			s.log().WithError(rErr).WithField("key", key).Error("session record not written")
			return nil, "", fmt.Errorf("%w: %v", ErrSessionUnavailable, rErr)
		}
	}

	return &entity.Session{ID: sid, User: u, ExpiresAt: exp}, token, nil
}

func (s *SessionService) userID(ctx context.Context, email string, now time.Time) string {
	id := fmt.Sprintf("user_%d_%s", now.UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	if s.Redis == nil {
		return id
	}
	ok, err := s.Redis.SetNX(ctx, emailKey(email), id, 0).Result()
	if err != nil {
		s.log().WithError(err).Warn("user id mapping failed")
		return id
	}
	if ok {
		return id
	}
	existing, err := s.Redis.Get(ctx, emailKey(email)).Result()
	if err != nil || existing == "" {
		return id
	}
	return existing
}

// Load turns a session token into a session. The token must verify and, when
// Redis is configured, the recorded session id must still match.
func (s *SessionService) Load(ctx context.Context, token string) (*entity.Session, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}
	claims, err := s.JWT.ParseSessionToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	if s.Redis != nil {
		data, rErr := s.Redis.HGetAll(ctx, sessionKey(claims.UserID)).Result()
		if rErr != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			return nil, ErrInvalidSession
		}
	}

	sess := &entity.Session{
		ID:   claims.SessionID,
		User: entity.User{ID: claims.UserID, Email: claims.Email},
	}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	if claims.IssuedAt != nil {
		sess.User.CreatedAt = claims.IssuedAt.Time
	}
	return sess, nil
}

// SignOut forgets the session record. The entitlement cache is left alone.
func (s *SessionService) SignOut(ctx context.Context, sess *entity.Session) error {
	if sess == nil || s.Redis == nil {
		return nil
	}
	key := sessionKey(sess.User.ID)
	if err := s.Redis.Del(ctx, key).Err(); err != nil {
		s.log().WithError(err).WithField("key", key).Warn("session delete failed")
		return err
	}
	return nil
}

func (s *SessionService) log() *logrus.Logger {
	if s.Logger == nil {
		return logrus.StandardLogger()
	}
	return s.Logger
}
