package auth

import (
	"context"
	"errors"
	"time"

	"github.com/example/storehub/pkg/repository"
	"github.com/google/uuid"
)

var ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")

// RefreshStore mints and rotates opaque refresh tokens backed by redis.
type RefreshStore struct {
	redis *repository.RedisRepository
	ttl   time.Duration
}

func NewRefreshStore(redis *repository.RedisRepository, ttl time.Duration) *RefreshStore {
	return &RefreshStore{redis: redis, ttl: ttl}
}

func (s *RefreshStore) Mint(ctx context.Context, subjectID uint, kind string, roleID uint) (string, error) {
	token := uuid.NewString()
	sess := &repository.RefreshSession{SubjectID: subjectID, Kind: kind, RoleID: roleID}
	if err := s.redis.StoreRefreshSession(ctx, token, sess, s.ttl); err != nil {
		return "", err
	}
	return token, nil
}

// Rotate validates the presented token, revokes it and mints a replacement.
// A single refresh token is therefore usable exactly once.
func (s *RefreshStore) Rotate(ctx context.Context, token string) (*repository.RefreshSession, string, error) {
	sess, err := s.redis.GetRefreshSession(ctx, token)
	if err != nil {
		if repository.IsMiss(err) {
			return nil, "", ErrInvalidRefreshToken
		}
		return nil, "", err
	}
	if err := s.redis.DeleteRefreshSession(ctx, token); err != nil {
		return nil, "", err
	}
	next, err := s.Mint(ctx, sess.SubjectID, sess.Kind, sess.RoleID)
	if err != nil {
		return nil, "", err
	}
	return sess, next, nil
}

func (s *RefreshStore) Revoke(ctx context.Context, token string) error {
	return s.redis.DeleteRefreshSession(ctx, token)
}

func (s *RefreshStore) TTL() time.Duration {
	return s.ttl
}
