package rbac

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/storehub/pkg/models"
	"github.com/example/storehub/pkg/repository"
	"gorm.io/gorm"
)

// ErrRoleNotFound is returned when the role id references no live row.
var ErrRoleNotFound = errors.New("role not found")

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) RoleName(ctx context.Context, roleID uint) (string, error) {
	var role models.Role
	if err := s.db.WithContext(ctx).First(&role, roleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrRoleNotFound
		}
		return "", err
	}
	return role.Name, nil
}

func (s *GormStore) HasPermission(ctx context.Context, roleID uint, resource, action string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.RolePermission{}).
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Where("role_permissions.role_id = ?", roleID).
		Where("permissions.resource = ? AND permissions.action = ?", resource, action).
		Where("permissions.deleted_at IS NULL").
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// permissions returns every granted resource:action pair for the role, used
// to build cache snapshots.
func (s *GormStore) permissions(ctx context.Context, roleID uint) ([]string, error) {
	var perms []models.Permission
	err := s.db.WithContext(ctx).
		Model(&models.Permission{}).
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Find(&perms).Error
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(perms))
	for i, p := range perms {
		keys[i] = permKey(p.Resource, p.Action)
	}
	return keys, nil
}

func permKey(resource, action string) string {
	return resource + ":" + action
}

// CachedStore wraps GormStore with a short-TTL redis snapshot per role.
// Always-fresh lookups stay the default; the cache is an explicit opt-in and
// every write path that touches roles or permissions must call Flush.
type CachedStore struct {
	inner *GormStore
	redis *repository.RedisRepository
	ttl   time.Duration
}

type roleSnapshot struct {
	Name  string   `json:"name"`
	Perms []string `json:"perms"`
}

func NewCachedStore(inner *GormStore, redis *repository.RedisRepository, ttl time.Duration) *CachedStore {
	return &CachedStore{inner: inner, redis: redis, ttl: ttl}
}

func roleCacheKey(roleID uint) string {
	return fmt.Sprintf("rbac:role:%d", roleID)
}

func (s *CachedStore) snapshot(ctx context.Context, roleID uint) (*roleSnapshot, error) {
	var snap roleSnapshot
	err := s.redis.GetJSON(ctx, roleCacheKey(roleID), &snap)
	if err == nil {
		return &snap, nil
	}
	// Misses and redis trouble both fall back to the database; a cache
	// outage must never turn into a deny.
	return s.load(ctx, roleID)
}

func (s *CachedStore) load(ctx context.Context, roleID uint) (*roleSnapshot, error) {
	name, err := s.inner.RoleName(ctx, roleID)
	if err != nil {
		return nil, err
	}
	perms, err := s.inner.permissions(ctx, roleID)
	if err != nil {
		return nil, err
	}
	snap := &roleSnapshot{Name: name, Perms: perms}
	_ = s.redis.SetJSON(ctx, roleCacheKey(roleID), snap, s.ttl)
	return snap, nil
}

func (s *CachedStore) RoleName(ctx context.Context, roleID uint) (string, error) {
	snap, err := s.snapshot(ctx, roleID)
	if err != nil {
		return "", err
	}
	return snap.Name, nil
}

func (s *CachedStore) HasPermission(ctx context.Context, roleID uint, resource, action string) (bool, error) {
	snap, err := s.snapshot(ctx, roleID)
	if err != nil {
		return false, err
	}
	want := permKey(resource, action)
	for _, have := range snap.Perms {
		if have == want {
			return true, nil
		}
	}
	return false, nil
}

// Flush drops the cached snapshot for one role.
func (s *CachedStore) Flush(ctx context.Context, roleID uint) error {
	return s.redis.Del(ctx, roleCacheKey(roleID))
}

// FlushAll drops every cached role snapshot; permission writes can affect
// any number of roles, so they flush everything.
func (s *CachedStore) FlushAll(ctx context.Context) error {
	return s.redis.DelByPattern(ctx, "rbac:role:*")
}
