// Package rbac decides whether a role may perform an action on a resource.
// Resolution is a pure predicate over current role/permission rows: an
// admin-named role passes outright, then explicitly allowed role names, then
// the role-permission lookup.
package rbac

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoRole means the caller carried no role identifier at all,
	// distinct from holding a role that lacks the permission.
	ErrNoRole = errors.New("no role in session")

	// ErrPermissionDenied means the role exists but grants no matching
	// permission.
	ErrPermissionDenied = errors.New("permission denied")
)

const adminRoleName = "admin"

// Store supplies role names and permission lookups. The gorm-backed store
// reads live rows; the cached store serves a short-TTL snapshot.
type Store interface {
	RoleName(ctx context.Context, roleID uint) (string, error)
	HasPermission(ctx context.Context, roleID uint, resource, action string) (bool, error)
}

// Options tune a single check. The zero value is not useful; use
// DefaultOptions as the base.
type Options struct {
	// AllowedRoles pass by name, case-insensitively, without a
	// permission lookup.
	AllowedRoles []string
	// AdminOverride lets a role named "admin" pass regardless of
	// resource and action.
	AdminOverride bool
}

func DefaultOptions() Options {
	return Options{AdminOverride: true}
}

type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Can returns nil when the role may perform action on resource. A lookup
// failure is returned as-is and must be treated as deny, never allow.
func (r *Resolver) Can(ctx context.Context, roleID uint, resource, action string, opts Options) error {
	if roleID == 0 {
		return ErrNoRole
	}

	name, err := r.store.RoleName(ctx, roleID)
	if err != nil {
		return fmt.Errorf("resolve role %d: %w", roleID, err)
	}

	if opts.AdminOverride && strings.EqualFold(name, adminRoleName) {
		return nil
	}

	for _, allowed := range opts.AllowedRoles {
		if strings.EqualFold(name, allowed) {
			return nil
		}
	}

	ok, err := r.store.HasPermission(ctx, roleID, resource, action)
	if err != nil {
		return fmt.Errorf("lookup permission %s:%s for role %d: %w", resource, action, roleID, err)
	}
	if !ok {
		return ErrPermissionDenied
	}
	return nil
}
