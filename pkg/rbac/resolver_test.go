package rbac

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	names map[uint]string
	perms map[string]bool
	err   error
}

func (f *fakeStore) RoleName(_ context.Context, roleID uint) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	name, ok := f.names[roleID]
	if !ok {
		return "", ErrRoleNotFound
	}
	return name, nil
}

func (f *fakeStore) HasPermission(_ context.Context, roleID uint, resource, action string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.perms[permKey(resource, action)], nil
}

func TestCanMissingRole(t *testing.T) {
	r := NewResolver(&fakeStore{})
	err := r.Can(context.Background(), 0, "orders", "view", DefaultOptions())
	assert.ErrorIs(t, err, ErrNoRole)
	assert.NotErrorIs(t, err, ErrPermissionDenied)
}

func TestCanAdminOverride(t *testing.T) {
	store := &fakeStore{names: map[uint]string{1: "Admin"}}
	r := NewResolver(store)

	// Case-insensitive override passes without any permission rows.
	err := r.Can(context.Background(), 1, "anything", "delete", DefaultOptions())
	require.NoError(t, err)

	// With the override disabled the same role is denied.
	err = r.Can(context.Background(), 1, "anything", "delete", Options{})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestCanAllowedRoles(t *testing.T) {
	store := &fakeStore{names: map[uint]string{2: "Support"}}
	r := NewResolver(store)

	opts := DefaultOptions()
	opts.AllowedRoles = []string{"SUPPORT"}
	require.NoError(t, r.Can(context.Background(), 2, "orders", "view", opts))

	opts.AllowedRoles = []string{"manager"}
	err := r.Can(context.Background(), 2, "orders", "view", opts)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestCanPermissionLookup(t *testing.T) {
	store := &fakeStore{
		names: map[uint]string{3: "clerk"},
		perms: map[string]bool{"orders:view": true},
	}
	r := NewResolver(store)

	require.NoError(t, r.Can(context.Background(), 3, "orders", "view", DefaultOptions()))
	assert.ErrorIs(t, r.Can(context.Background(), 3, "orders", "delete", DefaultOptions()), ErrPermissionDenied)
}

func TestCanLookupFailureNeverAllows(t *testing.T) {
	boom := errors.New("db down")
	r := NewResolver(&fakeStore{err: boom})

	err := r.Can(context.Background(), 4, "orders", "view", DefaultOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrPermissionDenied)
}
