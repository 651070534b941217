package services

import (
	"testing"

	"collabhub_backend/internal/models"
	"collabhub_backend/internal/repositories"
	"collabhub_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdminUserRepo struct {
	repositories.UserRepository
	roles   map[string]models.UserRole
	deleted []string
}

func (f *fakeAdminUserRepo) UpdateRole(userID string, role models.UserRole) error {
	if _, ok := f.roles[userID]; !ok {
		return repositories.ErrUserNotFound
	}
	f.roles[userID] = role
	return nil
}

func (f *fakeAdminUserRepo) DeleteCascade(userID string) error {
	if _, ok := f.roles[userID]; !ok {
		return repositories.ErrUserNotFound
	}
	delete(f.roles, userID)
	f.deleted = append(f.deleted, userID)
	return nil
}

type fakeFlagProfileRepo struct {
	repositories.ProfileRepository
	featured map[string]bool
}

func (f *fakeFlagProfileRepo) SetFeatured(userID string, featured bool) error {
	if f.featured == nil {
		return repositories.ErrProfileNotFound
	}
	f.featured[userID] = featured
	return nil
}

func TestAdminUserManagement(t *testing.T) {
	t.Parallel()

	newService := func() (*fakeAdminUserRepo, AdminService) {
		userRepo := &fakeAdminUserRepo{roles: map[string]models.UserRole{
			"admin-1": models.UserRoleAdmin,
			"user-1":  models.UserRoleUser,
		}}
		return userRepo, NewAdminService(userRepo, nil, nil, nil, nil, 9.99)
	}

	t.Run("promotes a user", func(t *testing.T) {
		userRepo, svc := newService()
		require.NoError(t, svc.UpdateRole("admin-1", "user-1", models.UserRoleAdmin))
		assert.Equal(t, models.UserRoleAdmin, userRepo.roles["user-1"])
	})

	t.Run("admins cannot change their own role", func(t *testing.T) {
		_, svc := newService()
		err := svc.UpdateRole("admin-1", "admin-1", models.UserRoleUser)
		assert.ErrorIs(t, err, apperrors.ErrCannotModifySelf)
	})

	t.Run("deletes a user with cascade", func(t *testing.T) {
		userRepo, svc := newService()
		require.NoError(t, svc.DeleteUser("admin-1", "user-1"))
		assert.Equal(t, []string{"user-1"}, userRepo.deleted)
	})

	t.Run("admins cannot delete themselves", func(t *testing.T) {
		_, svc := newService()
		err := svc.DeleteUser("admin-1", "admin-1")
		assert.ErrorIs(t, err, apperrors.ErrCannotModifySelf)
	})

	t.Run("unknown user surfaces not found", func(t *testing.T) {
		_, svc := newService()
		assert.Error(t, svc.UpdateRole("admin-1", "ghost", models.UserRoleUser))
		assert.Error(t, svc.DeleteUser("admin-1", "ghost"))
	})
}

func TestAdminProfileFlags(t *testing.T) {
	t.Parallel()

	t.Run("toggles featured", func(t *testing.T) {
		profileRepo := &fakeFlagProfileRepo{featured: map[string]bool{}}
		svc := NewAdminService(nil, profileRepo, nil, nil, nil, 9.99)

		require.NoError(t, svc.SetFeatured("user-1", true))
		assert.True(t, profileRepo.featured["user-1"])

		require.NoError(t, svc.SetFeatured("user-1", false))
		assert.False(t, profileRepo.featured["user-1"])
	})

	t.Run("missing profile surfaces not found", func(t *testing.T) {
		svc := NewAdminService(nil, &fakeFlagProfileRepo{}, nil, nil, nil, 9.99)
		assert.Error(t, svc.SetFeatured("ghost", true))
	})
}
