package services

import (
	"testing"

	"collabhub_backend/internal/models"
	"collabhub_backend/internal/repositories"
	"collabhub_backend/internal/services/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// extra fakeProfileRepo methods used by the profile service tests

func (f *fakeProfileRepo) Create(profile *models.Profile) error {
	f.profiles[profile.UserID] = profile
	return nil
}

func (f *fakeProfileRepo) Update(profile *models.Profile) error {
	if _, ok := f.profiles[profile.UserID]; !ok {
		return repositories.ErrProfileNotFound
	}
	f.profiles[profile.UserID] = profile
	return nil
}

func (f *fakeProfileRepo) Search(filter repositories.ProfileFilter) ([]models.Profile, int64, error) {
	var out []models.Profile
	for _, p := range f.profiles {
		if filter.Role != "" && p.Role != filter.Role {
			continue
		}
		if filter.Availability != "" && string(p.Availability) != filter.Availability {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func newProfileFixture() (*fakeProfileRepo, *fakeUserRepo, ProfileService) {
	profileRepo := newFakeProfileRepo(
		&models.Profile{UserID: "alice", Name: "Alice", Email: "alice@example.com", Role: "Editor", Availability: models.AvailabilityAvailable},
		&models.Profile{UserID: "bob", Name: "Bob", Email: "bob@example.com", Role: "YouTuber", Availability: models.AvailabilityBusy},
	)
	userRepo := newFakeUserRepo()
	svc := NewProfileService(profileRepo, userRepo, nil, nil, 5<<20)
	return profileRepo, userRepo, svc
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()

	t.Run("trims and dedupes skills", func(t *testing.T) {
		_, _, svc := newProfileFixture()

		updated, err := svc.UpdateProfile("alice", &dto.UpdateProfileRequest{
			Name:         "  Alice A.  ",
			Role:         "Editor",
			Skills:       []string{" Premiere ", "premiere", "", "Color Grading"},
			Bio:          "cutting things since 2019",
			Availability: "busy",
		})
		require.NoError(t, err)
		assert.Equal(t, "Alice A.", updated.Name)
		assert.Equal(t, []string{"Premiere", "Color Grading"}, updated.Skills)
		assert.Equal(t, "busy", updated.Availability)
	})

	t.Run("accepts one comma-separated skills string", func(t *testing.T) {
		_, _, svc := newProfileFixture()

		updated, err := svc.UpdateProfile("alice", &dto.UpdateProfileRequest{
			Name:         "Alice",
			Role:         "Editor",
			Skills:       []string{"Premiere, After Effects , premiere"},
			Availability: "available",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"Premiere", "After Effects"}, updated.Skills)
	})

	t.Run("stores portfolio links", func(t *testing.T) {
		profileRepo, _, svc := newProfileFixture()

		_, err := svc.UpdateProfile("alice", &dto.UpdateProfileRequest{
			Name:         "Alice",
			Role:         "Editor",
			Availability: "available",
			PortfolioLinks: map[string]string{
				"youtube": "https://youtube.com/@alice",
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "https://youtube.com/@alice", profileRepo.profiles["alice"].GetPortfolioLinks()["youtube"])
	})

	t.Run("unknown profile", func(t *testing.T) {
		_, _, svc := newProfileFixture()
		_, err := svc.UpdateProfile("ghost", &dto.UpdateProfileRequest{Name: "Ghost", Role: "Other", Availability: "available"})
		assert.Error(t, err)
	})
}

func TestSearchDirectory(t *testing.T) {
	t.Parallel()

	t.Run("filters by role", func(t *testing.T) {
		_, _, svc := newProfileFixture()

		resp, err := svc.SearchDirectory(&dto.DirectorySearchRequest{Role: "Editor"})
		require.NoError(t, err)
		require.Len(t, resp.Profiles, 1)
		assert.Equal(t, "Alice", resp.Profiles[0].Name)
	})

	t.Run("filters by availability", func(t *testing.T) {
		_, _, svc := newProfileFixture()

		resp, err := svc.SearchDirectory(&dto.DirectorySearchRequest{Availability: "busy"})
		require.NoError(t, err)
		require.Len(t, resp.Profiles, 1)
		assert.Equal(t, "Bob", resp.Profiles[0].Name)
	})

	t.Run("rejects unknown filter values", func(t *testing.T) {
		_, _, svc := newProfileFixture()

		_, err := svc.SearchDirectory(&dto.DirectorySearchRequest{Role: "Astronaut"})
		assert.Error(t, err)

		_, err = svc.SearchDirectory(&dto.DirectorySearchRequest{Availability: "sometimes"})
		assert.Error(t, err)

		_, err = svc.SearchDirectory(&dto.DirectorySearchRequest{Sort: "alphabetical"})
		assert.Error(t, err)
	})

	t.Run("accepts known sort values", func(t *testing.T) {
		_, _, svc := newProfileFixture()

		for _, sort := range []string{"rating", "newest", "reviews"} {
			_, err := svc.SearchDirectory(&dto.DirectorySearchRequest{Sort: sort})
			assert.NoError(t, err)
		}
	})

	t.Run("defaults pagination", func(t *testing.T) {
		_, _, svc := newProfileFixture()

		resp, err := svc.SearchDirectory(&dto.DirectorySearchRequest{})
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Pagination.Page)
		assert.Equal(t, 20, resp.Pagination.PageSize)
		assert.Equal(t, int64(2), resp.Pagination.Total)
	})
}

func TestGetOwnProfileLazyCreate(t *testing.T) {
	t.Parallel()

	profileRepo, userRepo, svc := newProfileFixture()
	userRepo.users["legacy"] = &models.User{
		BaseModel: models.BaseModel{ID: "legacy"},
		Email:     "legacy@example.com",
	}

	profile, err := svc.GetOwnProfile("legacy")
	require.NoError(t, err)
	assert.Equal(t, "legacy", profile.UserID)
	assert.Equal(t, "Other", profile.Role)
	// name defaults to the email local part
	assert.Equal(t, "legacy", profile.Name)

	created, ok := profileRepo.profiles["legacy"]
	require.True(t, ok)
	assert.Equal(t, "legacy@example.com", created.Email)
}
