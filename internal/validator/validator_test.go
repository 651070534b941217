package validator

import (
	"testing"

	"collabhub_backend/internal/services/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRegisterRequest(t *testing.T) {
	t.Parallel()

	v := New()

	t.Run("valid request", func(t *testing.T) {
		assert.NoError(t, v.Validate(&dto.RegisterRequest{
			Email:    "creator@example.com",
			Password: "sup3rsecret",
			Name:     "Creator",
			Role:     "YouTuber",
		}))
	})

	t.Run("errors keyed by json field name", func(t *testing.T) {
		err := v.Validate(&dto.RegisterRequest{
			Email:    "not-an-email",
			Password: "short",
			Name:     "C",
			Role:     "Astronaut",
		})
		require.Error(t, err)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Errors, "email")
		assert.Contains(t, verr.Errors, "password")
		assert.Contains(t, verr.Errors, "name")
		assert.Contains(t, verr.Errors, "role")
	})
}

func TestCustomRules(t *testing.T) {
	t.Parallel()

	v := New()

	t.Run("creator role", func(t *testing.T) {
		for _, role := range []string{"YouTuber", "Editor", "Designer", "Developer", "Writer", "Other"} {
			assert.NoError(t, v.Validate(&dto.UpdateProfileRequest{
				Name: "Creator", Role: role, Availability: "available",
			}), "role %s", role)
		}

		err := v.Validate(&dto.UpdateProfileRequest{
			Name: "Creator", Role: "Plumber", Availability: "available",
		})
		assert.Error(t, err)
	})

	t.Run("availability", func(t *testing.T) {
		err := v.Validate(&dto.UpdateProfileRequest{
			Name: "Creator", Role: "Editor", Availability: "whenever",
		})
		assert.Error(t, err)
	})

	t.Run("review rating bounds", func(t *testing.T) {
		assert.NoError(t, v.Validate(&dto.CreateReviewRequest{
			RevieweeID: "0f2d9c0a-5d3e-4b8b-9f0b-7c2f4e6a8d10",
			Rating:     5,
			Comment:    "great collab",
		}))

		err := v.Validate(&dto.CreateReviewRequest{
			RevieweeID: "0f2d9c0a-5d3e-4b8b-9f0b-7c2f4e6a8d10",
			Rating:     6,
			Comment:    "too good",
		})
		assert.Error(t, err)
	})
}
