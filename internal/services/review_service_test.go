package services

import (
	"fmt"
	"testing"

	"collabhub_backend/internal/models"
	"collabhub_backend/internal/repositories"
	"collabhub_backend/internal/services/dto"
	"collabhub_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReviewRepo struct {
	repositories.ReviewRepository
	reviews []*models.Review
	nextID  int
}

func (f *fakeReviewRepo) Create(review *models.Review) error {
	for _, r := range f.reviews {
		if r.ReviewerID == review.ReviewerID && r.RevieweeID == review.RevieweeID {
			return repositories.ErrReviewAlreadyExists
		}
	}
	f.nextID++
	review.ID = fmt.Sprintf("rev-%d", f.nextID)
	f.reviews = append(f.reviews, review)
	return nil
}

func (f *fakeReviewRepo) FindApprovedForUser(revieweeID string, limit, offset int) ([]models.Review, int64, error) {
	var out []models.Review
	for _, r := range f.reviews {
		if r.RevieweeID == revieweeID && r.IsApproved {
			out = append(out, *r)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeReviewRepo) FindPending(limit, offset int) ([]models.Review, int64, error) {
	var out []models.Review
	for _, r := range f.reviews {
		if !r.IsApproved {
			out = append(out, *r)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeReviewRepo) Approve(reviewID string) (*models.Review, error) {
	for _, r := range f.reviews {
		if r.ID == reviewID {
			r.IsApproved = true
			return r, nil
		}
	}
	return nil, repositories.ErrReviewNotFound
}

func (f *fakeReviewRepo) Delete(reviewID string) error {
	for i, r := range f.reviews {
		if r.ID == reviewID {
			f.reviews = append(f.reviews[:i], f.reviews[i+1:]...)
			return nil
		}
	}
	return repositories.ErrReviewNotFound
}

func newReviewFixture() (*fakeReviewRepo, ReviewService) {
	reviewRepo := &fakeReviewRepo{}
	profileRepo := newFakeProfileRepo(
		&models.Profile{UserID: "alice", Name: "Alice", Email: "alice@example.com"},
		&models.Profile{UserID: "bob", Name: "Bob", Email: "bob@example.com"},
	)
	return reviewRepo, NewReviewService(reviewRepo, profileRepo, nil)
}

func TestReviewCreate(t *testing.T) {
	t.Parallel()

	t.Run("lands unapproved", func(t *testing.T) {
		_, svc := newReviewFixture()

		review, err := svc.Create("alice", &dto.CreateReviewRequest{
			RevieweeID: "bob",
			Rating:     5,
			Comment:    "  great editor  ",
		})
		require.NoError(t, err)
		assert.False(t, review.IsApproved)
		assert.Equal(t, "great editor", review.Comment)
	})

	t.Run("self-review is rejected", func(t *testing.T) {
		_, svc := newReviewFixture()
		_, err := svc.Create("alice", &dto.CreateReviewRequest{RevieweeID: "alice", Rating: 5, Comment: "me!"})
		assert.ErrorIs(t, err, apperrors.ErrSelfReviewNotAllowed)
	})

	t.Run("rating outside 1-5 is rejected", func(t *testing.T) {
		_, svc := newReviewFixture()
		for _, rating := range []int{0, 6, -1} {
			_, err := svc.Create("alice", &dto.CreateReviewRequest{RevieweeID: "bob", Rating: rating, Comment: "meh"})
			assert.ErrorIs(t, err, apperrors.ErrInvalidReviewRating, "rating %d", rating)
		}
	})

	t.Run("one review per reviewer and reviewee pair", func(t *testing.T) {
		_, svc := newReviewFixture()

		_, err := svc.Create("alice", &dto.CreateReviewRequest{RevieweeID: "bob", Rating: 4, Comment: "good"})
		require.NoError(t, err)

		_, err = svc.Create("alice", &dto.CreateReviewRequest{RevieweeID: "bob", Rating: 5, Comment: "changed my mind"})
		assert.ErrorIs(t, err, apperrors.ErrDuplicateReview)
	})

	t.Run("unknown reviewee is rejected", func(t *testing.T) {
		_, svc := newReviewFixture()
		_, err := svc.Create("alice", &dto.CreateReviewRequest{RevieweeID: "ghost", Rating: 3, Comment: "who?"})
		assert.Error(t, err)
	})
}

func TestReviewModeration(t *testing.T) {
	t.Parallel()

	t.Run("pending reviews stay off the profile until approved", func(t *testing.T) {
		_, svc := newReviewFixture()

		created, err := svc.Create("alice", &dto.CreateReviewRequest{RevieweeID: "bob", Rating: 5, Comment: "solid work"})
		require.NoError(t, err)

		visible, err := svc.ListForUser("bob", 20, 0)
		require.NoError(t, err)
		assert.Empty(t, visible.Reviews)

		pending, err := svc.ListPending(20, 0)
		require.NoError(t, err)
		require.Len(t, pending.Reviews, 1)

		approved, err := svc.Approve(created.ID)
		require.NoError(t, err)
		assert.True(t, approved.IsApproved)

		visible, err = svc.ListForUser("bob", 20, 0)
		require.NoError(t, err)
		require.Len(t, visible.Reviews, 1)
		assert.Equal(t, "solid work", visible.Reviews[0].Comment)
	})

	t.Run("reject removes the review", func(t *testing.T) {
		reviewRepo, svc := newReviewFixture()

		created, err := svc.Create("alice", &dto.CreateReviewRequest{RevieweeID: "bob", Rating: 1, Comment: "spam"})
		require.NoError(t, err)

		require.NoError(t, svc.Reject(created.ID))
		assert.Empty(t, reviewRepo.reviews)
	})

	t.Run("approving a missing review errors", func(t *testing.T) {
		_, svc := newReviewFixture()
		_, err := svc.Approve("rev-missing")
		assert.Error(t, err)
	})
}
