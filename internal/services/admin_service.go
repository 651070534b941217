package services

import (
	"errors"

	"collabhub_backend/internal/models"
	"collabhub_backend/internal/repositories"
	"collabhub_backend/internal/services/dto"
	"collabhub_backend/pkg/apperrors"
)

type AdminService interface {
	GetStats() (*dto.PlatformStats, error)
	ListUsers(page, pageSize int) (*dto.AdminUserListResponse, error)

	SetFeatured(userID string, featured bool) error
	SetVerified(userID string, verified bool) error
	SetPremium(userID string, premium bool) error

	// UpdateRole promotes or demotes a user. Admins cannot change
	// their own role.
	UpdateRole(actorID, userID string, role models.UserRole) error

	// DeleteUser removes the account and all of its data. Admins
	// cannot delete themselves.
	DeleteUser(actorID, userID string) error
}

type AdminServiceImpl struct {
	userRepo     repositories.UserRepository
	profileRepo  repositories.ProfileRepository
	messageRepo  repositories.MessageRepository
	reviewRepo   repositories.ReviewRepository
	subRepo      repositories.SubscriptionRepository
	premiumPrice float64
}

func NewAdminService(
	userRepo repositories.UserRepository,
	profileRepo repositories.ProfileRepository,
	messageRepo repositories.MessageRepository,
	reviewRepo repositories.ReviewRepository,
	subRepo repositories.SubscriptionRepository,
	premiumPrice float64,
) AdminService {
	return &AdminServiceImpl{
		userRepo:     userRepo,
		profileRepo:  profileRepo,
		messageRepo:  messageRepo,
		reviewRepo:   reviewRepo,
		subRepo:      subRepo,
		premiumPrice: premiumPrice,
	}
}

func (s *AdminServiceImpl) GetStats() (*dto.PlatformStats, error) {
	stats := &dto.PlatformStats{}

	var err error
	if stats.TotalUsers, err = s.userRepo.CountAll(); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if stats.TotalProfiles, err = s.profileRepo.CountAll(); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if stats.PremiumProfiles, err = s.profileRepo.CountPremium(); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if stats.FeaturedProfiles, err = s.profileRepo.CountFeatured(); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if stats.ActiveSubscriptions, err = s.subRepo.CountActive(); err != nil {
		return nil, apperrors.InternalError(err)
	}
	stats.MonthlyRevenue = float64(stats.ActiveSubscriptions) * s.premiumPrice
	if stats.TotalMessages, err = s.messageRepo.CountAll(); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if stats.TotalReviews, err = s.reviewRepo.CountAll(); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if stats.PendingReviews, err = s.reviewRepo.CountPending(); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return stats, nil
}

func (s *AdminServiceImpl) ListUsers(page, pageSize int) (*dto.AdminUserListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	users, err := s.userRepo.FindAll(pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	total, err := s.userRepo.CountAll()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	out := make([]dto.AdminUserDTO, 0, len(users))
	for i := range users {
		entry := dto.AdminUserDTO{User: dto.NewUserDTO(&users[i])}
		if users[i].Profile != nil {
			p := dto.NewProfileDTO(users[i].Profile)
			entry.Profile = &p
		}
		out = append(out, entry)
	}

	return &dto.AdminUserListResponse{
		Users: out,
		Pagination: dto.Pagination{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	}, nil
}

func (s *AdminServiceImpl) SetFeatured(userID string, featured bool) error {
	return s.setProfileFlag(func() error { return s.profileRepo.SetFeatured(userID, featured) })
}

func (s *AdminServiceImpl) SetVerified(userID string, verified bool) error {
	return s.setProfileFlag(func() error { return s.profileRepo.SetVerified(userID, verified) })
}

func (s *AdminServiceImpl) SetPremium(userID string, premium bool) error {
	return s.setProfileFlag(func() error { return s.profileRepo.SetPremium(userID, premium) })
}

func (s *AdminServiceImpl) setProfileFlag(apply func() error) error {
	if err := apply(); err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return apperrors.NewNotFoundError("admin", "Profile not found")
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *AdminServiceImpl) UpdateRole(actorID, userID string, role models.UserRole) error {
	if actorID == userID {
		return apperrors.ErrCannotModifySelf
	}

	if err := s.userRepo.UpdateRole(userID, role); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.NewNotFoundError("admin", "User not found")
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *AdminServiceImpl) DeleteUser(actorID, userID string) error {
	if actorID == userID {
		return apperrors.ErrCannotModifySelf
	}

	if err := s.userRepo.DeleteCascade(userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.NewNotFoundError("admin", "User not found")
		}
		return apperrors.InternalError(err)
	}
	return nil
}
