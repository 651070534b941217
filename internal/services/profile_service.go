package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"collabhub_backend/internal/imageprocessor"
	"collabhub_backend/internal/logger"
	"collabhub_backend/internal/models"
	"collabhub_backend/internal/repositories"
	"collabhub_backend/internal/services/dto"
	"collabhub_backend/internal/storage"
	"collabhub_backend/pkg/apperrors"
)

var allowedAvatarTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

type ProfileService interface {
	// GetOwnProfile returns the caller's profile, creating an empty
	// one on first access for accounts that predate profile rows.
	GetOwnProfile(userID string) (*dto.ProfileDTO, error)

	GetProfile(userID string) (*dto.ProfileDTO, error)
	UpdateProfile(userID string, req *dto.UpdateProfileRequest) (*dto.ProfileDTO, error)
	SearchDirectory(req *dto.DirectorySearchRequest) (*dto.DirectoryResponse, error)

	// UploadAvatar normalizes the image, stores it under the user's
	// canonical avatar key and removes the previous object when the
	// format changed.
	UploadAvatar(ctx context.Context, userID, contentType string, size int64, reader io.Reader) (*dto.AvatarResponse, error)
}

type ProfileServiceImpl struct {
	profileRepo   repositories.ProfileRepository
	userRepo      repositories.UserRepository
	store         storage.Storage
	processor     *imageprocessor.Processor
	maxAvatarSize int64
}

func NewProfileService(
	profileRepo repositories.ProfileRepository,
	userRepo repositories.UserRepository,
	store storage.Storage,
	processor *imageprocessor.Processor,
	maxAvatarSize int64,
) ProfileService {
	return &ProfileServiceImpl{
		profileRepo:   profileRepo,
		userRepo:      userRepo,
		store:         store,
		processor:     processor,
		maxAvatarSize: maxAvatarSize,
	}
}

func (s *ProfileServiceImpl) GetOwnProfile(userID string) (*dto.ProfileDTO, error) {
	profile, err := s.profileRepo.FindByUserID(userID)
	if err == nil {
		d := dto.NewProfileDTO(profile)
		return &d, nil
	}
	if !errors.Is(err, repositories.ErrProfileNotFound) {
		return nil, apperrors.InternalError(err)
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, apperrors.NewNotFoundError("profile", "User not found")
	}

	name := user.Email
	if at := strings.Index(name, "@"); at > 0 {
		name = name[:at]
	}
	profile = &models.Profile{
		UserID:       user.ID,
		Email:        user.Email,
		Name:         name,
		Role:         "Other",
		Availability: models.AvailabilityAvailable,
	}
	if err := s.profileRepo.Create(profile); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.With("user_id", userID).Info("created profile on first access")

	d := dto.NewProfileDTO(profile)
	return &d, nil
}

func (s *ProfileServiceImpl) GetProfile(userID string) (*dto.ProfileDTO, error) {
	profile, err := s.profileRepo.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperrors.NewNotFoundError("profile", "Profile not found")
		}
		return nil, apperrors.InternalError(err)
	}

	d := dto.NewProfileDTO(profile)
	return &d, nil
}

func (s *ProfileServiceImpl) UpdateProfile(userID string, req *dto.UpdateProfileRequest) (*dto.ProfileDTO, error) {
	profile, err := s.profileRepo.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperrors.NewNotFoundError("profile", "Profile not found")
		}
		return nil, apperrors.InternalError(err)
	}

	profile.Name = strings.TrimSpace(req.Name)
	profile.Role = req.Role
	profile.Bio = strings.TrimSpace(req.Bio)
	profile.Availability = models.Availability(req.Availability)
	profile.SetSkills(normalizeSkills(req.Skills))
	profile.SetPortfolioLinks(req.PortfolioLinks)

	if err := s.profileRepo.Update(profile); err != nil {
		return nil, apperrors.InternalError(err)
	}

	d := dto.NewProfileDTO(profile)
	return &d, nil
}

func (s *ProfileServiceImpl) SearchDirectory(req *dto.DirectorySearchRequest) (*dto.DirectoryResponse, error) {
	if req.Role != "" && !models.IsValidCreatorRole(req.Role) {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("Unknown role filter: %s", req.Role))
	}
	if req.Availability != "" && !models.IsValidAvailability(models.Availability(req.Availability)) {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("Unknown availability filter: %s", req.Availability))
	}
	switch req.Sort {
	case "", "rating", "newest", "reviews":
	default:
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("Unknown sort: %s", req.Sort))
	}

	profiles, total, err := s.profileRepo.Search(repositories.ProfileFilter{
		Role:         req.Role,
		Availability: req.Availability,
		Search:       strings.TrimSpace(req.Search),
		Sort:         req.Sort,
		Page:         req.Page,
		PageSize:     req.PageSize,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	return &dto.DirectoryResponse{
		Profiles: dto.NewProfileDTOs(profiles),
		Pagination: dto.Pagination{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	}, nil
}

func (s *ProfileServiceImpl) UploadAvatar(ctx context.Context, userID, contentType string, size int64, reader io.Reader) (*dto.AvatarResponse, error) {
	profile, err := s.profileRepo.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperrors.NewNotFoundError("profile", "Profile not found")
		}
		return nil, apperrors.InternalError(err)
	}

	ext, ok := allowedAvatarTypes[contentType]
	if !ok {
		return nil, apperrors.ErrInvalidFileType
	}
	if size > s.maxAvatarSize {
		return nil, apperrors.ErrFileTooLarge
	}

	processed, err := s.processor.ProcessImage(reader, imageprocessor.AvatarSize, "")
	if err != nil {
		return nil, apperrors.NewBadRequestError("Unreadable image file")
	}

	path := storage.AvatarPath(userID, ext)
	if err := s.store.Save(ctx, path, processed, contentType); err != nil {
		return nil, apperrors.InternalError(err)
	}

	// drop the previous object if the extension changed
	if profile.AvatarURL != "" {
		oldExt := strings.ToLower(filepath.Ext(profile.AvatarURL))
		if oldExt != "" && oldExt != ext {
			oldPath := storage.AvatarPath(userID, oldExt)
			if err := s.store.Delete(ctx, oldPath); err != nil {
				logger.WithError(err).Warn("failed to delete previous avatar")
			}
		}
	}

	url, err := s.store.GetURL(ctx, path)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := s.profileRepo.UpdateAvatar(userID, url); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.AvatarResponse{AvatarURL: url}, nil
}

// normalizeSkills flattens comma-separated entries, trims whitespace
// and drops empty values and case-insensitive duplicates, keeping the
// original order.
func normalizeSkills(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, entry := range skills {
		for _, skill := range strings.Split(entry, ",") {
			skill = strings.TrimSpace(skill)
			if skill == "" {
				continue
			}
			key := strings.ToLower(skill)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, skill)
		}
	}
	return out
}
