package profile

import (
	"context"
	"errors"
	"strings"

	"mymemorycard.com/backend/internal/entity"
	profileDto "mymemorycard.com/backend/internal/modules/profile/dto"
	profileRepo "mymemorycard.com/backend/internal/modules/profile/repository"
	progression "mymemorycard.com/backend/internal/modules/progression/service"
	userRepo "mymemorycard.com/backend/internal/modules/user/repository"
	userService "mymemorycard.com/backend/internal/modules/user/service"
	"mymemorycard.com/backend/pkg/apperror"
	"mymemorycard.com/backend/pkg/logger"
	"mymemorycard.com/backend/pkg/sanitize"
	"mymemorycard.com/backend/pkg/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MsgUserNotFound       = "Utilisateur non trouvé."
	MsgStorageUnavailable = "Le stockage d'images n'est pas configuré"
)

type ProfileService interface {
	GetCurrentProfile(ctx context.Context, userID uuid.UUID) (*profileDto.MeResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input profileDto.UpdateProfileInput, avatar, banner *profileDto.ImageFile) (*profileDto.MeResponse, error)
	GetPublicProfile(ctx context.Context, userID uuid.UUID, viewerID *uuid.UUID) (*profileDto.PublicProfileResponse, error)
	SearchUsers(ctx context.Context, query string, limit int) ([]profileDto.UserSearchResult, error)
	GetUserStats(ctx context.Context, userID uuid.UUID) (*profileDto.UserStatsResponse, error)
}

type profileService struct {
	repo         userRepo.UserRepository
	statsRepo    profileRepo.StatsRepository
	imageStorage storage.ImageStorage
}

// NewProfileService builds the profile service. imageStorage may be nil when uploads are disabled.
func NewProfileService(repo userRepo.UserRepository, statsRepo profileRepo.StatsRepository, imageStorage storage.ImageStorage) ProfileService {
	return &profileService{
		repo:         repo,
		statsRepo:    statsRepo,
		imageStorage: imageStorage,
	}
}

func (s *profileService) findUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(MsgUserNotFound)
		}
		return nil, err
	}
	return user, nil
}

func (s *profileService) GetCurrentProfile(ctx context.Context, userID uuid.UUID) (*profileDto.MeResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toMeResponse(user), nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID uuid.UUID, input profileDto.UpdateProfileInput, avatar, banner *profileDto.ImageFile) (*profileDto.MeResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	previousAvatar, previousBanner := user.AvatarURL, user.BannerURL

	if input.Username != nil && *input.Username != user.Username {
		if existing, err := s.repo.FindByUsername(ctx, *input.Username); err == nil && existing.ID != user.ID {
			return nil, apperror.Conflict(userService.MsgUsernameTaken)
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Username = *input.Username
	}

	if input.Bio != nil {
		user.Bio = sanitize.OptionalText(input.Bio)
	}
	if input.AvatarURL != nil {
		user.AvatarURL = optionalURL(*input.AvatarURL)
	}
	if input.BannerURL != nil {
		user.BannerURL = optionalURL(*input.BannerURL)
	}

	if avatar != nil {
		url, err := s.upload(ctx, avatar, "avatars")
		if err != nil {
			return nil, err
		}
		user.AvatarURL = &url
	}
	if banner != nil {
		url, err := s.upload(ctx, banner, "banners")
		if err != nil {
			return nil, err
		}
		user.BannerURL = &url
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if apperror.IsDuplicate(err) {
			return nil, apperror.Conflict(userService.MsgUsernameTaken)
		}
		return nil, err
	}

	if avatar != nil {
		s.deleteReplaced(ctx, previousAvatar)
	}
	if banner != nil {
		s.deleteReplaced(ctx, previousBanner)
	}

	return toMeResponse(user), nil
}

func (s *profileService) upload(ctx context.Context, file *profileDto.ImageFile, folder string) (string, error) {
	if s.imageStorage == nil {
		return "", apperror.Unavailable(MsgStorageUnavailable, nil)
	}
	url, err := s.imageStorage.UploadImage(ctx, file.Reader, folder, file.FileName)
	if err != nil {
		return "", apperror.Unavailable("Échec de l'envoi de l'image", err)
	}
	return url, nil
}

// deleteReplaced removes a superseded upload; failures only leave an orphan image.
func (s *profileService) deleteReplaced(ctx context.Context, url *string) {
	if url == nil || !strings.Contains(*url, "res.cloudinary.com") {
		return
	}
	if err := s.imageStorage.DeleteImage(ctx, *url); err != nil {
		logger.Log.WithError(err).WithField("url", *url).Warn("failed to delete replaced image")
	}
}

func (s *profileService) GetPublicProfile(ctx context.Context, userID uuid.UUID, viewerID *uuid.UUID) (*profileDto.PublicProfileResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.statsRepo.GetUserStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &profileDto.PublicProfileResponse{
		ID:             user.ID,
		Username:       user.Username,
		AvatarURL:      user.AvatarURL,
		BannerURL:      user.BannerURL,
		Bio:            user.Bio,
		CreatedAt:      user.CreatedAt,
		FollowersCount: stats.FollowersCount,
		FollowingCount: stats.FollowingCount,
		LevelStatus:    progression.GetLevelStatus(user.Exp),
	}

	if viewerID != nil && *viewerID != userID {
		following, err := s.statsRepo.IsFollowing(ctx, *viewerID, userID)
		if err != nil {
			return nil, err
		}
		profile.IsFollowing = &following
	}

	return profile, nil
}

func (s *profileService) SearchUsers(ctx context.Context, query string, limit int) ([]profileDto.UserSearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.BadRequest(`Le paramètre de recherche "q" est obligatoire`)
	}

	users, err := s.repo.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	results := make([]profileDto.UserSearchResult, 0, len(users))
	for _, u := range users {
		results = append(results, profileDto.UserSearchResult{
			ID:        u.ID,
			Username:  u.Username,
			AvatarURL: u.AvatarURL,
			Bio:       u.Bio,
			Level:     u.Level,
		})
	}
	return results, nil
}

func (s *profileService) GetUserStats(ctx context.Context, userID uuid.UUID) (*profileDto.UserStatsResponse, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.statsRepo.GetUserStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &profileDto.UserStatsResponse{
		UserID:      user.ID,
		UserStats:   *stats,
		LevelStatus: progression.GetLevelStatus(user.Exp),
	}, nil
}

func toMeResponse(user *entity.User) *profileDto.MeResponse {
	return &profileDto.MeResponse{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		AvatarURL:   user.AvatarURL,
		BannerURL:   user.BannerURL,
		Bio:         user.Bio,
		Role:        user.Role,
		CreatedAt:   user.CreatedAt,
		LevelStatus: progression.GetLevelStatus(user.Exp),
	}
}

func optionalURL(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	return &raw
}
