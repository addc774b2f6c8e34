package service

import (
	"context"
	"errors"

	"mymemorycard.com/backend/internal/entity"
	adminDto "mymemorycard.com/backend/internal/modules/admin/dto"
	adminRepo "mymemorycard.com/backend/internal/modules/admin/repository"
	commentRepo "mymemorycard.com/backend/internal/modules/comment/repository"
	likeService "mymemorycard.com/backend/internal/modules/like/service"
	memoryRepo "mymemorycard.com/backend/internal/modules/memory/repository"
	profileRepo "mymemorycard.com/backend/internal/modules/profile/repository"
	reviewRepo "mymemorycard.com/backend/internal/modules/review/repository"
	searchDto "mymemorycard.com/backend/internal/modules/search/dto"
	searchService "mymemorycard.com/backend/internal/modules/search/service"
	userRepo "mymemorycard.com/backend/internal/modules/user/repository"
	"mymemorycard.com/backend/pkg/apperror"
	"mymemorycard.com/backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MsgInvalidPaging   = "Paramètres invalides. Page >= 1, Limit entre 1 et 100"
	MsgSelfDelete      = "Vous ne pouvez pas supprimer votre propre compte admin"
	MsgUserNotFound    = "Utilisateur non trouvé"
	MsgMemoryNotFound  = "Souvenir non trouvé"
	MsgReviewNotFound  = "Review non trouvée"
	MsgCommentNotFound = "Commentaire non trouvé"
)

type AdminService interface {
	GetStats(ctx context.Context) (*adminDto.GlobalStats, error)
	GetUsers(ctx context.Context, page, limit int) (*adminDto.UsersPage, error)
	GetUserDetails(ctx context.Context, id uuid.UUID) (*adminDto.UserDetails, error)
	DeleteUser(ctx context.Context, adminID, id uuid.UUID) (*adminDto.DeletedUser, error)
	DeleteMemory(ctx context.Context, id uuid.UUID) error
	DeleteReview(ctx context.Context, id uuid.UUID) error
	DeleteComment(ctx context.Context, id uuid.UUID) error
}

type adminService struct {
	repo          adminRepo.AdminRepository
	userRepo      userRepo.UserRepository
	statsRepo     profileRepo.StatsRepository
	memoryRepo    memoryRepo.MemoryRepository
	reviewRepo    reviewRepo.ReviewRepository
	commentRepo   commentRepo.CommentRepository
	likeService   likeService.LikeService
	searchService searchService.SearchService
}

func NewAdminService(
	repo adminRepo.AdminRepository,
	userRepo userRepo.UserRepository,
	statsRepo profileRepo.StatsRepository,
	memoryRepo memoryRepo.MemoryRepository,
	reviewRepo reviewRepo.ReviewRepository,
	commentRepo commentRepo.CommentRepository,
	likeService likeService.LikeService,
	searchService searchService.SearchService,
) AdminService {
	return &adminService{
		repo:          repo,
		userRepo:      userRepo,
		statsRepo:     statsRepo,
		memoryRepo:    memoryRepo,
		reviewRepo:    reviewRepo,
		commentRepo:   commentRepo,
		likeService:   likeService,
		searchService: searchService,
	}
}

func (s *adminService) GetStats(ctx context.Context) (*adminDto.GlobalStats, error) {
	return s.repo.GlobalStats(ctx)
}

func (s *adminService) GetUsers(ctx context.Context, page, limit int) (*adminDto.UsersPage, error) {
	if page < 1 || limit < 1 || limit > 100 {
		return nil, apperror.BadRequest(MsgInvalidPaging)
	}

	users, total, err := s.repo.ListUsers(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	res := &adminDto.UsersPage{
		Users: make([]adminDto.AdminUserResponse, 0, len(users)),
		Pagination: adminDto.UsersPagination{
			CurrentPage:  page,
			TotalPages:   int((total + int64(limit) - 1) / int64(limit)),
			TotalUsers:   total,
			UsersPerPage: limit,
		},
	}
	for i := range users {
		res.Users = append(res.Users, toAdminUser(&users[i], false))
	}
	return res, nil
}

func (s *adminService) GetUserDetails(ctx context.Context, id uuid.UUID) (*adminDto.UserDetails, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(MsgUserNotFound)
		}
		return nil, err
	}

	stats, err := s.statsRepo.GetUserStats(ctx, id)
	if err != nil {
		return nil, err
	}

	return &adminDto.UserDetails{AdminUserResponse: toAdminUser(user, true), Stats: *stats}, nil
}

func (s *adminService) DeleteUser(ctx context.Context, adminID, id uuid.UUID) (*adminDto.DeletedUser, error) {
	if adminID == id {
		return nil, apperror.BadRequest(MsgSelfDelete)
	}

	content, err := s.repo.AuthoredContent(ctx, id)
	if err != nil {
		return nil, err
	}

	deleted, err := s.repo.DeleteUserCascade(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(MsgUserNotFound)
		}
		return nil, err
	}

	// counters of the user's own content are dropped with it
	s.likeService.ForgetCounts(ctx, entity.TargetMemory, append(content.Memories, content.LikedMemories...)...)
	s.likeService.ForgetCounts(ctx, entity.TargetReview, append(content.Reviews, content.LikedReviews...)...)

	for _, memoryID := range content.Memories {
		s.searchService.DeleteAsync(searchDto.KindMemory, memoryID.String())
	}
	for _, reviewID := range content.Reviews {
		s.searchService.DeleteAsync(searchDto.KindReview, reviewID.String())
	}

	logger.Log.WithField("user_id", id).
		WithField("admin_id", adminID).
		WithField("memories", len(content.Memories)).
		WithField("reviews", len(content.Reviews)).
		Info("user deleted with all content")
	return deleted, nil
}

func (s *adminService) DeleteMemory(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.memoryRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.NotFound(MsgMemoryNotFound)
	}
	s.searchService.DeleteAsync(searchDto.KindMemory, id.String())
	return nil
}

func (s *adminService) DeleteReview(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.reviewRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.NotFound(MsgReviewNotFound)
	}
	s.searchService.DeleteAsync(searchDto.KindReview, id.String())
	return nil
}

func (s *adminService) DeleteComment(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.commentRepo.Delete(ctx, id, nil)
	if err != nil {
		return err
	}
	if !deleted {
		return apperror.NotFound(MsgCommentNotFound)
	}
	return nil
}

func toAdminUser(u *entity.User, withBanner bool) adminDto.AdminUserResponse {
	res := adminDto.AdminUserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		Bio:       u.Bio,
		AvatarURL: u.AvatarURL,
		Exp:       u.Exp,
		Level:     u.Level,
		CreatedAt: u.CreatedAt,
	}
	if withBanner {
		res.BannerURL = u.BannerURL
	}
	return res
}
