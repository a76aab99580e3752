package service

import (
	"context"
	"errors"
	"strings"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/kryptospire-dev/bot-dash/internal/common/cache"
	"github.com/kryptospire-dev/bot-dash/internal/common/config"
	apperrors "github.com/kryptospire-dev/bot-dash/internal/common/errors"
	"github.com/kryptospire-dev/bot-dash/internal/common/logger"
	"github.com/kryptospire-dev/bot-dash/internal/features/user/mapper"
	"github.com/kryptospire-dev/bot-dash/internal/features/user/models"
	"github.com/kryptospire-dev/bot-dash/internal/features/user/repository"
)

type UserService interface {
	ListUsers(ctx context.Context, q models.ListQuery) (*models.Page, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	WatchUser(ctx context.Context, id string) (<-chan models.User, error)
	MarkRewardPaid(ctx context.Context, id string) (*models.User, error)
	ReleaseReferralRewards(ctx context.Context, id string) (*models.User, error)

	Stats(ctx context.Context, refresh bool) (*models.DashboardStats, error)
	UserGrowth(ctx context.Context) ([]models.GrowthPoint, error)

	ScanDuplicates(ctx context.Context) (*models.DuplicateScan, error)
	DeleteDuplicates(ctx context.Context, token string) (*models.DuplicateDeleteResult, error)
}

type userService struct {
	repo  repository.UserRepository
	cache cache.Cache

	pageSize int
	scanTTL  time.Duration
	statsTTL time.Duration
}

func NewUserService(repo repository.UserRepository, c cache.Cache, cfg *config.Config) UserService {
	return &userService{
		repo:     repo,
		cache:    c,
		pageSize: cfg.PageSize,
		scanTTL:  cfg.ScanTTL,
		statsTTL: cfg.StatsTTL,
	}
}

// ListUsers serves one page of the users list. A non-empty search term
// selects search mode; otherwise the page comes from a native store query
// with the pending-referral condition applied as a post-filter.
func (s *userService) ListUsers(ctx context.Context, q models.ListQuery) (*models.Page, error) {
	if err := normalizeQuery(&q); err != nil {
		return nil, err
	}

	if q.Search != "" {
		return s.searchUsers(ctx, q)
	}

	native, err := s.repo.FetchPage(ctx, q, s.pageSize)
	if err != nil {
		if errors.Is(err, repository.ErrBadCursor) {
			return nil, apperrors.NewValidationError("cursor", "malformed or issued for a different sort")
		}
		return nil, apperrors.NewStoreError("fetch users page", err)
	}

	users := mapper.FromDocuments(native.Docs)
	if q.OnlyPendingReferral {
		users = filterPendingReferral(users)
	}

	// HasMore comes from the native result size, captured before the
	// post-filter: a page shrunk by the pending-referral condition is not
	// proof of end-of-data.
	return &models.Page{
		Items:      users,
		NextCursor: native.NextCursor,
		HasMore:    native.HasMore,
	}, nil
}

// searchUsers fans one term out as three independent prefix queries over the
// whole collection, unions the results by id (first occurrence wins) and
// returns everything as a single page.
func (s *userService) searchUsers(ctx context.Context, q models.ListQuery) (*models.Page, error) {
	fields := []repository.SearchField{
		repository.SearchFieldName,
		repository.SearchFieldUsername,
		repository.SearchFieldAddress,
	}

	seen := make(map[string]struct{})
	users := make([]models.User, 0)

	for _, field := range fields {
		docs, err := s.repo.SearchPrefix(ctx, field, q.Search)
		if err != nil {
			return nil, apperrors.NewStoreError("search users", err)
		}
		for _, doc := range docs {
			if _, ok := seen[doc.ID]; ok {
				continue
			}
			seen[doc.ID] = struct{}{}
			users = append(users, mapper.FromDocument(doc))
		}
	}

	if q.OnlyWithAddress {
		users = filterUsers(users, func(u *models.User) bool {
			return u.Bep20Address != ""
		})
	}
	if q.OnlyPendingStatus {
		users = filterUsers(users, func(u *models.User) bool {
			return u.RewardInfo.RewardStatus == models.RewardStatusPending && u.Bep20Address != ""
		})
	}
	if q.OnlyPendingReferral {
		users = filterPendingReferral(users)
	}

	return &models.Page{Items: users, HasMore: false}, nil
}

func (s *userService) GetUser(ctx context.Context, id string) (*models.User, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOrStore(id, "get user", err)
	}

	user := mapper.FromDocument(*doc)
	return &user, nil
}

// WatchUser opens a standing subscription to one user. The channel delivers
// the current state first, then every change, and closes when ctx is
// cancelled; no open stream outlives its request.
func (s *userService) WatchUser(ctx context.Context, id string) (<-chan models.User, error) {
	docs, err := s.repo.Watch(ctx, id)
	if err != nil {
		return nil, notFoundOrStore(id, "watch user", err)
	}

	out := make(chan models.User, 1)
	go func() {
		defer close(out)
		for doc := range docs {
			select {
			case out <- mapper.FromDocument(doc):
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// MarkRewardPaid flips the primary reward to paid and stamps the status
// change. It only mutates the status fields, no token transfer happens here.
func (s *userService) MarkRewardPaid(ctx context.Context, id string) (*models.User, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOrStore(id, "get user", err)
	}

	// Advisory only: the bot accepts addresses as free text, so flag payouts
	// aimed at something that is not a hex address.
	if doc.Bep20Address == "" || !ethcommon.IsHexAddress(doc.Bep20Address) {
		logger.Warn().
			Str("user_id", id).
			Str("bep20_address", doc.Bep20Address).
			Msg("Marking reward paid for user without a valid payout address")
	}

	if err := s.repo.MarkRewardPaid(ctx, id, time.Now()); err != nil {
		return nil, notFoundOrStore(id, "mark reward paid", err)
	}

	return s.GetUser(ctx, id)
}

// ReleaseReferralRewards marks every pending referral reward as sent by
// raising total_rewards to total_referrals.
func (s *userService) ReleaseReferralRewards(ctx context.Context, id string) (*models.User, error) {
	if err := s.repo.ReleaseReferralRewards(ctx, id, time.Now()); err != nil {
		return nil, notFoundOrStore(id, "release referral rewards", err)
	}

	return s.GetUser(ctx, id)
}

func normalizeQuery(q *models.ListQuery) error {
	q.Search = strings.TrimSpace(q.Search)

	if q.SortBy == "" {
		q.SortBy = models.SortByJoinDate
	}
	if q.SortDir == "" {
		q.SortDir = models.SortDesc
	}

	switch q.SortBy {
	case models.SortByJoinDate, models.SortByName, models.SortByMntcEarned:
	default:
		return apperrors.NewValidationError("sort_by", "must be one of join_date, name, mntc_earned")
	}
	switch q.SortDir {
	case models.SortAsc, models.SortDesc:
	default:
		return apperrors.NewValidationError("sort_dir", "must be asc or desc")
	}

	return nil
}

func filterPendingReferral(users []models.User) []models.User {
	return filterUsers(users, func(u *models.User) bool {
		return u.PendingReferral()
	})
}

func filterUsers(users []models.User, keep func(*models.User) bool) []models.User {
	out := users[:0]
	for i := range users {
		if keep(&users[i]) {
			out = append(out, users[i])
		}
	}
	return out
}

func notFoundOrStore(id, operation string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewUserNotFoundError(id)
	}
	return apperrors.NewStoreError(operation, err)
}
