package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kryptospire-dev/bot-dash/internal/common/cache"
	apperrors "github.com/kryptospire-dev/bot-dash/internal/common/errors"
	"github.com/kryptospire-dev/bot-dash/internal/common/logger"
	"github.com/kryptospire-dev/bot-dash/internal/features/user/mapper"
	"github.com/kryptospire-dev/bot-dash/internal/features/user/models"
)

const scanKeyPrefix = "dupscan:"

// ScanDuplicates finds accounts registered with an already-used wallet
// address. The earliest registrant per address is the original and is not
// listed; everyone else is a duplicate. The duplicate id set is staged under
// the returned token so the confirmed delete acts on exactly this list.
func (s *userService) ScanDuplicates(ctx context.Context) (*models.DuplicateScan, error) {
	docs, err := s.repo.ScanAll(ctx)
	if err != nil {
		return nil, apperrors.NewStoreError("scan users for duplicates", err)
	}

	duplicates := findDuplicates(docs)
	scan := &models.DuplicateScan{Duplicates: mapper.FromDocuments(duplicates)}

	if len(duplicates) == 0 {
		return scan, nil
	}

	ids := make([]string, 0, len(duplicates))
	for _, doc := range duplicates {
		ids = append(ids, doc.ID)
	}

	token := uuid.New().String()
	if err := s.cache.Set(ctx, scanKeyPrefix+token, ids, s.scanTTL); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeCacheError, "failed to stage duplicate scan")
	}
	scan.Token = token

	logger.Info().
		Int("duplicates", len(ids)).
		Str("scan_token", token).
		Msg("Duplicate scan staged")

	return scan, nil
}

// DeleteDuplicates removes the records staged by a prior scan in one
// all-or-nothing batch. A failed batch deletes nothing and is not retried
// automatically; the operator re-runs the scan.
func (s *userService) DeleteDuplicates(ctx context.Context, token string) (*models.DuplicateDeleteResult, error) {
	if token == "" {
		return nil, apperrors.NewValidationError("token", "scan token required")
	}

	key := scanKeyPrefix + token

	var ids []string
	if err := s.cache.Get(ctx, key, &ids); err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return nil, apperrors.NewScanExpiredError(token)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeCacheError, "failed to load staged scan")
	}

	deleted, err := s.repo.DeleteAll(ctx, ids)
	if err != nil {
		return nil, apperrors.NewBatchFailedError(err, len(ids))
	}

	if err := s.cache.Delete(ctx, key); err != nil {
		logger.Warn().Err(err).Str("scan_token", token).Msg("Failed to drop consumed scan token")
	}

	logger.Info().
		Int("deleted", deleted).
		Str("scan_token", token).
		Msg("Duplicate accounts deleted")

	return &models.DuplicateDeleteResult{Deleted: deleted}, nil
}

// findDuplicates groups documents by normalized wallet address and returns
// every non-original group member. Records without an address never
// participate.
func findDuplicates(docs []models.UserDocument) []models.UserDocument {
	buckets := make(map[string][]models.UserDocument)
	order := make([]string, 0)

	for _, doc := range docs {
		addr := strings.ToLower(strings.TrimSpace(doc.Bep20Address))
		if addr == "" {
			continue
		}
		if _, ok := buckets[addr]; !ok {
			order = append(order, addr)
		}
		buckets[addr] = append(buckets[addr], doc)
	}

	var duplicates []models.UserDocument
	for _, addr := range order {
		group := buckets[addr]
		if len(group) < 2 {
			continue
		}

		// Stable sort: when no member has a timestamp the scan order decides,
		// and that order must hold until the delete is confirmed.
		sort.SliceStable(group, func(i, j int) bool {
			return createdBefore(group[i].CreatedAt, group[j].CreatedAt)
		})

		duplicates = append(duplicates, group[1:]...)
	}

	return duplicates
}

// createdBefore orders registration times: a record with a timestamp is
// always older than one without; two missing timestamps compare equal.
func createdBefore(a, b *time.Time) bool {
	switch {
	case a != nil && b != nil:
		return a.Before(*b)
	case a != nil:
		return true
	default:
		return false
	}
}
