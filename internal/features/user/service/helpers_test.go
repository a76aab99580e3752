package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/kryptospire-dev/bot-dash/internal/common/cache"
	"github.com/kryptospire-dev/bot-dash/internal/common/config"
	"github.com/kryptospire-dev/bot-dash/internal/features/user/models"
	"github.com/kryptospire-dev/bot-dash/internal/features/user/repository"
)

// fakeRepo is an in-memory UserRepository for controller and resolver tests.
type fakeRepo struct {
	docs []models.UserDocument

	// pageFn overrides FetchPage when set.
	pageFn func(q models.ListQuery, pageSize int) (*repository.NativePage, error)

	failDelete  bool
	deleteCalls [][]string
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*models.UserDocument, error) {
	for i := range f.docs {
		if f.docs[i].ID == id {
			doc := f.docs[i]
			return &doc, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeRepo) FetchPage(_ context.Context, q models.ListQuery, pageSize int) (*repository.NativePage, error) {
	if f.pageFn != nil {
		return f.pageFn(q, pageSize)
	}

	var docs []models.UserDocument
	for _, doc := range f.docs {
		if (q.OnlyWithAddress || q.OnlyPendingStatus) && doc.Bep20Address == "" {
			continue
		}
		if q.OnlyPendingStatus {
			if doc.RewardInfo == nil || doc.RewardInfo.RewardStatus != string(models.RewardStatusPending) {
				continue
			}
		}
		docs = append(docs, doc)
		if len(docs) == pageSize {
			break
		}
	}

	return &repository.NativePage{Docs: docs, HasMore: len(docs) == pageSize}, nil
}

func (f *fakeRepo) SearchPrefix(_ context.Context, field repository.SearchField, term string) ([]models.UserDocument, error) {
	var docs []models.UserDocument
	for _, doc := range f.docs {
		var value string
		switch field {
		case repository.SearchFieldName:
			if doc.FirstName != nil {
				value = *doc.FirstName
			}
		case repository.SearchFieldUsername:
			value = doc.Username
		case repository.SearchFieldAddress:
			value = doc.Bep20Address
		}
		if strings.HasPrefix(value, term) {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (f *fakeRepo) ScanAll(_ context.Context) ([]models.UserDocument, error) {
	return append([]models.UserDocument(nil), f.docs...), nil
}

func (f *fakeRepo) MarkRewardPaid(_ context.Context, id string, at time.Time) error {
	for i := range f.docs {
		if f.docs[i].ID == id {
			if f.docs[i].RewardInfo == nil {
				f.docs[i].RewardInfo = &models.RewardInfoDocument{}
			}
			f.docs[i].RewardInfo.RewardStatus = string(models.RewardStatusPaid)
			f.docs[i].RewardInfo.StatusUpdatedAt = &at
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeRepo) ReleaseReferralRewards(_ context.Context, id string, at time.Time) error {
	for i := range f.docs {
		if f.docs[i].ID == id {
			if f.docs[i].ReferralStats == nil {
				f.docs[i].ReferralStats = &models.ReferralStatsDocument{}
			}
			f.docs[i].ReferralStats.TotalRewards = f.docs[i].ReferralStats.TotalReferrals
			f.docs[i].UpdatedAt = &at
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeRepo) DeleteAll(_ context.Context, ids []string) (int, error) {
	f.deleteCalls = append(f.deleteCalls, ids)
	if f.failDelete {
		return 0, errors.New("transaction aborted")
	}

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	kept := f.docs[:0]
	deleted := 0
	for _, doc := range f.docs {
		if _, ok := drop[doc.ID]; ok {
			deleted++
			continue
		}
		kept = append(kept, doc)
	}
	f.docs = kept

	return deleted, nil
}

func (f *fakeRepo) Watch(_ context.Context, id string) (<-chan models.UserDocument, error) {
	doc, err := f.GetByID(context.Background(), id)
	if err != nil {
		return nil, err
	}

	ch := make(chan models.UserDocument, 1)
	ch <- *doc
	close(ch)
	return ch, nil
}

// fakeCache is an in-memory Cache; TTLs are ignored.
type fakeCache struct {
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (f *fakeCache) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := f.data[key]
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = raw
	return nil
}

func (f *fakeCache) Delete(_ context.Context, key string) error {
	delete(f.data, key)
	return nil
}

func newTestService(repo *fakeRepo, c cache.Cache) UserService {
	cfg := &config.Config{}
	cfg.PageSize = 30
	cfg.ScanTTL = 15 * time.Minute
	cfg.StatsTTL = time.Minute
	return NewUserService(repo, c, cfg)
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func strPtr(s string) *string {
	return &s
}
