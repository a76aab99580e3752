package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/kryptospire-dev/bot-dash/internal/common/errors"
	"github.com/kryptospire-dev/bot-dash/internal/features/user/models"
	"github.com/kryptospire-dev/bot-dash/internal/features/user/repository"
)

func TestListUsersHasMoreIgnoresPostFilter(t *testing.T) {
	// A full native page whose post-filtered result shrinks below the page
	// size must still report more data.
	repo := &fakeRepo{
		pageFn: func(_ models.ListQuery, pageSize int) (*repository.NativePage, error) {
			docs := make([]models.UserDocument, pageSize)
			for i := range docs {
				docs[i] = models.UserDocument{
					ID: fmt.Sprintf("u%02d", i),
					// Only every third user has a pending referral.
					ReferralStats: &models.ReferralStatsDocument{
						TotalReferrals: i,
						TotalRewards:   i - i%3,
					},
				}
			}
			return &repository.NativePage{Docs: docs, NextCursor: "next", HasMore: true}, nil
		},
	}
	svc := newTestService(repo, newFakeCache())

	page, err := svc.ListUsers(context.Background(), models.ListQuery{OnlyPendingReferral: true})
	require.NoError(t, err)

	assert.Less(t, len(page.Items), 30)
	assert.True(t, page.HasMore)
	assert.Equal(t, "next", page.NextCursor)

	for _, u := range page.Items {
		assert.True(t, u.PendingReferral())
	}
}

func TestListUsersSearchModeIsSinglePage(t *testing.T) {
	repo := &fakeRepo{docs: []models.UserDocument{
		{ID: "u1", FirstName: strPtr("Alice"), Username: "wonder"},
		{ID: "u2", FirstName: strPtr("Bob"), Username: "alison"},
		{ID: "u3", FirstName: strPtr("Carol"), Bep20Address: "0xali"},
		{ID: "u4", FirstName: strPtr("Dave")},
	}}
	svc := newTestService(repo, newFakeCache())

	page, err := svc.ListUsers(context.Background(), models.ListQuery{Search: "ali"})
	require.NoError(t, err)

	// Union over name, username and address; one page, never a cursor.
	assert.False(t, page.HasMore)
	assert.Empty(t, page.NextCursor)

	ids := make([]string, 0, len(page.Items))
	for _, u := range page.Items {
		ids = append(ids, u.ID)
	}
	assert.ElementsMatch(t, []string{"u2", "u3"}, ids)
}

func TestListUsersSearchUnionFirstOccurrenceWins(t *testing.T) {
	// u1 matches by name and by username; it appears once.
	repo := &fakeRepo{docs: []models.UserDocument{
		{ID: "u1", FirstName: strPtr("ali"), Username: "ali_bot"},
	}}
	svc := newTestService(repo, newFakeCache())

	page, err := svc.ListUsers(context.Background(), models.ListQuery{Search: "ali"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "u1", page.Items[0].ID)
}

func TestListUsersSearchAppliesBooleanPostFilters(t *testing.T) {
	repo := &fakeRepo{docs: []models.UserDocument{
		{ID: "u1", FirstName: strPtr("ali one")},
		{ID: "u2", FirstName: strPtr("ali two"), Bep20Address: "0xaa"},
		{ID: "u3", FirstName: strPtr("ali three"), Bep20Address: "0xbb",
			RewardInfo: &models.RewardInfoDocument{RewardStatus: "pending"}},
	}}
	svc := newTestService(repo, newFakeCache())

	page, err := svc.ListUsers(context.Background(), models.ListQuery{
		Search:            "ali",
		OnlyPendingStatus: true,
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "u3", page.Items[0].ID)
}

func TestListUsersRejectsUnknownSort(t *testing.T) {
	svc := newTestService(&fakeRepo{}, newFakeCache())

	_, err := svc.ListUsers(context.Background(), models.ListQuery{SortBy: "last_seen"})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)
}

func TestGetUserNotFound(t *testing.T) {
	svc := newTestService(&fakeRepo{}, newFakeCache())

	_, err := svc.GetUser(context.Background(), "missing")
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeUserNotFound, appErr.Code)
}

func TestMarkRewardPaid(t *testing.T) {
	repo := &fakeRepo{docs: []models.UserDocument{
		{ID: "u1", Bep20Address: "0x8ba1f109551bD432803012645Ac136ddd64DBA72"},
	}}
	svc := newTestService(repo, newFakeCache())

	user, err := svc.MarkRewardPaid(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, models.RewardStatusPaid, user.RewardInfo.RewardStatus)
}

func TestReleaseReferralRewardsClearsPending(t *testing.T) {
	repo := &fakeRepo{docs: []models.UserDocument{
		{ID: "u1", ReferralStats: &models.ReferralStatsDocument{TotalReferrals: 5, TotalRewards: 2}},
	}}
	svc := newTestService(repo, newFakeCache())

	user, err := svc.ReleaseReferralRewards(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, 5, user.ReferralStats.TotalRewards)
	assert.False(t, user.PendingReferral())
}
