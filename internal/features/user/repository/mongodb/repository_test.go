package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/kryptospire-dev/bot-dash/internal/features/user/models"
)

func TestCursorPredicateAscendingLeavesMissingFieldGroup(t *testing.T) {
	// Ascending order serves the missing-field group first. A cursor stuck
	// inside that group must still reach every document carrying the field,
	// otherwise the list ends as soon as the group runs out.
	c := &pageCursor{
		SortBy:  models.SortByMntcEarned,
		SortDir: models.SortAsc,
		LastID:  "u9",
	}

	pred := cursorPredicate(c, "reward_info.mntc_earned", 1)

	assert.Equal(t, bson.M{"$or": []bson.M{
		{"reward_info.mntc_earned": nil, "_id": bson.M{"$gt": "u9"}},
		{"reward_info.mntc_earned": bson.M{"$ne": nil}},
	}}, pred)
}

func TestCursorPredicateDescendingReachesTrailingMissingFieldGroup(t *testing.T) {
	// Descending order leaves the missing-field group after every valued
	// document; a bare $lt bound never matches it.
	mntc := 5.0
	c := &pageCursor{
		SortBy:  models.SortByMntcEarned,
		SortDir: models.SortDesc,
		Mntc:    &mntc,
		LastID:  "u9",
	}

	pred := cursorPredicate(c, "reward_info.mntc_earned", -1)

	assert.Equal(t, bson.M{"$or": []bson.M{
		{"reward_info.mntc_earned": bson.M{"$lt": 5.0}},
		{"reward_info.mntc_earned": 5.0, "_id": bson.M{"$lt": "u9"}},
		{"reward_info.mntc_earned": nil},
	}}, pred)
}

func TestCursorPredicateDescendingInsideMissingFieldGroup(t *testing.T) {
	// Nothing follows the group on descending order, so the predicate only
	// advances by id within it.
	c := &pageCursor{
		SortBy:  models.SortByJoinDate,
		SortDir: models.SortDesc,
		LastID:  "u3",
	}

	pred := cursorPredicate(c, "created_at", -1)

	assert.Equal(t, bson.M{"created_at": nil, "_id": bson.M{"$lt": "u3"}}, pred)
}

func TestCursorPredicateAscendingValuedPage(t *testing.T) {
	joined := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	c := &pageCursor{
		SortBy:   models.SortByJoinDate,
		SortDir:  models.SortAsc,
		JoinedAt: &joined,
		LastID:   "u5",
	}

	pred := cursorPredicate(c, "created_at", 1)

	// The missing-field group already went by on ascending order; no extra
	// arm is needed.
	assert.Equal(t, bson.M{"$or": []bson.M{
		{"created_at": bson.M{"$gt": joined}},
		{"created_at": joined, "_id": bson.M{"$gt": "u5"}},
	}}, pred)
}

func TestCursorForKeepsEmptyNameDistinctFromMissing(t *testing.T) {
	empty := ""
	withEmpty := cursorFor(models.UserDocument{ID: "u1", FirstName: &empty},
		models.SortByName, models.SortAsc)
	withMissing := cursorFor(models.UserDocument{ID: "u2"},
		models.SortByName, models.SortAsc)

	c, err := decodeCursor(withEmpty, models.SortByName, models.SortAsc)
	require.NoError(t, err)
	assert.Equal(t, "", c.value())

	c, err = decodeCursor(withMissing, models.SortByName, models.SortAsc)
	require.NoError(t, err)
	assert.Nil(t, c.value())
}
