package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kryptospire-dev/bot-dash/internal/features/user/models"
	"github.com/kryptospire-dev/bot-dash/internal/features/user/repository"
)

func TestCursorRoundTrip(t *testing.T) {
	joined := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	name := "Alice"
	doc := models.UserDocument{
		ID:        "u42",
		FirstName: &name,
		CreatedAt: &joined,
		RewardInfo: &models.RewardInfoDocument{
			MntcEarned: 12.5,
		},
	}

	cases := []struct {
		sortBy models.SortBy
		value  interface{}
	}{
		{models.SortByJoinDate, joined},
		{models.SortByName, "Alice"},
		{models.SortByMntcEarned, 12.5},
	}

	for _, tc := range cases {
		t.Run(string(tc.sortBy), func(t *testing.T) {
			token := cursorFor(doc, tc.sortBy, models.SortDesc)
			require.NotEmpty(t, token)

			c, err := decodeCursor(token, tc.sortBy, models.SortDesc)
			require.NoError(t, err)

			assert.Equal(t, "u42", c.LastID)
			assert.Equal(t, tc.value, c.value())
		})
	}
}

func TestCursorMissingSortValue(t *testing.T) {
	// A last document without the sort field produces a cursor whose value
	// is nil, which places it in the missing-field region of the order.
	token := cursorFor(models.UserDocument{ID: "u7"}, models.SortByName, models.SortAsc)

	c, err := decodeCursor(token, models.SortByName, models.SortAsc)
	require.NoError(t, err)

	assert.Equal(t, "u7", c.LastID)
	assert.Nil(t, c.value())
}

func TestDecodeCursorRejectsForeignTokens(t *testing.T) {
	joined := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	token := cursorFor(models.UserDocument{ID: "u1", CreatedAt: &joined},
		models.SortByJoinDate, models.SortDesc)

	cases := []struct {
		name    string
		token   string
		sortBy  models.SortBy
		sortDir models.SortDir
	}{
		{"not base64", "%%%", models.SortByJoinDate, models.SortDesc},
		{"not json", "bm90LWpzb24", models.SortByJoinDate, models.SortDesc},
		{"different sort field", token, models.SortByName, models.SortDesc},
		{"different direction", token, models.SortByJoinDate, models.SortAsc},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := decodeCursor(tc.token, tc.sortBy, tc.sortDir)
			assert.ErrorIs(t, err, repository.ErrBadCursor)
		})
	}
}
