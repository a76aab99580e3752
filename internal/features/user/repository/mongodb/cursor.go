package mongodb

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/kryptospire-dev/bot-dash/internal/features/user/models"
	"github.com/kryptospire-dev/bot-dash/internal/features/user/repository"
)

// pageCursor is the decoded form of the opaque pagination token: the sort
// specification it was issued under plus the last seen sort key. Exactly one
// of the value fields is set, matching SortBy; a nil value means the last
// document had no such field.
type pageCursor struct {
	SortBy  models.SortBy  `json:"s"`
	SortDir models.SortDir `json:"d"`

	Name     *string    `json:"n,omitempty"`
	Mntc     *float64   `json:"m,omitempty"`
	JoinedAt *time.Time `json:"t,omitempty"`

	LastID string `json:"id"`
}

func (c *pageCursor) value() interface{} {
	switch c.SortBy {
	case models.SortByName:
		if c.Name != nil {
			return *c.Name
		}
	case models.SortByMntcEarned:
		if c.Mntc != nil {
			return *c.Mntc
		}
	default:
		if c.JoinedAt != nil {
			return *c.JoinedAt
		}
	}
	return nil
}

func encodeCursor(c pageCursor) string {
	data, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(data)
}

// decodeCursor parses a token and rejects it when it was issued for a
// different sort spec: a cursor only means something within the query that
// produced it.
func decodeCursor(token string, sortBy models.SortBy, sortDir models.SortDir) (*pageCursor, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, repository.ErrBadCursor
	}

	var c pageCursor
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, repository.ErrBadCursor
	}

	if c.LastID == "" || c.SortBy != sortBy || c.SortDir != sortDir {
		return nil, repository.ErrBadCursor
	}

	return &c, nil
}

// cursorFor builds the next-page token from the last document of a page.
func cursorFor(doc models.UserDocument, sortBy models.SortBy, sortDir models.SortDir) string {
	c := pageCursor{SortBy: sortBy, SortDir: sortDir, LastID: doc.ID}

	switch sortBy {
	case models.SortByName:
		// A stored empty string is a real sort value; only a missing field
		// leaves the cursor value nil.
		if doc.FirstName != nil {
			name := *doc.FirstName
			c.Name = &name
		}
	case models.SortByMntcEarned:
		if doc.RewardInfo != nil {
			mntc := doc.RewardInfo.MntcEarned
			c.Mntc = &mntc
		}
	default:
		c.JoinedAt = doc.CreatedAt
	}

	return encodeCursor(c)
}
