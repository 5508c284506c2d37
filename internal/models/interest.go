package models

import (
	"fmt"
	"time"
)

// InterestStatus is the lifecycle state of an interest.
type InterestStatus string

const (
	InterestPending   InterestStatus = "pending"
	InterestAccepted  InterestStatus = "accepted"
	InterestRejected  InterestStatus = "rejected"
	InterestWithdrawn InterestStatus = "withdrawn"
)

const (
	// InterestTTL is how long a pending interest stays actionable.
	InterestTTL = 30 * 24 * time.Hour
	// MaxInterestMessageLength is counted in runes.
	MaxInterestMessageLength = 500
)

// Valid reports whether s is a known status.
func (s InterestStatus) Valid() bool {
	switch s {
	case InterestPending, InterestAccepted, InterestRejected, InterestWithdrawn:
		return true
	}
	return false
}

// Interest is a directed expression of interest from one profile owner to another.
type Interest struct {
	ID          string         `db:"id" json:"id"`
	FromUser    string         `db:"from_user" json:"fromUser"`
	ToUser      string         `db:"to_user" json:"toUser"`
	PairKey     string         `db:"pair_key" json:"-"`
	Status      InterestStatus `db:"status" json:"status"`
	Message     string         `db:"message" json:"message,omitempty"`
	IsRead      bool           `db:"is_read" json:"isRead"`
	RespondedAt *time.Time     `db:"responded_at" json:"respondedAt,omitempty"`
	ExpiresAt   time.Time      `db:"expires_at" json:"expiresAt"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updatedAt"`
}

// Counterpart returns the other party of the interest from userID's side.
func (i Interest) Counterpart(userID string) string {
	if i.FromUser == userID {
		return i.ToUser
	}
	return i.FromUser
}

// Expired reports whether the interest is past its expiry at now.
func (i Interest) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// Actionable reports whether the interest can still be answered at now.
func (i Interest) Actionable(now time.Time) bool {
	return i.Status == InterestPending && !i.Expired(now)
}

// PairKey canonicalises an unordered pair of user ids so that (a,b) and (b,a)
// produce the same key. The lower id is length-prefixed, so ids containing
// the separators cannot make two different pairs share a key.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%s|%s", len(a), a, b)
}

// InterestFilter narrows interest listings.
type InterestFilter struct {
	Status     *InterestStatus
	Actionable bool
}

// StatusCounts aggregates interests by status for one direction.
type StatusCounts struct {
	Pending   int `json:"pending"`
	Accepted  int `json:"accepted"`
	Rejected  int `json:"rejected"`
	Withdrawn int `json:"withdrawn"`
	Total     int `json:"total"`
}

// Add records n interests in status s.
func (c *StatusCounts) Add(s InterestStatus, n int) {
	switch s {
	case InterestPending:
		c.Pending += n
	case InterestAccepted:
		c.Accepted += n
	case InterestRejected:
		c.Rejected += n
	case InterestWithdrawn:
		c.Withdrawn += n
	default:
		return
	}
	c.Total += n
}

// InterestStats is the per-user summary returned by GET /interests/stats.
type InterestStats struct {
	Sent     StatusCounts `json:"sent"`
	Received StatusCounts `json:"received"`
	Unread   int          `json:"unread"`
}
