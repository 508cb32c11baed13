package domain

import (
	"time"

	userdomain "github.com/AlibekovAA/linkmark/internal/user/domain"
)

type ID int64

type Bookmark struct {
	ID        ID
	Body      string
	URL       string
	ShortCode string
	Visits    int64
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    userdomain.ID
	Owner     userdomain.Summary
}

// Stat is the per-bookmark visit summary returned to an owner.
type Stat struct {
	ID        ID
	URL       string
	ShortCode string
	Visits    int64
}

type ListQuery struct {
	UserID userdomain.ID
	Search string
	Limit  int
	Offset int
}

// Visit is the outcome of a successful short code resolution.
type Visit struct {
	URL    string
	Visits int64
}
