package domain

import (
	"time"

	userdomain "github.com/AlibekovAA/linkmark/internal/user/domain"
)

// Identity is the acting user resolved from a validated bearer token. It is
// passed explicitly to every service call that needs an owner.
type Identity struct {
	UserID    userdomain.ID
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

func (i Identity) Owns(ownerID userdomain.ID) bool {
	return i.UserID != "" && i.UserID == ownerID
}
