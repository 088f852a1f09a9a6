package services

import "foodgram/internal/models"

// Caller identifies who performs an operation. The zero value is an
// anonymous caller.
type Caller struct {
	UserID  string
	IsAdmin bool
}

// Anonymous is the caller of unauthenticated requests.
var Anonymous = Caller{}

// CallerFor builds the caller for an authenticated user.
func CallerFor(user *models.User) Caller {
	return Caller{UserID: user.ID, IsAdmin: user.IsAdmin()}
}

// Authenticated reports whether the caller is a known user.
func (c Caller) Authenticated() bool {
	return c.UserID != ""
}

// CanModify reports whether the caller may change content owned by ownerID.
func (c Caller) CanModify(ownerID string) bool {
	return c.Authenticated() && (c.IsAdmin || c.UserID == ownerID)
}
