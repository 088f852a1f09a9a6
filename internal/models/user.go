package models

import "time"

// Roles a user can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account that can author recipes.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(254)" validate:"required,email,max=254"`
	Username  string    `json:"username" gorm:"uniqueIndex;type:varchar(150)" validate:"required,min=3,max=150"`
	FirstName string    `json:"first_name" gorm:"type:varchar(150)" validate:"required,max=150"`
	LastName  string    `json:"last_name" gorm:"type:varchar(150)" validate:"required,max=150"`
	Password  string    `json:"-" gorm:"type:varchar(255)" validate:"required,min=6"` // bcrypt hash once stored
	Role      string    `json:"role" gorm:"type:varchar(20);default:user"`
	CreatedAt time.Time `json:"created_at"`
}

// IsAdmin reports whether the user may edit content owned by others.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
