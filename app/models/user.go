package models

import "time"

// User is a storefront account. Password holds the bcrypt hash and is
// never serialised, so a User can be persisted as the current session as is.
type User struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Phone     string    `gorm:"size:20" json:"phone,omitempty"`
	Address   string    `gorm:"size:500" json:"address,omitempty"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (User) TableName() string { return "users" }

// Public returns a copy without the password hash.
func (u User) Public() User {
	u.Password = ""
	return u
}

// ProfilePatch carries the fields updateProfile may change. Empty fields
// are left untouched.
type ProfilePatch struct {
	Name    string `json:"name"    validate:"nullable,max=255"`
	Phone   string `json:"phone"   validate:"nullable,digits=10"`
	Address string `json:"address" validate:"nullable,max=500"`
}

// Apply merges the non-empty fields of p into u.
func (p ProfilePatch) Apply(u User) User {
	if p.Name != "" {
		u.Name = p.Name
	}
	if p.Phone != "" {
		u.Phone = p.Phone
	}
	if p.Address != "" {
		u.Address = p.Address
	}
	return u
}
