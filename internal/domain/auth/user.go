package auth

import "time"

type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"type:varchar(64);not null;uniqueIndex"`
	DisplayName  string    `json:"display_name" gorm:"type:varchar(120)"`
	Phone        string    `json:"phone,omitempty" gorm:"type:varchar(32)"`
	PasswordHash string    `json:"-" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
}

func (User) TableName() string { return "users" }

// Identity is the verified caller behind a request. It is produced by a Gate and
// is the only owner value domain services accept.
type Identity struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (u *User) Identity() Identity {
	name := u.DisplayName
	if name == "" {
		name = u.Username
	}
	return Identity{ID: u.ID, Name: name}
}
