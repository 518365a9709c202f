package model

import "gorm.io/gorm"

const (
	RoleUser  = "User"
	RoleAdmin = "Admin"
)

type User struct {
	gorm.Model
	Email    string `gorm:"type:varchar(255);uniqueIndex:uni_users_email;not null" json:"email"`
	Username string `gorm:"type:varchar(100);uniqueIndex:uni_users_username;not null" json:"username"`
	Password string `gorm:"type:varchar(255);not null" json:"-"`
	Role     string `gorm:"type:varchar(20);not null;default:'User'" json:"role"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID uint
	Role   string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
