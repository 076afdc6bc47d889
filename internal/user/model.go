package user

import "gorm.io/gorm"

// User owns reports. The password column stores a bcrypt hash, never the
// plain text.
type User struct {
	gorm.Model
	Username string `json:"username" gorm:"size:100;uniqueIndex;not null"`
	Password string `json:"-" gorm:"not null"`
}

// Migrate creates the user table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{})
}
