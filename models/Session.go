package models

import "time"

// Session is a server-side session record. Token holds a digest of the
// cookie token, never the token itself.
type Session struct {
	Token  string    `gorm:"primaryKey;type:varchar(64)"`
	Data   []byte    `gorm:"not null"`
	Expiry time.Time `gorm:"index;not null"`
}
