// Package model defines domain entities for the application.
package model

import "time"

// User represents a registered account. Users own chat boxes; ownership is
// the only authorization signal in the system.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
