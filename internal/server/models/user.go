// Package models defines server-side data models persisted in the database.
package models

import "time"

// DefaultProfileImageURL is assigned at registration when the caller does not
// supply an image of their own.
const DefaultProfileImageURL = "https://via.placeholder.com/150x150/cccccc/666666?text=User"

// User is an account row. Users are never hard-deleted.
type User struct {
	ID           int64
	FullName     string
	Email        string
	Phone        *string
	PasswordHash string
	// Gender holds one of "Male" or "Female" (canonical casing).
	Gender          string
	ProfileImageURL string
	CreatedAt       time.Time
}
