package entity

import "time"

// Session is the explicit signed-in context handed to services. A nil
// *Session means the caller is anonymous.
type Session struct {
	ID        string
	User      User
	ExpiresAt time.Time
}
