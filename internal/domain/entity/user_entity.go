package entity

import "time"

// User is the signed-in shopper. There is no password: sign-in only
// collects a contact address and mints an identifier.
type User struct {
	ID        string
	Email     string
	CreatedAt time.Time
}
