package event

import "time"

const UserRegisteredDestination string = "user_registered"

// UserRegisteredMessage never carries the password or the NIK, hashed or not.
type UserRegisteredMessage struct {
	UserID       int64     `json:"user_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phone_number"`
	RegisteredAt time.Time `json:"registered_at"`
}
