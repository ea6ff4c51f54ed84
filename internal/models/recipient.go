// internal/models/recipient.go
package models

// User is a registered platform user, the default notification recipient.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
