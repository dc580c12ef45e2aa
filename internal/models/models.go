package models

import "time"

// User represents a dating profile
type User struct {
	ID        string    `json:"id" dynamodbav:"id"`
	Name      string    `json:"name" dynamodbav:"name"`
	Email     string    `json:"email,omitempty" dynamodbav:"email"`
	Phone     string    `json:"phone,omitempty" dynamodbav:"phone"`
	Gender    string    `json:"gender,omitempty" dynamodbav:"gender"`
	City      string    `json:"city,omitempty" dynamodbav:"city"`
	Bio       string    `json:"bio,omitempty" dynamodbav:"bio"`
	PushToken *string   `json:"-" dynamodbav:"push_token,omitempty"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
}

// PublicProfile strips contact fields before a profile is shown to other users
func (u *User) PublicProfile() *User {
	return &User{
		ID:        u.ID,
		Name:      u.Name,
		Gender:    u.Gender,
		City:      u.City,
		Bio:       u.Bio,
		CreatedAt: u.CreatedAt,
	}
}

// Photo represents an image uploaded by a user
type Photo struct {
	ID         string    `json:"id" dynamodbav:"id"`
	UserID     string    `json:"user_id" dynamodbav:"user_id"`
	StorageKey string    `json:"-" dynamodbav:"storage_key"`
	URL        string    `json:"url" dynamodbav:"url"`
	Caption    *string   `json:"caption,omitempty" dynamodbav:"caption,omitempty"`
	CreatedAt  time.Time `json:"created_at" dynamodbav:"created_at"`
}
