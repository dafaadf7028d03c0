package dto

import (
	"time"

	"chat_backend/internal/feature/auth/domain/entity"
)

// UserResponse is the public view of a user. It never carries the password digest.
type UserResponse struct {
	ID         string    `json:"_id"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	ProfilePic string    `json:"profilePic"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// NewUserResponse builds the public view of u.
func NewUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		FullName:   u.FullName,
		Email:      u.Email,
		ProfilePic: u.ProfilePic,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// MessageResponse is the body of every non-user response.
type MessageResponse struct {
	Message string `json:"message"`
}
