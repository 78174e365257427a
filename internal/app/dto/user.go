package dto

import (
	"time"

	domainuser "staymarket/internal/domain/user"
)

type UserProfile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func MapUserProfile(u *domainuser.User) UserProfile {
	roles := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		roles = append(roles, string(role))
	}
	return UserProfile{
		ID:        string(u.ID),
		Email:     u.Email,
		Name:      u.Name,
		Phone:     u.Phone,
		Roles:     roles,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type AuthResponse struct {
	User  UserProfile `json:"user"`
	Token string      `json:"token"`
}

func NewAuthResponse(u *domainuser.User, token string) AuthResponse {
	return AuthResponse{User: MapUserProfile(u), Token: token}
}
