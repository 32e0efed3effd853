package dto

import (
	"fmt"
	"time"

	"github.com/spec-kit/nightstudy-service/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	StudentID string `json:"studentID"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LogoutRequest lets header-based clients name the pair to revoke.
type LogoutRequest struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RoleUpdateRequest accepts a role name ("ADMIN") or its number (1).
type RoleUpdateRequest struct {
	Role any `json:"role"`
}

// ParsedRole resolves the requested role.
func (r RoleUpdateRequest) ParsedRole() (domain.Role, error) {
	switch v := r.Role.(type) {
	case string:
		return domain.ParseRole(v)
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("unknown role %v", v)
		}
		role := domain.Role(int(v))
		if !role.Valid() {
			return 0, fmt.Errorf("unknown role %v", v)
		}
		return role, nil
	}
	return 0, fmt.Errorf("role is required")
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      int       `json:"role"`
	RoleName  string    `json:"roleName"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewUserResponse maps a domain user; the password hash never leaves the service.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      int(u.Role),
		RoleName:  u.Role.String(),
		CreatedAt: u.CreatedAt,
	}
}

// NewUserList maps a page of users.
func NewUserList(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}

// LoginResponse carries the account and its fresh token pair.
type LoginResponse struct {
	User   UserResponse     `json:"user"`
	Tokens domain.TokenPair `json:"tokens"`
}

// RefreshResponse carries the new access token.
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}
