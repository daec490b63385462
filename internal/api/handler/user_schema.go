package handler

import (
	"time"

	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/ports"
)

// --- Request types ---

// Role is checked by the service so an unknown value reads "invalid role".
type createUserRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role"`
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

// --- Response types ---

type userSummaryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Image     *string   `json:"image"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type createUserResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	Image        *string   `json:"image"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActiveAt time.Time `json:"lastActiveAt"`
}

type deleteUserResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	DeletedUserID string `json:"deletedUserId"`
}

type activityResponse struct {
	UserID string              `json:"userId"`
	Events []domain.AuditEvent `json:"events"`
}

func toSummaryResponse(s ports.UserSummary) userSummaryResponse {
	return userSummaryResponse{
		ID:        s.ID,
		Name:      s.Name,
		Email:     s.Email,
		Image:     optional(s.Image),
		Role:      string(s.Role),
		CreatedAt: s.CreatedAt,
	}
}

// optional renders an empty string as JSON null.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
