package domain

import "time"

// AuditAction names a recorded user-directory mutation.
type AuditAction string

const (
	AuditUserCreated AuditAction = "user.created"
	AuditUserDeleted AuditAction = "user.deleted"
	AuditRoleChanged AuditAction = "user.role_changed"
)

// AuditEvent is one entry of a user's activity trail.
type AuditEvent struct {
	UserID    string      `json:"userId"`
	ActorID   string      `json:"actorId"`
	Action    AuditAction `json:"action"`
	Role      Role        `json:"role,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
