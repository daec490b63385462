package service

import (
	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/metrics"
)

// Action identifies an operation gated by Authorize.
type Action string

const (
	ActionListUsers    Action = "users:list"
	ActionCreateUser   Action = "users:create"
	ActionDeleteUser   Action = "users:delete"
	ActionUpdateRole   Action = "users:update_role"
	ActionViewActivity Action = "users:activity"
)

// adminActions require the ADMIN role; every other action only requires an
// authenticated caller.
var adminActions = map[Action]struct{}{
	ActionCreateUser:   {},
	ActionDeleteUser:   {},
	ActionUpdateRole:   {},
	ActionViewActivity: {},
}

// Authorize returns domain.ErrUnauthorized unless sess identifies a user
// allowed to perform action, and records the decision. UserService
// re-checks with authorize, which records nothing.
func Authorize(sess *domain.Session, action Action) error {
	if err := authorize(sess, action); err != nil {
		metrics.AuthorizationDecisionsTotal.WithLabelValues(string(action), "denied").Inc()
		return err
	}
	metrics.AuthorizationDecisionsTotal.WithLabelValues(string(action), "allowed").Inc()
	return nil
}

func authorize(sess *domain.Session, action Action) error {
	if !sess.Authenticated() {
		return domain.ErrUnauthorized
	}
	if _, ok := adminActions[action]; ok && !sess.User.IsAdmin() {
		return domain.ErrUnauthorized
	}
	return nil
}
