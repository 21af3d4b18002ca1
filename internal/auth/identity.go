package auth

import "context"

// Role represents a user role.
type Role string

const (
	RoleViewer     Role = "viewer"
	RoleAccountant Role = "accountant"
	RoleAdmin      Role = "admin"
)

// NormalizeRole validates and normalizes a role string.
func NormalizeRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleViewer, RoleAccountant, RoleAdmin:
		return Role(value), true
	default:
		return "", false
	}
}

// RoleAtLeast returns true when role satisfies the required role.
func RoleAtLeast(role Role, required Role) bool {
	return roleRank(role) >= roleRank(required)
}

func roleRank(role Role) int {
	switch role {
	case RoleViewer:
		return 1
	case RoleAccountant:
		return 2
	case RoleAdmin:
		return 3
	default:
		return 0
	}
}

type contextKey int

const (
	tenantIDKey contextKey = iota
	roleKey
	subjectKey
)

// WithIdentity attaches the caller identity to the context.
func WithIdentity(ctx context.Context, tenantID string, role Role, subject string) context.Context {
	ctx = context.WithValue(ctx, tenantIDKey, tenantID)
	ctx = context.WithValue(ctx, roleKey, role)
	return context.WithValue(ctx, subjectKey, subject)
}

// TenantIDFromContext returns the caller's tenant id, or "" when absent.
func TenantIDFromContext(ctx context.Context) string {
	tenantID, _ := ctx.Value(tenantIDKey).(string)
	return tenantID
}

// RoleFromContext returns the caller's role, or "" when absent.
func RoleFromContext(ctx context.Context) Role {
	role, _ := ctx.Value(roleKey).(Role)
	return role
}

// SubjectFromContext returns the caller's subject, or "" when absent.
func SubjectFromContext(ctx context.Context) string {
	subject, _ := ctx.Value(subjectKey).(string)
	return subject
}
