package domain

import (
	"context"
	"time"
)

// Role is a workspace membership role
type Role string

// Role constants, ordered by convention owner > admin > editor > viewer
const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// Allow-lists used by operations. Callers enumerate roles explicitly, there is no threshold.
var (
	AnyMemberRoles = []Role{RoleOwner, RoleAdmin, RoleEditor, RoleViewer}
	PublishRoles   = []Role{RoleOwner, RoleAdmin, RoleEditor}
	AdminRoles     = []Role{RoleOwner, RoleAdmin}
)

// Valid reports whether r is drawn from the fixed role set
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// MembershipStatus is the lifecycle state of a membership
type MembershipStatus string

const (
	MembershipActive   MembershipStatus = "active"
	MembershipInactive MembershipStatus = "inactive"
	MembershipInvited  MembershipStatus = "invited"
)

// Workspace represents a tenant workspace
type Workspace struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Membership represents a user's role within a workspace
type Membership struct {
	WorkspaceID string           `json:"workspaceId"`
	UserID      string           `json:"userId"`
	Role        Role             `json:"role"`
	Status      MembershipStatus `json:"status"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// MembershipID is the document id of the (workspace, user) membership
func MembershipID(workspaceID, userID string) string {
	return workspaceID + "_" + userID
}

// WorkspaceRepository defines the interface for workspace storage
type WorkspaceRepository interface {
	Get(ctx context.Context, id string) (*Workspace, error)
	GetMembership(ctx context.Context, workspaceID, userID string) (*Membership, error)
}
