package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Rrens/sitepublish/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessService_RequireRole(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		membership *domain.Membership
		repoErr    error
		allowed    []domain.Role
		wantKind   domain.ErrorKind
	}{
		{
			name:       "active editor may publish",
			membership: &domain.Membership{Role: domain.RoleEditor, Status: domain.MembershipActive},
			allowed:    domain.PublishRoles,
		},
		{
			name:     "missing membership",
			allowed:  domain.AnyMemberRoles,
			wantKind: domain.KindForbidden,
		},
		{
			name:       "inactive owner is rejected",
			membership: &domain.Membership{Role: domain.RoleOwner, Status: domain.MembershipInactive},
			allowed:    domain.AnyMemberRoles,
			wantKind:   domain.KindForbidden,
		},
		{
			name:       "invited admin is rejected",
			membership: &domain.Membership{Role: domain.RoleAdmin, Status: domain.MembershipInvited},
			allowed:    domain.AdminRoles,
			wantKind:   domain.KindForbidden,
		},
		{
			name:       "viewer outside publish roles",
			membership: &domain.Membership{Role: domain.RoleViewer, Status: domain.MembershipActive},
			allowed:    domain.PublishRoles,
			wantKind:   domain.KindForbidden,
		},
		{
			name:       "editor outside admin roles",
			membership: &domain.Membership{Role: domain.RoleEditor, Status: domain.MembershipActive},
			allowed:    domain.AdminRoles,
			wantKind:   domain.KindForbidden,
		},
		{
			name:       "unknown role",
			membership: &domain.Membership{Role: "superuser", Status: domain.MembershipActive},
			allowed:    []domain.Role{"superuser"},
			wantKind:   domain.KindForbidden,
		},
		{
			name:     "store failure",
			repoErr:  errors.New("connection refused"),
			allowed:  domain.AnyMemberRoles,
			wantKind: domain.KindInfrastructure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockWorkspaceRepository)
			if tt.membership != nil {
				repo.On("GetMembership", ctx, "ws1", "u1").Return(tt.membership, nil)
			} else {
				repo.On("GetMembership", ctx, "ws1", "u1").Return(nil, tt.repoErr)
			}

			svc := NewAccessService(repo)
			membership, err := svc.RequireRole(ctx, "ws1", "u1", tt.allowed)

			if tt.wantKind == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.membership, membership)
			} else {
				assert.Nil(t, membership)
				assert.Equal(t, tt.wantKind, domain.KindOf(err))
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestAccessService_RequireRole_NoCaller(t *testing.T) {
	repo := new(MockWorkspaceRepository)
	svc := NewAccessService(repo)

	_, err := svc.RequireRole(context.Background(), "ws1", "", domain.AnyMemberRoles)
	assert.True(t, domain.IsKind(err, domain.KindUnauthorized))
	repo.AssertNotCalled(t, "GetMembership")
}
