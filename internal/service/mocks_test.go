package service

import (
	"context"
	"time"

	"github.com/Rrens/sitepublish/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockWorkspaceRepository mocks the WorkspaceRepository interface
type MockWorkspaceRepository struct {
	mock.Mock
}

func (m *MockWorkspaceRepository) Get(ctx context.Context, id string) (*domain.Workspace, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Workspace), args.Error(1)
}

func (m *MockWorkspaceRepository) GetMembership(ctx context.Context, workspaceID, userID string) (*domain.Membership, error) {
	args := m.Called(ctx, workspaceID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Membership), args.Error(1)
}

// MockAuditLogRepository mocks the AuditLogRepository interface
type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) Create(ctx context.Context, entry *domain.AuditLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockSnapshotRepository mocks the SnapshotRepository interface
type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) Create(ctx context.Context, snapshot *domain.Snapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockSnapshotRepository) Get(ctx context.Context, id string) (*domain.Snapshot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Snapshot), args.Error(1)
}

func (m *MockSnapshotRepository) ListBySite(ctx context.Context, siteID string) ([]domain.Snapshot, error) {
	args := m.Called(ctx, siteID)
	return args.Get(0).([]domain.Snapshot), args.Error(1)
}

// MockPageRepository mocks the PageRepository interface
type MockPageRepository struct {
	mock.Mock
}

func (m *MockPageRepository) Get(ctx context.Context, id string) (*domain.Page, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page), args.Error(1)
}

func (m *MockPageRepository) ListBySite(ctx context.Context, siteID string) ([]domain.Page, error) {
	args := m.Called(ctx, siteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Page), args.Error(1)
}

func (m *MockPageRepository) SaveDraft(ctx context.Context, page *domain.Page) error {
	args := m.Called(ctx, page)
	return args.Error(0)
}

func (m *MockPageRepository) SetPublishedPointer(ctx context.Context, pageID, versionID string, publishedAt time.Time, hasUnpublishedChanges bool) error {
	args := m.Called(ctx, pageID, versionID, publishedAt, hasUnpublishedChanges)
	return args.Error(0)
}

// MockURLChecker mocks the URLChecker interface
type MockURLChecker struct {
	mock.Mock
}

func (m *MockURLChecker) Check(ctx context.Context, rawURL string) error {
	args := m.Called(ctx, rawURL)
	return args.Error(0)
}
