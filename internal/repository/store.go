package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/models"
)

// Store is the ownership-chain store: it persists the four resource kinds and
// their denormalized ancestor references.
//
// Lookups accept either the internal id (numeric string) or the external code
// transparently. Mutations that must observe a consistent ancestor chain run
// inside WithTx; the Store passed to fn reads and writes within one storage
// transaction, so structural validation re-reads current state rather than a
// pre-fetched snapshot.
type Store interface {
	WithTx(ctx context.Context, fn func(Store) error) error

	GetResource(ctx context.Context, kind models.Kind, ref string) (models.Resource, error)
	GetResourceByID(ctx context.Context, kind models.Kind, id int64) (models.Resource, error)
	GetResourceByCode(ctx context.Context, kind models.Kind, code string) (models.Resource, error)
	ListResources(ctx context.Context, kind models.Kind, filter models.ListFilter) ([]models.Resource, error)

	CreateResource(ctx context.Context, res models.Resource) (models.Resource, error)
	UpdateResource(ctx context.Context, res models.Resource) (models.Resource, error)
	SetActive(ctx context.Context, kind models.Kind, id int64, active bool) (models.Resource, error)
	HardDelete(ctx context.Context, kind models.Kind, id int64) error

	// CountChildren counts direct dependents: workspaces of a hotel, bots of
	// a workspace, folders of a bot, child folders of a folder.
	CountChildren(ctx context.Context, kind models.Kind, parentID int64) (int, error)

	// Folder tree support
	CountFolders(ctx context.Context, botID int64) (int, error)
	NextSortOrder(ctx context.Context, botID int64, parentFolderID *int64) (int, error)
	UpdateFolderParent(ctx context.Context, folderID int64, parentFolderID *int64, sortOrder int) (*models.Folder, error)
	// ReorderFolders assigns contiguous sort orders 0..n-1 in slice order.
	ReorderFolders(ctx context.Context, folderIDs []int64) error
}

// UserStore persists principals, their permission overrides and hotel grants.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) (*models.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error

	AddHotelGrant(ctx context.Context, userID uuid.UUID, hotelID int64) error
	RemoveHotelGrant(ctx context.Context, userID uuid.UUID, hotelID int64) error
	HasHotelGrant(ctx context.Context, userID uuid.UUID, hotelID int64) (bool, error)
	ListHotelGrants(ctx context.Context, userID uuid.UUID) ([]int64, error)
}
