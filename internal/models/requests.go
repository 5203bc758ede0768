package models

import "github.com/google/uuid"

// DTOs for API requests/responses. Parent references in request bodies are
// strings because every lookup accepts either the internal id or the
// external code.

type CreateResourceRequest struct {
	Name string `json:"name" binding:"required"`

	// Workspace
	HotelID  string                 `json:"hotel_id,omitempty"`
	Settings map[string]interface{} `json:"settings,omitempty"`

	// Bot
	WorkspaceID string `json:"workspace_id,omitempty"`
	Type        string `json:"type,omitempty"`
	Status      string `json:"status,omitempty"`

	// Folder
	BotID          string `json:"bot_id,omitempty"`
	ParentFolderID string `json:"parent_folder_id,omitempty"`
	Color          string `json:"color,omitempty"`
	Icon           string `json:"icon,omitempty"`
	Description    string `json:"description,omitempty"`
}

type UpdateResourceRequest struct {
	Name     *string                `json:"name,omitempty"`
	Settings map[string]interface{} `json:"settings,omitempty"`

	// Bot
	Type   *string `json:"type,omitempty"`
	Status *string `json:"status,omitempty"`

	// Folder (parent changes go through the move operation, never here)
	Color       *string `json:"color,omitempty"`
	Icon        *string `json:"icon,omitempty"`
	Description *string `json:"description,omitempty"`
}

// MoveFolderRequest re-parents a folder. A null parent_folder_id moves the
// folder to the root of its bot.
type MoveFolderRequest struct {
	ParentFolderID *string `json:"parent_folder_id"`
}

// ReorderFoldersRequest reassigns contiguous sort orders to a sibling set in
// the given order.
type ReorderFoldersRequest struct {
	BotID          string   `json:"bot_id" binding:"required"`
	ParentFolderID *string  `json:"parent_folder_id"`
	FolderIDs      []string `json:"folder_ids" binding:"required,min=1"`
}

// ListFilter carries the query-string filters of list endpoints. A nil
// Active defaults to active rows only.
type ListFilter struct {
	ParentID *int64
	Active   *bool
	Search   string
	Limit    int
}

// User management

type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty"`
	FullName *string `json:"full_name,omitempty"`
	Role     *string `json:"role,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

type ChangePasswordRequest struct {
	Password string `json:"password" binding:"required,min=8"`
}

type SetPermissionsRequest struct {
	Permissions []string `json:"permissions"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID       uuid.UUID `json:"id"`
		Email    string    `json:"email"`
		FullName string    `json:"full_name"`
		Role     UserRole  `json:"role"`
	} `json:"user"`
	Permissions []string `json:"permissions"`
}
