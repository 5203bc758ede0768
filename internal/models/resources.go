package models

import (
	"time"

	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/apperrors"
)

// Kind identifies one of the four resource kinds of the ownership chain.
type Kind string

const (
	KindHotel     Kind = "hotel"
	KindWorkspace Kind = "workspace"
	KindBot       Kind = "bot"
	KindFolder    Kind = "folder"
)

// ParseKind converts a route parameter into a Kind
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindHotel, KindWorkspace, KindBot, KindFolder:
		return Kind(s), nil
	default:
		return "", apperrors.Validation("kind", "unknown resource kind: "+s)
	}
}

// ChildKind returns the kind owned by k, if any
func (k Kind) ChildKind() (Kind, bool) {
	switch k {
	case KindHotel:
		return KindWorkspace, true
	case KindWorkspace:
		return KindBot, true
	case KindBot:
		return KindFolder, true
	default:
		return "", false
	}
}

// ParentKind returns the owning kind of k, if any
func (k Kind) ParentKind() (Kind, bool) {
	switch k {
	case KindWorkspace:
		return KindHotel, true
	case KindBot:
		return KindWorkspace, true
	case KindFolder:
		return KindBot, true
	default:
		return "", false
	}
}

// Resource is the capability shared by the four kinds. OwnerID is the id of
// the resource one level up in the chain; OwningHotelID is the root tenant
// the resource belongs to (a hotel owns itself).
type Resource interface {
	GetID() int64
	GetCode() string
	GetName() string
	IsActive() bool
	ResourceKind() Kind
	OwnerID() (int64, bool)
	OwningHotelID() int64
}

type BotType string

const (
	BotTypeChatbot     BotType = "CHATBOT"
	BotTypeAutomation  BotType = "AUTOMATION"
	BotTypeWebhook     BotType = "WEBHOOK"
	BotTypeScheduler   BotType = "SCHEDULER"
	BotTypeIntegration BotType = "INTEGRATION"
)

func ParseBotType(s string) (BotType, error) {
	switch BotType(s) {
	case BotTypeChatbot, BotTypeAutomation, BotTypeWebhook, BotTypeScheduler, BotTypeIntegration:
		return BotType(s), nil
	default:
		return "", apperrors.Validation("type", "invalid bot type: "+s)
	}
}

type BotStatus string

const (
	BotStatusActive   BotStatus = "ACTIVE"
	BotStatusInactive BotStatus = "INACTIVE"
	BotStatusDraft    BotStatus = "DRAFT"
	BotStatusError    BotStatus = "ERROR"
)

func ParseBotStatus(s string) (BotStatus, error) {
	switch BotStatus(s) {
	case BotStatusActive, BotStatusInactive, BotStatusDraft, BotStatusError:
		return BotStatus(s), nil
	default:
		return "", apperrors.Validation("status", "invalid bot status: "+s)
	}
}

// Hotel is the root tenant of the ownership chain
type Hotel struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (h *Hotel) GetID() int64          { return h.ID }
func (h *Hotel) GetCode() string       { return h.Code }
func (h *Hotel) GetName() string       { return h.Name }
func (h *Hotel) IsActive() bool        { return h.Active }
func (h *Hotel) ResourceKind() Kind    { return KindHotel }
func (h *Hotel) OwnerID() (int64, bool) { return 0, false }
func (h *Hotel) OwningHotelID() int64  { return h.ID }

// Workspace is owned by exactly one hotel. HotelCode is the denormalized
// external code of the owning hotel, written atomically with HotelID.
type Workspace struct {
	ID        int64                  `json:"id"`
	Code      string                 `json:"code"`
	Name      string                 `json:"name"`
	HotelID   int64                  `json:"hotel_id"`
	HotelCode string                 `json:"hotel_code"`
	Settings  map[string]interface{} `json:"settings,omitempty"`
	Active    bool                   `json:"active"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

func (w *Workspace) GetID() int64           { return w.ID }
func (w *Workspace) GetCode() string        { return w.Code }
func (w *Workspace) GetName() string        { return w.Name }
func (w *Workspace) IsActive() bool         { return w.Active }
func (w *Workspace) ResourceKind() Kind     { return KindWorkspace }
func (w *Workspace) OwnerID() (int64, bool) { return w.HotelID, true }
func (w *Workspace) OwningHotelID() int64   { return w.HotelID }

// Bot is owned by exactly one workspace. HotelID is denormalized from the
// workspace and must agree with it at all times.
type Bot struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	WorkspaceID int64     `json:"workspace_id"`
	HotelID     int64     `json:"hotel_id"`
	Type        BotType   `json:"type"`
	Status      BotStatus `json:"status"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (b *Bot) GetID() int64           { return b.ID }
func (b *Bot) GetCode() string        { return b.Code }
func (b *Bot) GetName() string        { return b.Name }
func (b *Bot) IsActive() bool         { return b.Active }
func (b *Bot) ResourceKind() Kind     { return KindBot }
func (b *Bot) OwnerID() (int64, bool) { return b.WorkspaceID, true }
func (b *Bot) OwningHotelID() int64   { return b.HotelID }

// Folder is owned by exactly one bot, fixed at creation. ParentFolderID, when
// set, references another folder of the same bot; the folders of a bot form a
// forest. WorkspaceID and HotelID are denormalized from the owning bot.
type Folder struct {
	ID             int64     `json:"id"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	BotID          int64     `json:"bot_id"`
	WorkspaceID    int64     `json:"workspace_id"`
	HotelID        int64     `json:"hotel_id"`
	ParentFolderID *int64    `json:"parent_folder_id,omitempty"`
	Color          string    `json:"color,omitempty"`
	Icon           string    `json:"icon,omitempty"`
	SortOrder      int       `json:"sort_order"`
	Description    string    `json:"description,omitempty"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (f *Folder) GetID() int64           { return f.ID }
func (f *Folder) GetCode() string        { return f.Code }
func (f *Folder) GetName() string        { return f.Name }
func (f *Folder) IsActive() bool         { return f.Active }
func (f *Folder) ResourceKind() Kind     { return KindFolder }
func (f *Folder) OwnerID() (int64, bool) { return f.BotID, true }
func (f *Folder) OwningHotelID() int64   { return f.HotelID }
