package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/apperrors"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/cache"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/logger"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/metrics"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/models"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/rbac"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/repository"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/utils"
)

const resourceCodeCacheTTL = 24 * time.Hour

// ResourceService is the composition root for resource operations. Every
// mutation runs the same sequence: authorize the principal, validate tree
// invariants, mutate the store inside one transaction, then apply lifecycle
// side effects. The principal is an explicit parameter on every call.
type ResourceService struct {
	store     repository.Store
	users     repository.UserStore
	evaluator *rbac.Evaluator
	tree      *TreeIntegrityEngine
	lifecycle *LifecycleManager
	cache     *cache.Client // optional, nil disables caching
}

func NewResourceService(
	store repository.Store,
	users repository.UserStore,
	evaluator *rbac.Evaluator,
	cacheClient *cache.Client,
) *ResourceService {
	tree := NewTreeIntegrityEngine()
	return &ResourceService{
		store:     store,
		users:     users,
		evaluator: evaluator,
		tree:      tree,
		lifecycle: NewLifecycleManager(tree),
		cache:     cacheClient,
	}
}

func (s *ResourceService) deny(token rbac.Token) error {
	metrics.RecordAuthorizationDenied(string(token))
	return apperrors.Forbidden()
}

// authorizeOn gates a mutation on a target resource's ownership chain
func (s *ResourceService) authorizeOn(ctx context.Context, principal *models.User, token rbac.Token, res models.Resource) error {
	ok, err := s.evaluator.AuthorizeOnResource(ctx, principal, token, res)
	if err != nil {
		return apperrors.Storage("failed to evaluate authorization", err)
	}
	if !ok {
		return s.deny(token)
	}
	return nil
}

// resolve looks a resource up by internal id or external code, going through
// the code cache when one is configured. Cache failures fall back to the
// store and are logged, never surfaced.
func (s *ResourceService) resolve(ctx context.Context, store repository.Store, kind models.Kind, ref string) (models.Resource, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, apperrors.Validation("id", "resource reference required")
	}

	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return store.GetResourceByID(ctx, kind, id)
	}

	if s.cache != nil {
		if id, err := s.cache.GetResourceID(ctx, string(kind), ref); err == nil {
			if res, err := store.GetResourceByID(ctx, kind, id); err == nil {
				return res, nil
			}
			// Stale mapping, fall through to the code lookup
		}
	}

	res, err := store.GetResourceByCode(ctx, kind, ref)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetResourceID(ctx, string(kind), ref, res.GetID(), resourceCodeCacheTTL); err != nil {
			logger.Get().Warn("failed to cache resource code", zap.String("kind", string(kind)), zap.Error(err))
		}
	}
	return res, nil
}

// generateUniqueCode mirrors the uniqueness retry loop used for externally
// visible codes: regenerate on collision, give up after ten attempts.
func (s *ResourceService) generateUniqueCode(ctx context.Context, store repository.Store, kind models.Kind) (string, error) {
	for attempts := 0; attempts < 10; attempts++ {
		code := utils.GenerateResourceCode()
		_, err := store.GetResourceByCode(ctx, kind, code)
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", apperrors.Storage("failed to generate a unique code after 10 attempts", nil)
}

// List returns resources of a kind. A nil active filter defaults to active
// rows only; direct fetch by identifier is not affected by this default.
func (s *ResourceService) List(ctx context.Context, principal *models.User, kind models.Kind, filter models.ListFilter) ([]models.Resource, error) {
	if !s.evaluator.Authorize(principal, rbac.ViewToken(kind)) {
		return nil, s.deny(rbac.ViewToken(kind))
	}

	if filter.Active == nil {
		active := true
		filter.Active = &active
	}
	return s.store.ListResources(ctx, kind, filter)
}

// ResolveRef translates an id-or-code reference into the internal id. Used
// by handlers that accept parent references in query parameters.
func (s *ResourceService) ResolveRef(ctx context.Context, kind models.Kind, ref string) (int64, error) {
	res, err := s.resolve(ctx, s.store, kind, ref)
	if err != nil {
		return 0, err
	}
	return res.GetID(), nil
}

// Get fetches a single resource by internal id or external code. Soft
// deleted rows and rows under inactive ancestors are still returned.
func (s *ResourceService) Get(ctx context.Context, principal *models.User, kind models.Kind, ref string) (models.Resource, error) {
	if !s.evaluator.Authorize(principal, rbac.ViewToken(kind)) {
		return nil, s.deny(rbac.ViewToken(kind))
	}
	return s.resolve(ctx, s.store, kind, ref)
}

// Create creates a resource of the given kind under its declared parent
func (s *ResourceService) Create(ctx context.Context, principal *models.User, kind models.Kind, req *models.CreateResourceRequest) (models.Resource, error) {
	token := rbac.ManageToken(kind)
	if !s.evaluator.Authorize(principal, token) {
		return nil, s.deny(token)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.Validation("name", "name is required")
	}

	var created models.Resource
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		switch kind {
		case models.KindHotel:
			created, err = s.createHotel(ctx, tx, name)
		case models.KindWorkspace:
			created, err = s.createWorkspace(ctx, tx, principal, name, req)
		case models.KindBot:
			created, err = s.createBot(ctx, tx, principal, name, req)
		default:
			created, err = s.createFolder(ctx, tx, principal, name, req)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	// A non-SUPER_ADMIN creator needs a hotel grant to keep managing the
	// hotel they just created.
	if kind == models.KindHotel && principal.Role != models.RoleSuperAdmin {
		if err := s.users.AddHotelGrant(ctx, principal.ID, created.GetID()); err != nil {
			logger.Get().Error("failed to grant creator access to new hotel",
				zap.Int64("hotel_id", created.GetID()), zap.Error(err))
		}
		s.invalidateUser(ctx, principal.ID.String())
	}

	metrics.RecordResourceOperation(string(kind), "create")
	return created, nil
}

func (s *ResourceService) createHotel(ctx context.Context, tx repository.Store, name string) (models.Resource, error) {
	code, err := s.generateUniqueCode(ctx, tx, models.KindHotel)
	if err != nil {
		return nil, err
	}
	return tx.CreateResource(ctx, &models.Hotel{Code: code, Name: name, Active: true})
}

func (s *ResourceService) createWorkspace(ctx context.Context, tx repository.Store, principal *models.User, name string, req *models.CreateResourceRequest) (models.Resource, error) {
	if req.HotelID == "" {
		return nil, apperrors.Validation("hotel_id", "hotel_id is required")
	}

	hotelRes, err := s.resolve(ctx, tx, models.KindHotel, req.HotelID)
	if err != nil {
		return nil, err
	}
	hotel := hotelRes.(*models.Hotel)

	if err := s.authorizeOn(ctx, principal, rbac.ManageWorkspaces, hotel); err != nil {
		return nil, err
	}

	code, err := s.generateUniqueCode(ctx, tx, models.KindWorkspace)
	if err != nil {
		return nil, err
	}

	return tx.CreateResource(ctx, &models.Workspace{
		Code:      code,
		Name:      name,
		HotelID:   hotel.ID,
		HotelCode: hotel.Code,
		Settings:  req.Settings,
		Active:    true,
	})
}

func (s *ResourceService) createBot(ctx context.Context, tx repository.Store, principal *models.User, name string, req *models.CreateResourceRequest) (models.Resource, error) {
	if req.WorkspaceID == "" {
		return nil, apperrors.Validation("workspace_id", "workspace_id is required")
	}
	if req.Type == "" {
		return nil, apperrors.Validation("type", "type is required")
	}

	botType, err := models.ParseBotType(req.Type)
	if err != nil {
		return nil, err
	}

	status := models.BotStatusDraft
	if req.Status != "" {
		if status, err = models.ParseBotStatus(req.Status); err != nil {
			return nil, err
		}
	}

	wsRes, err := s.resolve(ctx, tx, models.KindWorkspace, req.WorkspaceID)
	if err != nil {
		return nil, err
	}
	workspace := wsRes.(*models.Workspace)

	if err := s.authorizeOn(ctx, principal, rbac.ManageBots, workspace); err != nil {
		return nil, err
	}

	code, err := s.generateUniqueCode(ctx, tx, models.KindBot)
	if err != nil {
		return nil, err
	}

	// hotel_id is denormalized from the workspace inside the same
	// transaction, so the pair can never disagree.
	return tx.CreateResource(ctx, &models.Bot{
		Code:        code,
		Name:        name,
		WorkspaceID: workspace.ID,
		HotelID:     workspace.HotelID,
		Type:        botType,
		Status:      status,
		Active:      true,
	})
}

func (s *ResourceService) createFolder(ctx context.Context, tx repository.Store, principal *models.User, name string, req *models.CreateResourceRequest) (models.Resource, error) {
	if req.BotID == "" {
		return nil, apperrors.Validation("bot_id", "bot_id is required")
	}

	botRes, err := s.resolve(ctx, tx, models.KindBot, req.BotID)
	if err != nil {
		return nil, err
	}
	bot := botRes.(*models.Bot)

	if err := s.authorizeOn(ctx, principal, rbac.ManageFolders, bot); err != nil {
		return nil, err
	}

	var parentID *int64
	if req.ParentFolderID != "" {
		parentRes, err := s.resolve(ctx, tx, models.KindFolder, req.ParentFolderID)
		if err != nil {
			if apperrors.IsKind(err, apperrors.KindNotFound) {
				return nil, apperrors.NotFound("parent folder")
			}
			return nil, err
		}
		id := parentRes.GetID()
		parentID = &id
	}

	if err := s.tree.ValidateCreate(ctx, tx, bot.ID, parentID); err != nil {
		return nil, err
	}

	sortOrder, err := tx.NextSortOrder(ctx, bot.ID, parentID)
	if err != nil {
		return nil, err
	}

	code, err := s.generateUniqueCode(ctx, tx, models.KindFolder)
	if err != nil {
		return nil, err
	}

	return tx.CreateResource(ctx, &models.Folder{
		Code:           code,
		Name:           name,
		BotID:          bot.ID,
		WorkspaceID:    bot.WorkspaceID,
		HotelID:        bot.HotelID,
		ParentFolderID: parentID,
		Color:          req.Color,
		Icon:           req.Icon,
		SortOrder:      sortOrder,
		Description:    req.Description,
		Active:         true,
	})
}

// Update applies a partial update. Ownership references never change here:
// folder re-parenting goes through Move, activity through Delete/Activate.
func (s *ResourceService) Update(ctx context.Context, principal *models.User, kind models.Kind, ref string, req *models.UpdateResourceRequest) (models.Resource, error) {
	token := rbac.ManageToken(kind)
	if !s.evaluator.Authorize(principal, token) {
		return nil, s.deny(token)
	}

	var updated models.Resource
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		res, err := s.resolve(ctx, tx, kind, ref)
		if err != nil {
			return err
		}

		if err := s.authorizeOn(ctx, principal, token, res); err != nil {
			return err
		}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return apperrors.Validation("name", "name cannot be empty")
			}
			setName(res, name)
		}

		switch r := res.(type) {
		case *models.Workspace:
			if req.Settings != nil {
				r.Settings = req.Settings
			}
		case *models.Bot:
			if req.Type != nil {
				t, err := models.ParseBotType(*req.Type)
				if err != nil {
					return err
				}
				r.Type = t
			}
			if req.Status != nil {
				st, err := models.ParseBotStatus(*req.Status)
				if err != nil {
					return err
				}
				r.Status = st
			}
		case *models.Folder:
			if req.Color != nil {
				r.Color = *req.Color
			}
			if req.Icon != nil {
				r.Icon = *req.Icon
			}
			if req.Description != nil {
				r.Description = *req.Description
			}
		}

		updated, err = tx.UpdateResource(ctx, res)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordResourceOperation(string(kind), "update")
	return updated, nil
}

func setName(res models.Resource, name string) {
	switch r := res.(type) {
	case *models.Hotel:
		r.Name = name
	case *models.Workspace:
		r.Name = name
	case *models.Bot:
		r.Name = name
	case *models.Folder:
		r.Name = name
	}
}

// Move re-parents a folder within its bot. The folder row and the candidate
// ancestor chain are re-read inside the write transaction.
func (s *ResourceService) Move(ctx context.Context, principal *models.User, ref string, req *models.MoveFolderRequest) (*models.Folder, error) {
	if !s.evaluator.Authorize(principal, rbac.ManageFolders) {
		return nil, s.deny(rbac.ManageFolders)
	}

	var moved *models.Folder
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		res, err := s.resolve(ctx, tx, models.KindFolder, ref)
		if err != nil {
			return err
		}
		folder := res.(*models.Folder)

		if err := s.authorizeOn(ctx, principal, rbac.ManageFolders, folder); err != nil {
			return err
		}

		var newParentID *int64
		if req.ParentFolderID != nil && *req.ParentFolderID != "" {
			parentRes, err := s.resolve(ctx, tx, models.KindFolder, *req.ParentFolderID)
			if err != nil {
				if apperrors.IsKind(err, apperrors.KindNotFound) {
					return apperrors.NotFound("parent folder")
				}
				return err
			}
			id := parentRes.GetID()
			newParentID = &id
		}

		if _, err := s.tree.ValidateMove(ctx, tx, folder, newParentID); err != nil {
			return err
		}

		sortOrder, err := tx.NextSortOrder(ctx, folder.BotID, newParentID)
		if err != nil {
			return err
		}

		moved, err = tx.UpdateFolderParent(ctx, folder.ID, newParentID, sortOrder)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordResourceOperation(string(models.KindFolder), "move")
	return moved, nil
}

// Reorder reassigns contiguous sort orders to a sibling set in the caller
// provided order. Every folder must belong to the given bot and share the
// given parent.
func (s *ResourceService) Reorder(ctx context.Context, principal *models.User, req *models.ReorderFoldersRequest) error {
	if !s.evaluator.Authorize(principal, rbac.ManageFolders) {
		return s.deny(rbac.ManageFolders)
	}

	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		botRes, err := s.resolve(ctx, tx, models.KindBot, req.BotID)
		if err != nil {
			return err
		}
		bot := botRes.(*models.Bot)

		if err := s.authorizeOn(ctx, principal, rbac.ManageFolders, bot); err != nil {
			return err
		}

		var parentID *int64
		if req.ParentFolderID != nil && *req.ParentFolderID != "" {
			parentRes, err := s.resolve(ctx, tx, models.KindFolder, *req.ParentFolderID)
			if err != nil {
				return err
			}
			id := parentRes.GetID()
			parentID = &id
		}

		folderIDs := make([]int64, 0, len(req.FolderIDs))
		for _, fref := range req.FolderIDs {
			res, err := s.resolve(ctx, tx, models.KindFolder, fref)
			if err != nil {
				return err
			}
			folder := res.(*models.Folder)
			if folder.BotID != bot.ID {
				return apperrors.CrossBot()
			}
			if !sameParentRef(folder.ParentFolderID, parentID) {
				return apperrors.Validation("folder_ids", "folders must share the given parent")
			}
			folderIDs = append(folderIDs, folder.ID)
		}

		return tx.ReorderFolders(ctx, folderIDs)
	})
	if err != nil {
		return err
	}

	metrics.RecordResourceOperation(string(models.KindFolder), "reorder")
	return nil
}

func sameParentRef(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Delete soft deletes by default; hard deletion physically removes the row
// after the dependents check. Soft delete returns the updated resource,
// hard delete returns nil.
func (s *ResourceService) Delete(ctx context.Context, principal *models.User, kind models.Kind, ref string, hard bool) (models.Resource, error) {
	token := rbac.DeleteToken(kind)
	if !s.evaluator.Authorize(principal, token) {
		return nil, s.deny(token)
	}

	var deleted models.Resource
	var removedCode string
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		res, err := s.resolve(ctx, tx, kind, ref)
		if err != nil {
			return err
		}

		if err := s.authorizeOn(ctx, principal, token, res); err != nil {
			return err
		}

		if hard {
			removedCode = res.GetCode()
			return s.lifecycle.HardDelete(ctx, tx, kind, res.GetID())
		}

		deleted, err = s.lifecycle.SoftDelete(ctx, tx, kind, res.GetID())
		return err
	})
	if err != nil {
		return nil, err
	}

	if hard && s.cache != nil && removedCode != "" {
		if err := s.cache.InvalidateResource(ctx, string(kind), removedCode); err != nil {
			logger.Get().Warn("failed to invalidate resource cache", zap.Error(err))
		}
	}

	operation := "soft_delete"
	if hard {
		operation = "hard_delete"
	}
	metrics.RecordResourceOperation(string(kind), operation)
	return deleted, nil
}

// Activate reverses a soft delete
func (s *ResourceService) Activate(ctx context.Context, principal *models.User, kind models.Kind, ref string) (models.Resource, error) {
	token := rbac.ManageToken(kind)
	if !s.evaluator.Authorize(principal, token) {
		return nil, s.deny(token)
	}

	var activated models.Resource
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		res, err := s.resolve(ctx, tx, kind, ref)
		if err != nil {
			return err
		}

		if err := s.authorizeOn(ctx, principal, token, res); err != nil {
			return err
		}

		activated, err = s.lifecycle.Reactivate(ctx, tx, kind, res.GetID())
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordResourceOperation(string(kind), "activate")
	return activated, nil
}

func (s *ResourceService) invalidateUser(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUser(ctx, userID); err != nil {
		logger.Get().Warn("failed to invalidate user cache", zap.String("user_id", userID), zap.Error(err))
	}
}
