package services

import (
	"context"

	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/apperrors"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/models"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/repository"
)

// TreeIntegrityEngine guards structural operations on folder trees, the only
// true tree in the model. It is stateless: every method reads through the
// store it is handed, so when called inside a transaction it validates
// against current state, never a pre-fetched snapshot.
type TreeIntegrityEngine struct{}

func NewTreeIntegrityEngine() *TreeIntegrityEngine {
	return &TreeIntegrityEngine{}
}

// ValidateCreate checks that a declared parent folder exists and belongs to
// the same bot the new folder is created under.
func (e *TreeIntegrityEngine) ValidateCreate(ctx context.Context, s repository.Store, botID int64, parentFolderID *int64) error {
	if parentFolderID == nil {
		return nil
	}

	res, err := s.GetResourceByID(ctx, models.KindFolder, *parentFolderID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return apperrors.NotFound("parent folder")
		}
		return err
	}

	if res.(*models.Folder).BotID != botID {
		return apperrors.CrossBot()
	}
	return nil
}

// ValidateMove checks a re-parenting request and returns the validated new
// parent, or nil when the folder moves to the root of its bot. The ancestor
// walk is bounded by the total folder count of the bot, so a malformed chain
// terminates and is reported as a cycle instead of looping forever.
func (e *TreeIntegrityEngine) ValidateMove(ctx context.Context, s repository.Store, folder *models.Folder, newParentID *int64) (*models.Folder, error) {
	if newParentID == nil {
		return nil, nil
	}

	if *newParentID == folder.ID {
		return nil, apperrors.SelfParent()
	}

	res, err := s.GetResourceByID(ctx, models.KindFolder, *newParentID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, apperrors.NotFound("parent folder")
		}
		return nil, err
	}
	parent := res.(*models.Folder)

	if parent.BotID != folder.BotID {
		return nil, apperrors.CrossBot()
	}

	total, err := s.CountFolders(ctx, folder.BotID)
	if err != nil {
		return nil, err
	}

	current := parent
	for steps := 0; steps <= total; steps++ {
		if current.ID == folder.ID {
			return nil, apperrors.Cycle()
		}
		if current.ParentFolderID == nil {
			return parent, nil
		}
		next, err := s.GetResourceByID(ctx, models.KindFolder, *current.ParentFolderID)
		if err != nil {
			return nil, err
		}
		current = next.(*models.Folder)
	}

	// Walk exceeded the node count: the existing chain is already cyclic
	return nil, apperrors.Cycle()
}

// ValidateDelete guards hard deletion: a folder with child folders cannot be
// physically removed. Soft delete has no structural precondition.
func (e *TreeIntegrityEngine) ValidateDelete(ctx context.Context, s repository.Store, folderID int64, hardDelete bool) error {
	if !hardDelete {
		return nil
	}

	count, err := s.CountChildren(ctx, models.KindFolder, folderID)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.HasDependents("folder has child folders")
	}
	return nil
}
