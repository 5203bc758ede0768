package services

import (
	"context"
	"fmt"

	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/apperrors"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/models"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/repository"
)

// LifecycleManager implements soft-delete and reactivate semantics and
// blocks hard deletion while dependents exist. Soft delete is a visibility
// flag, not a structural cut: children rows are never touched.
type LifecycleManager struct {
	tree *TreeIntegrityEngine
}

func NewLifecycleManager(tree *TreeIntegrityEngine) *LifecycleManager {
	return &LifecycleManager{tree: tree}
}

// SoftDelete marks a resource inactive. Idempotent.
func (m *LifecycleManager) SoftDelete(ctx context.Context, s repository.Store, kind models.Kind, id int64) (models.Resource, error) {
	return s.SetActive(ctx, kind, id, false)
}

// Reactivate marks a resource active again. It neither requires the parent
// to be active nor force-reactivates children.
func (m *LifecycleManager) Reactivate(ctx context.Context, s repository.Store, kind models.Kind, id int64) (models.Resource, error) {
	return s.SetActive(ctx, kind, id, true)
}

// HardDelete physically removes a row after checking for zero dependents.
func (m *LifecycleManager) HardDelete(ctx context.Context, s repository.Store, kind models.Kind, id int64) error {
	if kind == models.KindFolder {
		if err := m.tree.ValidateDelete(ctx, s, id, true); err != nil {
			return err
		}
	} else {
		count, err := s.CountChildren(ctx, kind, id)
		if err != nil {
			return err
		}
		if count > 0 {
			child, _ := kind.ChildKind()
			return apperrors.HasDependents(fmt.Sprintf("%s has dependent %ss", kind, child))
		}
	}

	return s.HardDelete(ctx, kind, id)
}
