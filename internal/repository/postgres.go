package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/apperrors"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/metrics"
	"github.com/osociohoteleiro/sistema-de-hoteis-sub000/internal/models"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so every query
// below runs the same way inside and outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore is the pgx-backed ownership-chain store.
type PostgresStore struct {
	pool *pgxpool.Pool // nil when this store is a transaction view
	db   querier
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, db: pool}
}

// WithTx runs fn against a transaction-scoped view of the store. Nested
// calls reuse the surrounding transaction.
func (s *PostgresStore) WithTx(ctx context.Context, fn func(Store) error) error {
	if s.pool == nil {
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return apperrors.Storage("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&PostgresStore{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return apperrors.Storage("failed to commit transaction", err)
	}
	return nil
}

func tableFor(kind models.Kind) string {
	switch kind {
	case models.KindHotel:
		return "hotels"
	case models.KindWorkspace:
		return "workspaces"
	case models.KindBot:
		return "bots"
	default:
		return "folders"
	}
}

func columnsFor(kind models.Kind) string {
	switch kind {
	case models.KindHotel:
		return "id, code, name, active, created_at, updated_at"
	case models.KindWorkspace:
		return "id, code, name, hotel_id, hotel_code, settings, active, created_at, updated_at"
	case models.KindBot:
		return "id, code, name, workspace_id, hotel_id, type, status, active, created_at, updated_at"
	default:
		return "id, code, name, bot_id, workspace_id, hotel_id, parent_folder_id, color, icon, sort_order, description, active, created_at, updated_at"
	}
}

func scanResource(kind models.Kind, row pgx.Row) (models.Resource, error) {
	switch kind {
	case models.KindHotel:
		var h models.Hotel
		if err := row.Scan(&h.ID, &h.Code, &h.Name, &h.Active, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, err
		}
		return &h, nil
	case models.KindWorkspace:
		var w models.Workspace
		if err := row.Scan(&w.ID, &w.Code, &w.Name, &w.HotelID, &w.HotelCode, &w.Settings, &w.Active, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		return &w, nil
	case models.KindBot:
		var b models.Bot
		if err := row.Scan(&b.ID, &b.Code, &b.Name, &b.WorkspaceID, &b.HotelID, &b.Type, &b.Status, &b.Active, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		return &b, nil
	default:
		var f models.Folder
		if err := row.Scan(&f.ID, &f.Code, &f.Name, &f.BotID, &f.WorkspaceID, &f.HotelID, &f.ParentFolderID, &f.Color, &f.Icon, &f.SortOrder, &f.Description, &f.Active, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		return &f, nil
	}
}

func (s *PostgresStore) wrapGetErr(kind models.Kind, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NotFound(string(kind))
	}
	return apperrors.Storage(fmt.Sprintf("failed to get %s", kind), err)
}

// GetResource accepts either the internal id or the external code
func (s *PostgresStore) GetResource(ctx context.Context, kind models.Kind, ref string) (models.Resource, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return s.GetResourceByID(ctx, kind, id)
	}
	return s.GetResourceByCode(ctx, kind, ref)
}

func (s *PostgresStore) GetResourceByID(ctx context.Context, kind models.Kind, id int64) (models.Resource, error) {
	defer metrics.TrackDBOperation("get_" + string(kind))(time.Now())

	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", columnsFor(kind), tableFor(kind))
	res, err := scanResource(kind, s.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, s.wrapGetErr(kind, err)
	}
	return res, nil
}

func (s *PostgresStore) GetResourceByCode(ctx context.Context, kind models.Kind, code string) (models.Resource, error) {
	defer metrics.TrackDBOperation("get_" + string(kind))(time.Now())

	query := fmt.Sprintf("SELECT %s FROM %s WHERE code = $1", columnsFor(kind), tableFor(kind))
	res, err := scanResource(kind, s.db.QueryRow(ctx, query, code))
	if err != nil {
		return nil, s.wrapGetErr(kind, err)
	}
	return res, nil
}

func ownerColumn(kind models.Kind) string {
	switch kind {
	case models.KindWorkspace:
		return "hotel_id"
	case models.KindBot:
		return "workspace_id"
	case models.KindFolder:
		return "bot_id"
	default:
		return ""
	}
}

func (s *PostgresStore) ListResources(ctx context.Context, kind models.Kind, filter models.ListFilter) ([]models.Resource, error) {
	defer metrics.TrackDBOperation("list_" + string(kind))(time.Now())

	var conditions []string
	var args []any

	if filter.ParentID != nil && ownerColumn(kind) != "" {
		args = append(args, *filter.ParentID)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", ownerColumn(kind), len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", len(args)))
	}

	query := fmt.Sprintf("SELECT %s FROM %s", columnsFor(kind), tableFor(kind))
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	if kind == models.KindFolder {
		query += " ORDER BY sort_order, id"
	} else {
		query += " ORDER BY id"
	}
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Storage(fmt.Sprintf("failed to list %s", kind), err)
	}
	defer rows.Close()

	var resources []models.Resource
	for rows.Next() {
		res, err := scanResource(kind, rows)
		if err != nil {
			return nil, apperrors.Storage(fmt.Sprintf("failed to scan %s", kind), err)
		}
		resources = append(resources, res)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage(fmt.Sprintf("error iterating %s", kind), err)
	}

	if resources == nil {
		resources = []models.Resource{}
	}
	return resources, nil
}

func (s *PostgresStore) CreateResource(ctx context.Context, res models.Resource) (models.Resource, error) {
	kind := res.ResourceKind()
	defer metrics.TrackDBOperation("create_" + string(kind))(time.Now())

	var row pgx.Row
	switch r := res.(type) {
	case *models.Hotel:
		row = s.db.QueryRow(ctx, `
			INSERT INTO hotels (code, name, active)
			VALUES ($1, $2, $3)
			RETURNING `+columnsFor(kind),
			r.Code, r.Name, r.Active,
		)
	case *models.Workspace:
		row = s.db.QueryRow(ctx, `
			INSERT INTO workspaces (code, name, hotel_id, hotel_code, settings, active)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+columnsFor(kind),
			r.Code, r.Name, r.HotelID, r.HotelCode, r.Settings, r.Active,
		)
	case *models.Bot:
		row = s.db.QueryRow(ctx, `
			INSERT INTO bots (code, name, workspace_id, hotel_id, type, status, active)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING `+columnsFor(kind),
			r.Code, r.Name, r.WorkspaceID, r.HotelID, r.Type, r.Status, r.Active,
		)
	case *models.Folder:
		row = s.db.QueryRow(ctx, `
			INSERT INTO folders (code, name, bot_id, workspace_id, hotel_id, parent_folder_id, color, icon, sort_order, description, active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING `+columnsFor(kind),
			r.Code, r.Name, r.BotID, r.WorkspaceID, r.HotelID, r.ParentFolderID, r.Color, r.Icon, r.SortOrder, r.Description, r.Active,
		)
	default:
		return nil, apperrors.Storage("unsupported resource type", nil)
	}

	created, err := scanResource(kind, row)
	if err != nil {
		return nil, apperrors.Storage(fmt.Sprintf("failed to create %s", kind), err)
	}
	return created, nil
}

func (s *PostgresStore) UpdateResource(ctx context.Context, res models.Resource) (models.Resource, error) {
	kind := res.ResourceKind()
	defer metrics.TrackDBOperation("update_" + string(kind))(time.Now())

	var row pgx.Row
	switch r := res.(type) {
	case *models.Hotel:
		row = s.db.QueryRow(ctx, `
			UPDATE hotels SET name = $2, active = $3, updated_at = NOW()
			WHERE id = $1
			RETURNING `+columnsFor(kind),
			r.ID, r.Name, r.Active,
		)
	case *models.Workspace:
		row = s.db.QueryRow(ctx, `
			UPDATE workspaces SET name = $2, settings = $3, active = $4, updated_at = NOW()
			WHERE id = $1
			RETURNING `+columnsFor(kind),
			r.ID, r.Name, r.Settings, r.Active,
		)
	case *models.Bot:
		row = s.db.QueryRow(ctx, `
			UPDATE bots SET name = $2, type = $3, status = $4, active = $5, updated_at = NOW()
			WHERE id = $1
			RETURNING `+columnsFor(kind),
			r.ID, r.Name, r.Type, r.Status, r.Active,
		)
	case *models.Folder:
		row = s.db.QueryRow(ctx, `
			UPDATE folders SET name = $2, color = $3, icon = $4, description = $5, active = $6, updated_at = NOW()
			WHERE id = $1
			RETURNING `+columnsFor(kind),
			r.ID, r.Name, r.Color, r.Icon, r.Description, r.Active,
		)
	default:
		return nil, apperrors.Storage("unsupported resource type", nil)
	}

	updated, err := scanResource(kind, row)
	if err != nil {
		return nil, s.wrapGetErr(kind, err)
	}
	return updated, nil
}

func (s *PostgresStore) SetActive(ctx context.Context, kind models.Kind, id int64, active bool) (models.Resource, error) {
	defer metrics.TrackDBOperation("set_active_" + string(kind))(time.Now())

	query := fmt.Sprintf(
		"UPDATE %s SET active = $2, updated_at = NOW() WHERE id = $1 RETURNING %s",
		tableFor(kind), columnsFor(kind),
	)
	res, err := scanResource(kind, s.db.QueryRow(ctx, query, id, active))
	if err != nil {
		return nil, s.wrapGetErr(kind, err)
	}
	return res, nil
}

func (s *PostgresStore) HardDelete(ctx context.Context, kind models.Kind, id int64) error {
	defer metrics.TrackDBOperation("hard_delete_" + string(kind))(time.Now())

	tag, err := s.db.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", tableFor(kind)), id)
	if err != nil {
		return apperrors.Storage(fmt.Sprintf("failed to delete %s", kind), err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound(string(kind))
	}
	return nil
}

func (s *PostgresStore) CountChildren(ctx context.Context, kind models.Kind, parentID int64) (int, error) {
	var query string
	switch kind {
	case models.KindHotel:
		query = "SELECT COUNT(*) FROM workspaces WHERE hotel_id = $1"
	case models.KindWorkspace:
		query = "SELECT COUNT(*) FROM bots WHERE workspace_id = $1"
	case models.KindBot:
		query = "SELECT COUNT(*) FROM folders WHERE bot_id = $1"
	default:
		query = "SELECT COUNT(*) FROM folders WHERE parent_folder_id = $1"
	}

	var count int
	if err := s.db.QueryRow(ctx, query, parentID).Scan(&count); err != nil {
		return 0, apperrors.Storage("failed to count children", err)
	}
	return count, nil
}

func (s *PostgresStore) CountFolders(ctx context.Context, botID int64) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM folders WHERE bot_id = $1", botID).Scan(&count)
	if err != nil {
		return 0, apperrors.Storage("failed to count folders", err)
	}
	return count, nil
}

// NextSortOrder appends after the current maximum among siblings sharing the
// same parent (ties broken by creation order via the id tiebreaker on reads).
func (s *PostgresStore) NextSortOrder(ctx context.Context, botID int64, parentFolderID *int64) (int, error) {
	var query string
	var args []any
	if parentFolderID == nil {
		query = "SELECT COALESCE(MAX(sort_order) + 1, 0) FROM folders WHERE bot_id = $1 AND parent_folder_id IS NULL"
		args = []any{botID}
	} else {
		query = "SELECT COALESCE(MAX(sort_order) + 1, 0) FROM folders WHERE bot_id = $1 AND parent_folder_id = $2"
		args = []any{botID, *parentFolderID}
	}

	var next int
	if err := s.db.QueryRow(ctx, query, args...).Scan(&next); err != nil {
		return 0, apperrors.Storage("failed to compute sort order", err)
	}
	return next, nil
}

func (s *PostgresStore) UpdateFolderParent(ctx context.Context, folderID int64, parentFolderID *int64, sortOrder int) (*models.Folder, error) {
	defer metrics.TrackDBOperation("move_folder")(time.Now())

	res, err := scanResource(models.KindFolder, s.db.QueryRow(ctx, `
		UPDATE folders SET parent_folder_id = $2, sort_order = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING `+columnsFor(models.KindFolder),
		folderID, parentFolderID, sortOrder,
	))
	if err != nil {
		return nil, s.wrapGetErr(models.KindFolder, err)
	}
	return res.(*models.Folder), nil
}

func (s *PostgresStore) ReorderFolders(ctx context.Context, folderIDs []int64) error {
	defer metrics.TrackDBOperation("reorder_folders")(time.Now())

	for i, id := range folderIDs {
		tag, err := s.db.Exec(ctx,
			"UPDATE folders SET sort_order = $2, updated_at = NOW() WHERE id = $1",
			id, i,
		)
		if err != nil {
			return apperrors.Storage("failed to reorder folders", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NotFound(string(models.KindFolder))
		}
	}
	return nil
}
