package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

const workspaceColumns = "id, name, session_id, snapshot, version, created_at, updated_at"

// WorkspaceRepository persists the durable copy of editing sessions.
type WorkspaceRepository struct {
	db *sqlx.DB
}

// NewWorkspaceRepository constructs a WorkspaceRepository.
func NewWorkspaceRepository(db *sqlx.DB) *WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

// Upsert writes the workspace unless a row with an equal or newer version already exists.
// It reports whether the row was written.
func (r *WorkspaceRepository) Upsert(ctx context.Context, ws *models.Workspace) (bool, error) {
	now := time.Now().UTC()
	if ws.CreatedAt.IsZero() {
		ws.CreatedAt = now
	}
	ws.UpdatedAt = now

	const query = `INSERT INTO workspaces (id, name, session_id, snapshot, version, created_at, updated_at)
		VALUES (:id, :name, :session_id, :snapshot, :version, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, session_id = EXCLUDED.session_id,
			snapshot = EXCLUDED.snapshot, version = EXCLUDED.version, updated_at = EXCLUDED.updated_at
		WHERE workspaces.version < EXCLUDED.version`
	res, err := r.db.NamedExecContext(ctx, query, ws)
	if err != nil {
		return false, fmt.Errorf("upsert workspace: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("upsert workspace: %w", err)
	}
	return n > 0, nil
}

// FindByID fetches a workspace by ID.
func (r *WorkspaceRepository) FindByID(ctx context.Context, id string) (*models.Workspace, error) {
	var ws models.Workspace
	if err := r.db.GetContext(ctx, &ws, "SELECT "+workspaceColumns+" FROM workspaces WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &ws, nil
}

// List returns workspaces ordered by most recent update.
func (r *WorkspaceRepository) List(ctx context.Context, filter models.RosterFilter) ([]models.Workspace, int, error) {
	base := "FROM workspaces WHERE 1=1"
	clause, args := searchClause(filter.Search, nil, "name")
	base += clause

	limit, offset := pageBounds(filter.Page, filter.PageSize)
	query := fmt.Sprintf("SELECT id, name, session_id, version, created_at, updated_at %s ORDER BY updated_at DESC LIMIT %d OFFSET %d", base, limit, offset)
	var items []models.Workspace
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list workspaces: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count workspaces: %w", err)
	}
	return items, total, nil
}

// Delete removes a workspace.
func (r *WorkspaceRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM workspaces WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete workspace: %w", err)
	}
	return requireAffected(res)
}
