package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// BlockedRepository manages blocked slots and blocked texts.
type BlockedRepository struct {
	db *sqlx.DB
}

// NewBlockedRepository constructs a BlockedRepository.
func NewBlockedRepository(db *sqlx.DB) *BlockedRepository {
	return &BlockedRepository{db: db}
}

// ListSlots returns every blocked slot ordered by cell key.
func (r *BlockedRepository) ListSlots(ctx context.Context) ([]models.BlockedSlot, error) {
	var slots []models.BlockedSlot
	if err := r.db.SelectContext(ctx, &slots, "SELECT id, cell_key, label, created_at FROM blocked_slots ORDER BY cell_key ASC"); err != nil {
		return nil, fmt.Errorf("list blocked slots: %w", err)
	}
	return slots, nil
}

// FindSlot fetches a blocked slot by ID.
func (r *BlockedRepository) FindSlot(ctx context.Context, id string) (*models.BlockedSlot, error) {
	var slot models.BlockedSlot
	if err := r.db.GetContext(ctx, &slot, "SELECT id, cell_key, label, created_at FROM blocked_slots WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// UpsertSlot blocks a cell, replacing the label when the cell is already blocked.
func (r *BlockedRepository) UpsertSlot(ctx context.Context, slot *models.BlockedSlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	slot.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO blocked_slots (id, cell_key, label, created_at)
		VALUES (:id, :cell_key, :label, :created_at)
		ON CONFLICT (cell_key) DO UPDATE SET label = EXCLUDED.label
		RETURNING id, created_at`
	rows, err := r.db.NamedQueryContext(ctx, query, slot)
	if err != nil {
		return fmt.Errorf("upsert blocked slot: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&slot.ID, &slot.CreatedAt); err != nil {
			return fmt.Errorf("scan blocked slot: %w", err)
		}
	}
	return rows.Err()
}

// DeleteSlot unblocks a cell.
func (r *BlockedRepository) DeleteSlot(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM blocked_slots WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete blocked slot: %w", err)
	}
	return requireAffected(res)
}

// ListTexts returns every blocked text.
func (r *BlockedRepository) ListTexts(ctx context.Context) ([]models.BlockedText, error) {
	var texts []models.BlockedText
	if err := r.db.SelectContext(ctx, &texts, "SELECT id, text, created_at FROM blocked_texts ORDER BY created_at ASC, id ASC"); err != nil {
		return nil, fmt.Errorf("list blocked texts: %w", err)
	}
	return texts, nil
}

// CreateText registers a blocking label.
func (r *BlockedRepository) CreateText(ctx context.Context, text *models.BlockedText) error {
	if text.ID == "" {
		text.ID = uuid.NewString()
	}
	text.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO blocked_texts (id, text, created_at) VALUES (:id, :text, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, text); err != nil {
		return fmt.Errorf("create blocked text: %w", err)
	}
	return nil
}

// DeleteText removes a blocking label.
func (r *BlockedRepository) DeleteText(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM blocked_texts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete blocked text: %w", err)
	}
	return requireAffected(res)
}
