package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/xavierca1/ligue-campaigns/internal/entity"
)

type MappingDraftRepository struct {
	DB *sql.DB
}

func NewMappingDraftRepository(db *sql.DB) *MappingDraftRepository {
	return &MappingDraftRepository{DB: db}
}

func (r *MappingDraftRepository) Find(ctx context.Context, importID string) (entity.ImportMapping, error) {
	var raw string
	err := r.DB.QueryRowContext(ctx, `SELECT mapping FROM mapping_drafts WHERE import_id = ?`, importID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrDraftNotFound
	}
	if err != nil {
		return nil, err
	}

	var mapping entity.ImportMapping
	if err := json.Unmarshal([]byte(raw), &mapping); err != nil {
		return nil, fmt.Errorf("rascunho corrompido para %s: %w", importID, err)
	}
	return mapping.Normalize(), nil
}

func (r *MappingDraftRepository) Save(ctx context.Context, importID string, mapping entity.ImportMapping) error {
	raw, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("erro ao serializar rascunho: %w", err)
	}

	query := `
		INSERT INTO mapping_drafts (import_id, mapping, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (import_id) DO UPDATE SET
			mapping = excluded.mapping,
			updated_at = excluded.updated_at
	`
	_, err = r.DB.ExecContext(ctx, query, importID, string(raw), time.Now().UTC())
	return err
}

func (r *MappingDraftRepository) Delete(ctx context.Context, importID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM mapping_drafts WHERE import_id = ?`, importID)
	return err
}
