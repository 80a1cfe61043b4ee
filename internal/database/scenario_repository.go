package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/resilink/disruption-engine/internal/domain"
)

// scenarioRow mirrors the scenarios table; parameters and marketplace
// metadata live in JSONB columns.
type scenarioRow struct {
	ID          string          `db:"id"`
	Type        string          `db:"type"`
	Parameters  json.RawMessage `db:"parameters"`
	CreatedBy   string          `db:"created_by"`
	IsPublic    bool            `db:"is_public"`
	Marketplace json.RawMessage `db:"marketplace"`
	CreatedAt   time.Time       `db:"created_at"`
	DeletedAt   *time.Time      `db:"deleted_at"`
}

// ScenarioRepository handles scenario persistence.
type ScenarioRepository struct {
	BaseRepository
	logger *slog.Logger
}

// NewScenarioRepository creates a new scenario repository.
func NewScenarioRepository(db *sqlx.DB, logger *slog.Logger) *ScenarioRepository {
	return &ScenarioRepository{
		BaseRepository: BaseRepository{db: db},
		logger:         logger,
	}
}

// Create persists a new scenario. Scenarios are immutable once stored;
// only the marketplace counters may change afterward.
func (r *ScenarioRepository) Create(ctx context.Context, s *domain.Scenario) error {
	row, err := toRow(s)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO scenarios (id, type, parameters, created_by, is_public, marketplace, created_at)
		VALUES (:id, :type, :parameters, :created_by, :is_public, :marketplace, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		r.logger.Error("Failed to create scenario", "scenario_id", s.ID, "error", err)
		return errors.Wrap(err, "failed to create scenario")
	}

	r.logger.Info("Scenario created", "scenario_id", s.ID, "type", s.Type)
	return nil
}

// GetByID retrieves a scenario by id. An absent row is a not-found error.
func (r *ScenarioRepository) GetByID(ctx context.Context, id string) (*domain.Scenario, error) {
	query := `
		SELECT id, type, parameters, created_by, is_public, marketplace, created_at, deleted_at
		FROM scenarios
		WHERE id = $1 AND deleted_at IS NULL`

	var row scenarioRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NewNotFoundError("scenario", id)
		}
		r.logger.Error("Failed to get scenario", "scenario_id", id, "error", err)
		return nil, errors.Wrap(err, "failed to get scenario")
	}

	return fromRow(&row)
}

// List retrieves scenarios for a creator, optionally including public ones,
// newest first.
func (r *ScenarioRepository) List(ctx context.Context, createdBy string, includePublic bool, limit, offset int) ([]*domain.Scenario, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, type, parameters, created_by, is_public, marketplace, created_at, deleted_at
		FROM scenarios
		WHERE deleted_at IS NULL AND (created_by = $1 OR (is_public AND $2))
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	var rows []scenarioRow
	if err := r.db.SelectContext(ctx, &rows, query, createdBy, includePublic, limit, offset); err != nil {
		r.logger.Error("Failed to list scenarios", "created_by", createdBy, "error", err)
		return nil, errors.Wrap(err, "failed to list scenarios")
	}

	scenarios := make([]*domain.Scenario, 0, len(rows))
	for i := range rows {
		s, err := fromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// IncrementUsage bumps the marketplace usage counter. The counter is owned
// by the marketplace collaborator; the engine only maintains the column.
func (r *ScenarioRepository) IncrementUsage(ctx context.Context, id string) error {
	query := `
		UPDATE scenarios
		SET marketplace = jsonb_set(
			COALESCE(marketplace, '{}'::jsonb),
			'{usage_count}',
			(COALESCE(marketplace->>'usage_count', '0')::int + 1)::text::jsonb)
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to increment scenario usage", "scenario_id", id, "error", err)
		return errors.Wrap(err, "failed to increment scenario usage")
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return domain.NewNotFoundError("scenario", id)
	}
	return nil
}

// Delete soft-deletes a scenario.
func (r *ScenarioRepository) Delete(ctx context.Context, id string) error {
	query := `UPDATE scenarios SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		r.logger.Error("Failed to delete scenario", "scenario_id", id, "error", err)
		return errors.Wrap(err, "failed to delete scenario")
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return domain.NewNotFoundError("scenario", id)
	}

	r.logger.Info("Scenario deleted", "scenario_id", id)
	return nil
}

func toRow(s *domain.Scenario) (*scenarioRow, error) {
	params, err := json.Marshal(s.Parameters)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode scenario parameters")
	}

	row := &scenarioRow{
		ID:         s.ID,
		Type:       string(s.Type),
		Parameters: params,
		CreatedBy:  s.CreatedBy,
		IsPublic:   s.IsPublic,
		CreatedAt:  s.CreatedAt,
	}
	if s.Marketplace != nil {
		mp, err := json.Marshal(s.Marketplace)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode marketplace metadata")
		}
		row.Marketplace = mp
	}
	return row, nil
}

func fromRow(row *scenarioRow) (*domain.Scenario, error) {
	s := &domain.Scenario{
		ID:        row.ID,
		Type:      domain.DisruptionType(row.Type),
		CreatedBy: row.CreatedBy,
		IsPublic:  row.IsPublic,
		CreatedAt: row.CreatedAt,
	}
	if err := json.Unmarshal(row.Parameters, &s.Parameters); err != nil {
		return nil, errors.Wrapf(err, "corrupt parameters for scenario %s", row.ID)
	}
	if len(row.Marketplace) > 0 {
		var mp domain.MarketplaceMetadata
		if err := json.Unmarshal(row.Marketplace, &mp); err != nil {
			return nil, errors.Wrapf(err, "corrupt marketplace metadata for scenario %s", row.ID)
		}
		s.Marketplace = &mp
	}
	return s, nil
}
