package database

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/resilink/disruption-engine/internal/domain"
)

// facilityRow mirrors the facilities table.
type facilityRow struct {
	ID               string         `db:"id"`
	Name             string         `db:"name"`
	Type             string         `db:"type"`
	Capacity         float64        `db:"capacity"`
	CurrentInventory float64        `db:"current_inventory"`
	UtilizationRate  float64        `db:"utilization_rate"`
	Connectivity     pq.StringArray `db:"connectivity"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

// FacilityRepository handles facility snapshot persistence.
type FacilityRepository struct {
	BaseRepository
	logger *slog.Logger
}

// NewFacilityRepository creates a new facility repository.
func NewFacilityRepository(db *sqlx.DB, logger *slog.Logger) *FacilityRepository {
	return &FacilityRepository{
		BaseRepository: BaseRepository{db: db},
		logger:         logger,
	}
}

// Create persists a facility snapshot.
func (r *FacilityRepository) Create(ctx context.Context, f *domain.Facility) error {
	query := `
		INSERT INTO facilities (id, name, type, capacity, current_inventory, utilization_rate, connectivity, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if f.UpdatedAt.IsZero() {
		f.UpdatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, query,
		f.ID, f.Name, f.Type, f.Capacity, f.CurrentInventory,
		f.UtilizationRate, pq.Array(f.Connectivity), f.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to create facility", "facility_id", f.ID, "error", err)
		return errors.Wrap(err, "failed to create facility")
	}

	r.logger.Info("Facility created", "facility_id", f.ID, "type", f.Type)
	return nil
}

// GetByID retrieves a facility by id.
func (r *FacilityRepository) GetByID(ctx context.Context, id string) (*domain.Facility, error) {
	query := `
		SELECT id, name, type, capacity, current_inventory, utilization_rate, connectivity, updated_at
		FROM facilities
		WHERE id = $1`

	var row facilityRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.NewNotFoundError("facility", id)
		}
		r.logger.Error("Failed to get facility", "facility_id", id, "error", err)
		return nil, errors.Wrap(err, "failed to get facility")
	}

	f := facilityFromRow(&row)
	return &f, nil
}

// GetByIDs retrieves facility snapshots for the given ids. Unknown ids are
// omitted from the result rather than failing the batch; the simulator
// treats the returned set as the best available snapshot.
func (r *FacilityRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Facility, error) {
	if len(ids) == 0 {
		return []domain.Facility{}, nil
	}

	query := `
		SELECT id, name, type, capacity, current_inventory, utilization_rate, connectivity, updated_at
		FROM facilities
		WHERE id = ANY($1)`

	var rows []facilityRow
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		r.logger.Error("Failed to get facilities", "count", len(ids), "error", err)
		return nil, errors.Wrap(err, "failed to get facilities")
	}

	facilities := make([]domain.Facility, 0, len(rows))
	for i := range rows {
		facilities = append(facilities, facilityFromRow(&rows[i]))
	}
	return facilities, nil
}

// List retrieves facility snapshots ordered by id.
func (r *FacilityRepository) List(ctx context.Context, limit, offset int) ([]domain.Facility, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, name, type, capacity, current_inventory, utilization_rate, connectivity, updated_at
		FROM facilities
		ORDER BY id
		LIMIT $1 OFFSET $2`

	var rows []facilityRow
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		r.logger.Error("Failed to list facilities", "error", err)
		return nil, errors.Wrap(err, "failed to list facilities")
	}

	facilities := make([]domain.Facility, 0, len(rows))
	for i := range rows {
		facilities = append(facilities, facilityFromRow(&rows[i]))
	}
	return facilities, nil
}

// UpdateUtilization refreshes a facility's utilization snapshot.
func (r *FacilityRepository) UpdateUtilization(ctx context.Context, id string, utilization float64) error {
	if utilization < 0 || utilization > 1 {
		return domain.NewValidationError("utilization_rate", "must be between 0 and 1")
	}

	query := `UPDATE facilities SET utilization_rate = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, utilization, time.Now().UTC())
	if err != nil {
		r.logger.Error("Failed to update facility utilization", "facility_id", id, "error", err)
		return errors.Wrap(err, "failed to update facility utilization")
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return domain.NewNotFoundError("facility", id)
	}
	return nil
}

func facilityFromRow(row *facilityRow) domain.Facility {
	return domain.Facility{
		ID:               row.ID,
		Name:             row.Name,
		Type:             row.Type,
		Capacity:         row.Capacity,
		CurrentInventory: row.CurrentInventory,
		UtilizationRate:  row.UtilizationRate,
		Connectivity:     []string(row.Connectivity),
		UpdatedAt:        row.UpdatedAt,
	}
}
