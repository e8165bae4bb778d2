package cache

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/attireworks/wardrobe/internal/rental"
)

// Repository stores fetched catalog and reservation data. Each
// replace wipes and rewrites its table inside one transaction, so
// readers always see a single consistent fetch.
type Repository struct {
	db     *DB
	logger *zap.Logger
}

// NewRepository creates a cache repository.
func NewRepository(db *DB, logger *zap.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// ReplaceCostumes swaps the cached catalog for the given one.
func (r *Repository) ReplaceCostumes(ctx context.Context, costumes []rental.Costume) error {
	tx, err := r.db.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM costume_cache`); err != nil {
		return fmt.Errorf("clear costume cache: %w", err)
	}

	insertQuery := `
		INSERT INTO costume_cache (id, name, size, price, image, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	now := time.Now().UTC()
	for _, c := range costumes {
		if _, err := tx.Exec(ctx, insertQuery, c.ID, c.Name, c.Size, c.Price, c.Image, now); err != nil {
			return fmt.Errorf("insert costume %d: %w", c.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	r.logger.Info("costume cache replaced", zap.Int("count", len(costumes)))

	return nil
}

// ListCostumes returns the cached catalog ordered by id.
func (r *Repository) ListCostumes(ctx context.Context) ([]rental.Costume, error) {
	query := `
		SELECT id, name, size, price, image
		FROM costume_cache
		ORDER BY id ASC
	`

	rows, err := r.db.Pool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query costume cache: %w", err)
	}
	defer rows.Close()

	var costumes []rental.Costume
	for rows.Next() {
		var c rental.Costume
		if err := rows.Scan(&c.ID, &c.Name, &c.Size, &c.Price, &c.Image); err != nil {
			return nil, fmt.Errorf("scan costume: %w", err)
		}
		costumes = append(costumes, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return costumes, nil
}

// ReplaceReservations swaps the stored reservation snapshot for one scope.
func (r *Repository) ReplaceReservations(ctx context.Context, scope string, reservations []rental.Reservation) error {
	tx, err := r.db.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM reservation_snapshots WHERE scope = $1`, scope); err != nil {
		return fmt.Errorf("clear reservation snapshot: %w", err)
	}

	insertQuery := `
		INSERT INTO reservation_snapshots (
			scope, reservation_id, costume_id, user_id,
			status, start_date, end_date, fetched_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	now := time.Now().UTC()
	for _, res := range reservations {
		_, err := tx.Exec(ctx, insertQuery,
			scope,
			res.ID,
			res.CostumeID,
			res.UserID,
			string(res.EffectiveStatus()),
			res.StartDate,
			res.EndDate,
			now,
		)
		if err != nil {
			return fmt.Errorf("insert reservation %d: %w", res.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	r.logger.Info("reservation snapshot replaced",
		zap.String("scope", scope),
		zap.Int("count", len(reservations)),
	)

	return nil
}

// ListReservations returns the stored snapshot for one scope.
func (r *Repository) ListReservations(ctx context.Context, scope string) ([]rental.Reservation, error) {
	query := `
		SELECT reservation_id, costume_id, user_id, status, start_date, end_date
		FROM reservation_snapshots
		WHERE scope = $1
		ORDER BY reservation_id ASC
	`

	rows, err := r.db.Pool().Query(ctx, query, scope)
	if err != nil {
		return nil, fmt.Errorf("query reservation snapshot: %w", err)
	}
	defer rows.Close()

	var reservations []rental.Reservation
	for rows.Next() {
		var res rental.Reservation
		var status string
		if err := rows.Scan(&res.ID, &res.CostumeID, &res.UserID, &status, &res.StartDate, &res.EndDate); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		res.Status = rental.Status(status)
		reservations = append(reservations, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return reservations, nil
}
