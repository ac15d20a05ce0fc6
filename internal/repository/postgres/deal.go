package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tobiasgatti02/Tolio-sub002/internal/domain"
	"github.com/tobiasgatti02/Tolio-sub002/internal/repository"
)

const dealColumns = `id, owner_id, renter_id, arbitrator_id, asset, amount_units, marketplace_fee_bps,
	owner_amount_units, marketplace_fee_units, start_time, end_time, status,
	owner_confirmed, renter_confirmed, dispute_open, item_id, notes, created_on, updated_on`

type dealRepository struct {
	db *sql.DB
}

func NewDealRepository(db *sql.DB) repository.DealRepository {
	return &dealRepository{db: db}
}

func (r *dealRepository) Create(ctx context.Context, d *domain.Deal) error {
	query := `INSERT INTO deals (owner_id, renter_id, arbitrator_id, asset, amount_units, marketplace_fee_bps,
	            owner_amount_units, marketplace_fee_units, start_time, end_time, status,
	            owner_confirmed, renter_confirmed, dispute_open, item_id, notes, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18) RETURNING id`
	now := time.Now()
	d.CreatedOn = now
	d.UpdatedOn = now
	return r.db.QueryRowContext(ctx, query,
		d.Owner, d.Renter, d.Arbitrator, d.Asset, d.AmountUnits, d.MarketplaceFeeBps,
		d.OwnerAmountUnits, d.MarketplaceFeeUnits, d.StartTime, d.EndTime, d.Status,
		d.OwnerConfirmed, d.RenterConfirmed, d.DisputeOpen, d.ItemID, d.Notes, now, now,
	).Scan(&d.ID)
}

func (r *dealRepository) GetByID(ctx context.Context, id int64) (*domain.Deal, error) {
	d := &domain.Deal{}
	query := `SELECT ` + dealColumns + ` FROM deals WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&d.ID, &d.Owner, &d.Renter, &d.Arbitrator, &d.Asset, &d.AmountUnits, &d.MarketplaceFeeBps,
		&d.OwnerAmountUnits, &d.MarketplaceFeeUnits, &d.StartTime, &d.EndTime, &d.Status,
		&d.OwnerConfirmed, &d.RenterConfirmed, &d.DisputeOpen, &d.ItemID, &d.Notes, &d.CreatedOn, &d.UpdatedOn,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrDealNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *dealRepository) Update(ctx context.Context, d *domain.Deal) error {
	query := `UPDATE deals SET status=$1, owner_confirmed=$2, renter_confirmed=$3, dispute_open=$4, updated_on=$5 WHERE id=$6`
	d.UpdatedOn = time.Now()
	res, err := r.db.ExecContext(ctx, query, d.Status, d.OwnerConfirmed, d.RenterConfirmed, d.DisputeOpen, d.UpdatedOn, d.ID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrDealNotFound
	}
	return nil
}

func (r *dealRepository) ListByRenter(ctx context.Context, renter string, status string, page, pageSize int32) ([]domain.Deal, int32, error) {
	return r.listByParty(ctx, "renter_id", renter, status, page, pageSize)
}

func (r *dealRepository) ListByOwner(ctx context.Context, owner string, status string, page, pageSize int32) ([]domain.Deal, int32, error) {
	return r.listByParty(ctx, "owner_id", owner, status, page, pageSize)
}

func (r *dealRepository) listByParty(ctx context.Context, column, party, status string, page, pageSize int32) ([]domain.Deal, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + dealColumns + ` FROM deals WHERE ` + column + ` = $1`

	args := []interface{}{party}
	argIdx := 2
	if status != "" {
		query += " AND status = $2"
		args = append(args, status)
		argIdx++
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") as sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY created_on DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	deals, err := scanDeals(rows)
	if err != nil {
		return nil, 0, err
	}
	return deals, count, nil
}

func (r *dealRepository) ListOverdueActive(ctx context.Context) ([]domain.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals
	          WHERE status = $1 AND end_time < $2 ORDER BY end_time ASC`
	rows, err := r.db.QueryContext(ctx, query, domain.DealStatusActive, time.Now())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDeals(rows)
}

func scanDeals(rows *sql.Rows) ([]domain.Deal, error) {
	var deals []domain.Deal
	for rows.Next() {
		var d domain.Deal
		if err := rows.Scan(
			&d.ID, &d.Owner, &d.Renter, &d.Arbitrator, &d.Asset, &d.AmountUnits, &d.MarketplaceFeeBps,
			&d.OwnerAmountUnits, &d.MarketplaceFeeUnits, &d.StartTime, &d.EndTime, &d.Status,
			&d.OwnerConfirmed, &d.RenterConfirmed, &d.DisputeOpen, &d.ItemID, &d.Notes, &d.CreatedOn, &d.UpdatedOn,
		); err != nil {
			return nil, err
		}
		deals = append(deals, d)
	}
	return deals, rows.Err()
}
