package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/tobiasgatti02/Tolio-sub002/internal/domain"
	"github.com/tobiasgatti02/Tolio-sub002/internal/repository"
)

type assetRepository struct {
	db *sql.DB
}

func NewAssetRepository(db *sql.DB) repository.AssetRepository {
	return &assetRepository{db: db}
}

func (r *assetRepository) Add(ctx context.Context, a *domain.Asset) error {
	query := `INSERT INTO supported_assets (code, name, decimals, added_on) VALUES ($1, $2, $3, $4)`
	a.AddedOn = time.Now()
	_, err := r.db.ExecContext(ctx, query, a.Code, a.Name, a.Decimals, a.AddedOn)
	return err
}

func (r *assetRepository) Remove(ctx context.Context, code string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM supported_assets WHERE code = $1`, code)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrAssetNotFound
	}
	return nil
}

func (r *assetRepository) GetByCode(ctx context.Context, code string) (*domain.Asset, error) {
	a := &domain.Asset{}
	query := `SELECT code, name, decimals, added_on FROM supported_assets WHERE code = $1`
	err := r.db.QueryRowContext(ctx, query, code).Scan(&a.Code, &a.Name, &a.Decimals, &a.AddedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAssetNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *assetRepository) List(ctx context.Context) ([]domain.Asset, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT code, name, decimals, added_on FROM supported_assets ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []domain.Asset
	for rows.Next() {
		var a domain.Asset
		if err := rows.Scan(&a.Code, &a.Name, &a.Decimals, &a.AddedOn); err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}
