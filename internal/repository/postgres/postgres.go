package postgres

import (
	"database/sql"

	"github.com/tobiasgatti02/Tolio-sub002/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.DealRepository
	repository.AssetRepository
	repository.EventRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:              db,
		DealRepository:  NewDealRepository(db),
		AssetRepository: NewAssetRepository(db),
		EventRepository: NewEventRepository(db),
	}
}
