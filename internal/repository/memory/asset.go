package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tobiasgatti02/Tolio-sub002/internal/domain"
	"github.com/tobiasgatti02/Tolio-sub002/internal/repository"
)

type assetRepository struct {
	mu     sync.RWMutex
	assets map[string]domain.Asset
}

func NewAssetRepository() repository.AssetRepository {
	return &assetRepository{assets: make(map[string]domain.Asset)}
}

func (r *assetRepository) Add(ctx context.Context, a *domain.Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a.AddedOn = time.Now()
	r.assets[a.Code] = *a
	return nil
}

func (r *assetRepository) Remove(ctx context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.assets[code]; !ok {
		return domain.ErrAssetNotFound
	}
	delete(r.assets, code)
	return nil
}

func (r *assetRepository) GetByCode(ctx context.Context, code string) (*domain.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.assets[code]
	if !ok {
		return nil, domain.ErrAssetNotFound
	}
	return &a, nil
}

func (r *assetRepository) List(ctx context.Context) ([]domain.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	assets := make([]domain.Asset, 0, len(r.assets))
	for _, a := range r.assets {
		assets = append(assets, a)
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Code < assets[j].Code })
	return assets, nil
}
