// Package memory provides mutex-guarded in-memory implementations of the
// repository interfaces, used by tests and local runs without postgres.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tobiasgatti02/Tolio-sub002/internal/domain"
	"github.com/tobiasgatti02/Tolio-sub002/internal/repository"
)

type dealRepository struct {
	mu     sync.RWMutex
	nextID int64
	deals  map[int64]domain.Deal
}

func NewDealRepository() repository.DealRepository {
	return &dealRepository{nextID: 1, deals: make(map[int64]domain.Deal)}
}

func (r *dealRepository) Create(ctx context.Context, d *domain.Deal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d.ID = r.nextID
	r.nextID++
	now := time.Now()
	d.CreatedOn = now
	d.UpdatedOn = now
	r.deals[d.ID] = *d
	return nil
}

func (r *dealRepository) GetByID(ctx context.Context, id int64) (*domain.Deal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.deals[id]
	if !ok {
		return nil, domain.ErrDealNotFound
	}
	return &d, nil
}

func (r *dealRepository) Update(ctx context.Context, d *domain.Deal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.deals[d.ID]; !ok {
		return domain.ErrDealNotFound
	}
	d.UpdatedOn = time.Now()
	r.deals[d.ID] = *d
	return nil
}

func (r *dealRepository) ListByRenter(ctx context.Context, renter string, status string, page, pageSize int32) ([]domain.Deal, int32, error) {
	return r.list(func(d *domain.Deal) bool { return d.Renter == renter }, status, page, pageSize)
}

func (r *dealRepository) ListByOwner(ctx context.Context, owner string, status string, page, pageSize int32) ([]domain.Deal, int32, error) {
	return r.list(func(d *domain.Deal) bool { return d.Owner == owner }, status, page, pageSize)
}

func (r *dealRepository) list(match func(*domain.Deal) bool, status string, page, pageSize int32) ([]domain.Deal, int32, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []domain.Deal
	for _, d := range r.deals {
		if !match(&d) {
			continue
		}
		if status != "" && string(d.Status) != status {
			continue
		}
		all = append(all, d)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	count := int32(len(all))
	start := (page - 1) * pageSize
	if start >= count {
		return nil, count, nil
	}
	end := start + pageSize
	if end > count {
		end = count
	}
	return all[start:end], count, nil
}

func (r *dealRepository) ListOverdueActive(ctx context.Context) ([]domain.Deal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := time.Now()
	var overdue []domain.Deal
	for _, d := range r.deals {
		if d.Status == domain.DealStatusActive && d.EndTime.Before(now) {
			overdue = append(overdue, d)
		}
	}
	sort.Slice(overdue, func(i, j int) bool { return overdue[i].EndTime.Before(overdue[j].EndTime) })
	return overdue, nil
}
