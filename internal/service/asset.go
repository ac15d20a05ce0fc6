package service

import (
	"context"
	"errors"
	"strings"

	"github.com/tobiasgatti02/Tolio-sub002/internal/domain"
	"github.com/tobiasgatti02/Tolio-sub002/internal/events"
	"github.com/tobiasgatti02/Tolio-sub002/internal/repository"
)

type assetService struct {
	assetRepo repository.AssetRepository
	sink      events.Sink
}

func NewAssetService(assetRepo repository.AssetRepository, sink events.Sink) AssetService {
	return &assetService{assetRepo: assetRepo, sink: sink}
}

func (s *assetService) AddAsset(ctx context.Context, asset *domain.Asset) error {
	asset.Code = strings.ToUpper(strings.TrimSpace(asset.Code))
	if asset.Code == "" {
		return domain.NewInvalidInput("code", "must not be empty")
	}
	if asset.Decimals < 0 || asset.Decimals > 18 {
		return domain.NewInvalidInput("decimals", "must be between 0 and 18")
	}
	if _, err := s.assetRepo.GetByCode(ctx, asset.Code); err == nil {
		return domain.NewInvalidInput("code", "asset already supported: "+asset.Code)
	}

	if err := s.assetRepo.Add(ctx, asset); err != nil {
		return err
	}

	s.sink.Emit(ctx, domain.AssetAdded{
		EventMeta: domain.NewEventMeta(0),
		Code:      asset.Code,
	})
	return nil
}

func (s *assetService) RemoveAsset(ctx context.Context, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if err := s.assetRepo.Remove(ctx, code); err != nil {
		return err
	}

	s.sink.Emit(ctx, domain.AssetRemoved{
		EventMeta: domain.NewEventMeta(0),
		Code:      code,
	})
	return nil
}

func (s *assetService) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	return s.assetRepo.List(ctx)
}

func (s *assetService) IsSupported(ctx context.Context, code string) (bool, error) {
	_, err := s.assetRepo.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if errors.Is(err, domain.ErrAssetNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
