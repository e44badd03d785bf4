package shop

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tobiaswld/werkstatt/internal/billing"
	"github.com/tobiaswld/werkstatt/internal/loyalty"
	"github.com/tobiaswld/werkstatt/internal/order"
)

type Repository interface {
	GetShop(ctx context.Context, id uuid.UUID) (*Shop, error)
	UpsertShop(ctx context.Context, sh *Shop) error
	UpdateBillingConfig(ctx context.Context, id uuid.UUID, cfg billing.StoreConfig) error
	UpdateNotifySet(ctx context.Context, id uuid.UUID, set []order.Status) error
	ReplaceRewards(ctx context.Context, storeID uuid.UUID, rewards []loyalty.Reward) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Shop, error) {
	return s.repo.GetShop(ctx, id)
}

func (s *Service) UpdateBillingConfig(ctx context.Context, id uuid.UUID, cfg billing.StoreConfig) error {
	if cfg.VATRate < 0 || cfg.VATRate > 100 {
		return ErrBadVATRate
	}

	return s.repo.UpdateBillingConfig(ctx, id, cfg)
}

func (s *Service) UpdateNotifySet(ctx context.Context, id uuid.UUID, set []order.Status) error {
	for _, st := range set {
		if !st.Valid() {
			return ErrBadStatus
		}
	}

	return s.repo.UpdateNotifySet(ctx, id, set)
}

// ApplySeed provisions shops and their reward catalogs from a seed file.
// Existing shops are overwritten; used for first-run setup and local
// development.
func (s *Service) ApplySeed(ctx context.Context, seed *Seed) error {
	for _, entry := range seed.Shops {
		sh, rewards, err := entry.build()
		if err != nil {
			return fmt.Errorf("seed shop %q: %w", entry.Name, err)
		}

		if err := s.repo.UpsertShop(ctx, sh); err != nil {
			return fmt.Errorf("seeding shop %q: %w", entry.Name, err)
		}

		if err := s.repo.ReplaceRewards(ctx, sh.ID, rewards); err != nil {
			return fmt.Errorf("seeding rewards for %q: %w", entry.Name, err)
		}
	}

	return nil
}
