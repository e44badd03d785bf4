package shop

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/tobiaswld/werkstatt/internal/billing"
	"github.com/tobiaswld/werkstatt/internal/loyalty"
	"github.com/tobiaswld/werkstatt/internal/order"
)

// Seed is the YAML provisioning file loaded at startup when SEED_FILE is set.
type Seed struct {
	Shops []SeedShop `yaml:"shops"`
}

type SeedShop struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`

	Billing struct {
		InvoicePrefix      string  `yaml:"invoice_prefix"`
		InvoiceNextNumber  int     `yaml:"invoice_next_number"`
		QuotePrefix        string  `yaml:"quote_prefix"`
		QuoteNextNumber    int     `yaml:"quote_next_number"`
		PurchasePrefix     string  `yaml:"purchase_prefix"`
		PurchaseNextNumber int     `yaml:"purchase_next_number"`
		VATEnabled         bool    `yaml:"vat_enabled"`
		VATRate            float64 `yaml:"vat_rate"`
	} `yaml:"billing"`

	NotifySet []string `yaml:"notify_set"`

	Rewards []SeedReward `yaml:"rewards"`
}

type SeedReward struct {
	Kind           string `yaml:"kind"`
	Title          string `yaml:"title"`
	Value          int64  `yaml:"value"`
	PointsRequired int    `yaml:"points_required"`
}

// LoadSeed reads and parses a seed file.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}

	return &seed, nil
}

func (e SeedShop) build() (*Shop, []loyalty.Reward, error) {
	id, err := uuid.Parse(e.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid shop id %q: %w", e.ID, err)
	}

	sh := &Shop{
		ID:   id,
		Name: e.Name,
		Billing: billing.StoreConfig{
			Invoice:    billing.SeriesConfig{Prefix: e.Billing.InvoicePrefix, NextNumber: e.Billing.InvoiceNextNumber},
			Quote:      billing.SeriesConfig{Prefix: e.Billing.QuotePrefix, NextNumber: e.Billing.QuoteNextNumber},
			Purchase:   billing.SeriesConfig{Prefix: e.Billing.PurchasePrefix, NextNumber: e.Billing.PurchaseNextNumber},
			VATEnabled: e.Billing.VATEnabled,
			VATRate:    e.Billing.VATRate,
		},
	}

	if sh.Billing.VATRate < 0 || sh.Billing.VATRate > 100 {
		return nil, nil, ErrBadVATRate
	}

	for _, st := range e.NotifySet {
		status := order.Status(st)
		if !status.Valid() {
			return nil, nil, fmt.Errorf("%w: %q", ErrBadStatus, st)
		}

		sh.NotifySet = append(sh.NotifySet, status)
	}

	rewards := make([]loyalty.Reward, len(e.Rewards))
	for i, r := range e.Rewards {
		rewards[i] = loyalty.Reward{
			StoreID:        id,
			Kind:           loyalty.RewardKind(r.Kind),
			Title:          r.Title,
			Value:          r.Value,
			PointsRequired: r.PointsRequired,
		}
	}

	return sh, rewards, nil
}
