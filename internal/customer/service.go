package customer

import (
	"context"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=customer
type Repository interface {
	CreateCustomer(ctx context.Context, c *Customer) error
	GetCustomer(ctx context.Context, id uuid.UUID) (*Customer, error)
	UpdateCustomer(ctx context.Context, c *Customer) error
	DeleteCustomer(ctx context.Context, id uuid.UUID) error
	ListCustomers(ctx context.Context, filter ListFilter) ([]*Customer, error)

	ListDerived(ctx context.Context, storeID uuid.UUID) ([]*Derived, error)
	PromoteOrder(ctx context.Context, orderID uuid.UUID) (*Customer, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	StoreID uuid.UUID
	Name    string
	Company string
	Email   string
	Phone   string
	Address string
	TaxID   string
	Notes   string
}

type ListFilter struct {
	StoreID uuid.UUID
	Search  string // matches name, company and email
	Limit   int
	Offset  int
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Customer, error) {
	c := &Customer{
		StoreID: params.StoreID,
		Name:    params.Name,
		Company: params.Company,
		Email:   params.Email,
		Phone:   params.Phone,
		Address: params.Address,
		TaxID:   params.TaxID,
		Notes:   params.Notes,
	}

	if err := s.repo.CreateCustomer(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

func (s *Service) Update(ctx context.Context, c *Customer) error {
	return s.repo.UpdateCustomer(ctx, c)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteCustomer(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Customer, error) {
	return s.repo.ListCustomers(ctx, filter)
}

// ListDerived returns customers known only through repair orders, for display
// next to the persisted ones.
func (s *Service) ListDerived(ctx context.Context, storeID uuid.UUID) ([]*Derived, error) {
	return s.repo.ListDerived(ctx, storeID)
}

// Promote turns an order's contact snapshot into a persisted customer and
// links the order to it. This is the only way a derived customer becomes
// editable.
func (s *Service) Promote(ctx context.Context, orderID uuid.UUID) (*Customer, error) {
	return s.repo.PromoteOrder(ctx, orderID)
}
