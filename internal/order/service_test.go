package order_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/tobiaswld/werkstatt/internal/billing"
	"github.com/tobiaswld/werkstatt/internal/order"
)

// dispatcherStub counts dispatches; a non-nil err simulates a dead webhook.
type dispatcherStub struct {
	err   error
	calls int
}

func (d *dispatcherStub) Notify(context.Context, string, string, map[string]any) error {
	d.calls++
	return d.err
}

func storeConfig() *billing.StoreConfig {
	return &billing.StoreConfig{
		Invoice:    billing.SeriesConfig{Prefix: "RE-", NextNumber: 5},
		VATEnabled: true,
		VATRate:    19,
	}
}

func openOrder(storeID uuid.UUID) *order.Order {
	return &order.Order{
		ID:      uuid.New(),
		StoreID: storeID,
		Contact: order.Contact{Name: "Max Müller", Email: "max@example.com"},
		Device:  order.Device{Brand: "Apple", Model: "iPhone 12"},
		Problem: "Display gebrochen",
		Status:  order.StatusInProgress,
		Version: 3,
	}
}

func TestService_Transition(t *testing.T) {
	storeID := uuid.New()

	type testCase struct {
		name         string
		to           order.Status
		version      int
		setupMock    func(repo *order.MockRepository, policy *order.MockNotifyPolicy, o *order.Order)
		dispatch     error
		wantWarnings int
		wantCalls    int
		wantErr      error
	}

	tests := []testCase{
		{
			name:    "Success",
			to:      order.StatusWaitingParts,
			version: 3,
			setupMock: func(repo *order.MockRepository, policy *order.MockNotifyPolicy, o *order.Order) {
				repo.EXPECT().GetOrder(gomock.Any(), o.ID).Return(o, nil)
				repo.EXPECT().UpdateStatus(gomock.Any(), o.ID, order.StatusWaitingParts, 3).Return(nil)
				policy.EXPECT().NotifySet(gomock.Any(), storeID).Return(nil, nil)
			},
		},
		{
			name:    "ZeroVersionUsesCurrent",
			to:      order.StatusWaitingParts,
			version: 0,
			setupMock: func(repo *order.MockRepository, policy *order.MockNotifyPolicy, o *order.Order) {
				repo.EXPECT().GetOrder(gomock.Any(), o.ID).Return(o, nil)
				repo.EXPECT().UpdateStatus(gomock.Any(), o.ID, order.StatusWaitingParts, 3).Return(nil)
				policy.EXPECT().NotifySet(gomock.Any(), storeID).Return(nil, nil)
			},
		},
		{
			name:    "NotifiedStatusDispatches",
			to:      order.StatusWaitingParts,
			version: 3,
			setupMock: func(repo *order.MockRepository, policy *order.MockNotifyPolicy, o *order.Order) {
				repo.EXPECT().GetOrder(gomock.Any(), o.ID).Return(o, nil)
				repo.EXPECT().UpdateStatus(gomock.Any(), o.ID, order.StatusWaitingParts, 3).Return(nil)
				policy.EXPECT().NotifySet(gomock.Any(), storeID).
					Return([]order.Status{order.StatusWaitingParts, order.StatusDone}, nil)
			},
			wantCalls: 1,
		},
		{
			name:    "DispatchFailureIsAWarning",
			to:      order.StatusWaitingParts,
			version: 3,
			setupMock: func(repo *order.MockRepository, policy *order.MockNotifyPolicy, o *order.Order) {
				repo.EXPECT().GetOrder(gomock.Any(), o.ID).Return(o, nil)
				repo.EXPECT().UpdateStatus(gomock.Any(), o.ID, order.StatusWaitingParts, 3).Return(nil)
				policy.EXPECT().NotifySet(gomock.Any(), storeID).
					Return([]order.Status{order.StatusWaitingParts}, nil)
			},
			dispatch:     errors.New("webhook down"),
			wantWarnings: 1,
			wantCalls:    1,
		},
		{
			name:    "DoneRequiresCompletionCommand",
			to:      order.StatusDone,
			version: 3,
			setupMock: func(repo *order.MockRepository, policy *order.MockNotifyPolicy, o *order.Order) {
				repo.EXPECT().GetOrder(gomock.Any(), o.ID).Return(o, nil)
			},
			wantErr: order.ErrCompletionRequired,
		},
		{
			name:    "TerminalOrderRejected",
			to:      order.StatusInProgress,
			version: 3,
			setupMock: func(repo *order.MockRepository, policy *order.MockNotifyPolicy, o *order.Order) {
				o.Status = order.StatusDelivered
				repo.EXPECT().GetOrder(gomock.Any(), o.ID).Return(o, nil)
			},
			wantErr: &order.InvalidTransitionError{},
		},
		{
			name:    "VersionConflict",
			to:      order.StatusWaitingParts,
			version: 2,
			setupMock: func(repo *order.MockRepository, policy *order.MockNotifyPolicy, o *order.Order) {
				repo.EXPECT().GetOrder(gomock.Any(), o.ID).Return(o, nil)
				repo.EXPECT().UpdateStatus(gomock.Any(), o.ID, order.StatusWaitingParts, 2).Return(order.ErrConflict)
			},
			wantErr: order.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := order.NewMockRepository(ctrl)
			policy := order.NewMockNotifyPolicy(ctrl)
			dispatcher := &dispatcherStub{err: tt.dispatch}

			o := openOrder(storeID)
			if tt.setupMock != nil {
				tt.setupMock(repo, policy, o)
			}

			svc := order.NewService(repo, billing.NewMockConfigSource(ctrl), policy, dispatcher)

			got, warnings, err := svc.Transition(context.Background(), o.ID, tt.to, tt.version)

			if tt.wantErr != nil {
				require.Error(t, err)

				var transitionErr *order.InvalidTransitionError
				if errors.As(tt.wantErr, &transitionErr) {
					assert.ErrorAs(t, err, &transitionErr)
				} else {
					assert.ErrorIs(t, err, tt.wantErr)
				}

				assert.Zero(t, dispatcher.calls, "failed transitions must not notify")

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.to, got.Status)
			assert.Equal(t, 4, got.Version)
			assert.Len(t, warnings, tt.wantWarnings)
			assert.Equal(t, tt.wantCalls, dispatcher.calls)
		})
	}
}

func TestService_CompleteWithInvoice(t *testing.T) {
	storeID := uuid.New()

	lines := []billing.LineItem{{Description: "Displaytausch", Amount: 11900}}

	t.Run("Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := order.NewMockRepository(ctrl)
		tx := order.NewMockCompleteTx(ctrl)
		cfg := billing.NewMockConfigSource(ctrl)
		policy := order.NewMockNotifyPolicy(ctrl)

		o := openOrder(storeID)

		repo.EXPECT().GetOrder(gomock.Any(), o.ID).Return(o, nil)
		cfg.EXPECT().BillingConfig(gomock.Any(), storeID).Return(storeConfig(), nil)
		repo.EXPECT().BeginComplete(gomock.Any(), storeID).Return(tx, nil)
		tx.EXPECT().CompleteOrder(gomock.Any(), o.ID, 3, int64(11900), lines).Return(nil)
		tx.EXPECT().NumberExists(gomock.Any(), storeID, billing.DocTypeInvoice, "RE-0005").Return(false, nil)
		tx.EXPECT().SetNextNumber(gomock.Any(), storeID, billing.DocTypeInvoice, 6).Return(nil)
		// Exactly one document for one completion.
		tx.EXPECT().InsertDocument(gomock.Any(), gomock.Any()).Return(nil).Times(1)
		tx.EXPECT().Commit().Return(nil)
		tx.EXPECT().Rollback().Return(nil).AnyTimes()
		policy.EXPECT().NotifySet(gomock.Any(), storeID).Return(nil, nil)

		svc := order.NewService(repo, cfg, policy, &dispatcherStub{})

		result, err := svc.CompleteWithInvoice(context.Background(), order.CompleteParams{
			OrderID: o.ID,
			Version: 3,
			Lines:   lines,
		})
		require.NoError(t, err)

		assert.Equal(t, order.StatusDone, result.Order.Status)
		assert.Equal(t, 4, result.Order.Version)
		require.NotNil(t, result.Order.FinalCost)
		assert.Equal(t, int64(11900), *result.Order.FinalCost)

		require.NotNil(t, result.Invoice)
		assert.Equal(t, "RE-0005", result.Invoice.Number)
		assert.Equal(t, int64(10000), result.Invoice.NetAmount)
		require.NotNil(t, result.Invoice.OrderID)
		assert.Equal(t, o.ID, *result.Invoice.OrderID)
	})

	t.Run("DuplicateNumberRollsBack", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := order.NewMockRepository(ctrl)
		tx := order.NewMockCompleteTx(ctrl)
		cfg := billing.NewMockConfigSource(ctrl)

		o := openOrder(storeID)

		repo.EXPECT().GetOrder(gomock.Any(), o.ID).Return(o, nil)
		cfg.EXPECT().BillingConfig(gomock.Any(), storeID).Return(storeConfig(), nil)
		repo.EXPECT().BeginComplete(gomock.Any(), storeID).Return(tx, nil)
		tx.EXPECT().CompleteOrder(gomock.Any(), o.ID, 3, int64(11900), lines).Return(nil)
		tx.EXPECT().NumberExists(gomock.Any(), storeID, billing.DocTypeInvoice, "RE-0005").Return(true, nil)
		tx.EXPECT().NumberExists(gomock.Any(), storeID, billing.DocTypeInvoice, "RE-0006").Return(false, nil)
		tx.EXPECT().SetNextNumber(gomock.Any(), storeID, billing.DocTypeInvoice, 7).Return(nil)
		tx.EXPECT().InsertDocument(gomock.Any(), gomock.Any()).Return(nil)
		tx.EXPECT().Commit().Return(nil)
		tx.EXPECT().Rollback().Return(nil).AnyTimes()

		policy := order.NewMockNotifyPolicy(ctrl)
		policy.EXPECT().NotifySet(gomock.Any(), storeID).Return(nil, nil)

		svc := order.NewService(repo, cfg, policy, &dispatcherStub{})

		result, err := svc.CompleteWithInvoice(context.Background(), order.CompleteParams{
			OrderID: o.ID,
			Version: 3,
			Lines:   lines,
		})
		require.NoError(t, err)

		// A taken synthesized number is skipped, not an error.
		assert.Equal(t, "RE-0006", result.Invoice.Number)
	})

	t.Run("ExplicitDuplicateFails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := order.NewMockRepository(ctrl)
		tx := order.NewMockCompleteTx(ctrl)
		cfg := billing.NewMockConfigSource(ctrl)

		o := openOrder(storeID)

		repo.EXPECT().GetOrder(gomock.Any(), o.ID).Return(o, nil)
		cfg.EXPECT().BillingConfig(gomock.Any(), storeID).Return(storeConfig(), nil)
		repo.EXPECT().BeginComplete(gomock.Any(), storeID).Return(tx, nil)
		tx.EXPECT().CompleteOrder(gomock.Any(), o.ID, 3, int64(11900), lines).Return(nil)
		tx.EXPECT().NumberExists(gomock.Any(), storeID, billing.DocTypeInvoice, "RE-0009").Return(true, nil)
		tx.EXPECT().Rollback().Return(nil).AnyTimes()

		svc := order.NewService(repo, cfg, order.NewMockNotifyPolicy(ctrl), &dispatcherStub{})

		_, err := svc.CompleteWithInvoice(context.Background(), order.CompleteParams{
			OrderID: o.ID,
			Version: 3,
			Lines:   lines,
			Number:  "RE-0009",
		})

		var dupErr *billing.DuplicateNumberError
		require.ErrorAs(t, err, &dupErr)
		assert.Equal(t, "RE-0009", dupErr.Number)
	})

	t.Run("VersionConflict", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := order.NewMockRepository(ctrl)
		tx := order.NewMockCompleteTx(ctrl)
		cfg := billing.NewMockConfigSource(ctrl)

		o := openOrder(storeID)

		repo.EXPECT().GetOrder(gomock.Any(), o.ID).Return(o, nil)
		cfg.EXPECT().BillingConfig(gomock.Any(), storeID).Return(storeConfig(), nil)
		repo.EXPECT().BeginComplete(gomock.Any(), storeID).Return(tx, nil)
		tx.EXPECT().CompleteOrder(gomock.Any(), o.ID, 2, int64(11900), lines).Return(order.ErrConflict)
		tx.EXPECT().Rollback().Return(nil).AnyTimes()

		svc := order.NewService(repo, cfg, order.NewMockNotifyPolicy(ctrl), &dispatcherStub{})

		_, err := svc.CompleteWithInvoice(context.Background(), order.CompleteParams{
			OrderID: o.ID,
			Version: 2,
			Lines:   lines,
		})
		assert.ErrorIs(t, err, order.ErrConflict)
	})

	t.Run("TerminalOrderRejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := order.NewMockRepository(ctrl)

		o := openOrder(storeID)
		o.Status = order.StatusCancelled

		repo.EXPECT().GetOrder(gomock.Any(), o.ID).Return(o, nil)

		svc := order.NewService(repo, billing.NewMockConfigSource(ctrl), order.NewMockNotifyPolicy(ctrl), &dispatcherStub{})

		_, err := svc.CompleteWithInvoice(context.Background(), order.CompleteParams{
			OrderID: o.ID,
			Lines:   lines,
		})

		var transitionErr *order.InvalidTransitionError
		assert.ErrorAs(t, err, &transitionErr)
	})

	t.Run("RepeatedCompletionRejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := order.NewMockRepository(ctrl)

		o := openOrder(storeID)
		o.Status = order.StatusDone
		o.Version = 4

		repo.EXPECT().GetOrder(gomock.Any(), o.ID).Return(o, nil)
		// No BeginComplete: a second completion request must not open a
		// transaction, let alone insert a second invoice.

		svc := order.NewService(repo, billing.NewMockConfigSource(ctrl), order.NewMockNotifyPolicy(ctrl), &dispatcherStub{})

		_, err := svc.CompleteWithInvoice(context.Background(), order.CompleteParams{
			OrderID: o.ID,
			Lines:   lines,
		})

		var transitionErr *order.InvalidTransitionError
		require.ErrorAs(t, err, &transitionErr)
		assert.Equal(t, order.StatusDone, transitionErr.From)
	})

	t.Run("EmptyLinesRejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := order.NewMockRepository(ctrl)

		o := openOrder(storeID)
		repo.EXPECT().GetOrder(gomock.Any(), o.ID).Return(o, nil)

		svc := order.NewService(repo, billing.NewMockConfigSource(ctrl), order.NewMockNotifyPolicy(ctrl), &dispatcherStub{})

		_, err := svc.CompleteWithInvoice(context.Background(), order.CompleteParams{OrderID: o.ID})
		assert.ErrorIs(t, err, billing.ErrNoLineItems)
	})
}

func TestService_CompleteWithoutInvoice(t *testing.T) {
	storeID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := order.NewMockRepository(ctrl)
		policy := order.NewMockNotifyPolicy(ctrl)

		o := openOrder(storeID)

		repo.EXPECT().GetOrder(gomock.Any(), o.ID).Return(o, nil)
		repo.EXPECT().UpdateStatus(gomock.Any(), o.ID, order.StatusDone, 3).Return(nil)
		policy.EXPECT().NotifySet(gomock.Any(), storeID).Return(nil, nil)

		svc := order.NewService(repo, billing.NewMockConfigSource(ctrl), policy, &dispatcherStub{})

		result, err := svc.CompleteWithoutInvoice(context.Background(), o.ID, 3)
		require.NoError(t, err)

		assert.Equal(t, order.StatusDone, result.Order.Status)
		assert.Nil(t, result.Invoice, "skipping the invoice must create no document")
		assert.Nil(t, result.Order.FinalCost)
	})

	t.Run("RepeatedCompletionRejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := order.NewMockRepository(ctrl)

		o := openOrder(storeID)
		o.Status = order.StatusDone
		o.Version = 4

		repo.EXPECT().GetOrder(gomock.Any(), o.ID).Return(o, nil)

		svc := order.NewService(repo, billing.NewMockConfigSource(ctrl), order.NewMockNotifyPolicy(ctrl), &dispatcherStub{})

		_, err := svc.CompleteWithoutInvoice(context.Background(), o.ID, 0)

		var transitionErr *order.InvalidTransitionError
		require.ErrorAs(t, err, &transitionErr)
		assert.Equal(t, order.StatusDone, transitionErr.From)
	})
}
