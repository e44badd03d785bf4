package billing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/tobiaswld/werkstatt/internal/billing"
)

func storeConfig() *billing.StoreConfig {
	return &billing.StoreConfig{
		Invoice:    billing.SeriesConfig{Prefix: "RE-", NextNumber: 5},
		Quote:      billing.SeriesConfig{Prefix: "AN-", NextNumber: 1},
		Purchase:   billing.SeriesConfig{Prefix: "EK-", NextNumber: 1},
		VATEnabled: true,
		VATRate:    19,
	}
}

func TestService_Create(t *testing.T) {
	storeID := uuid.New()

	lines := []billing.LineItem{{Description: "Displaytausch", Amount: 11900}}

	type args struct {
		params billing.CreateParams
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(repo *billing.MockRepository, itx *billing.MockIssueTx, cfg *billing.MockConfigSource)
		verify    func(t *testing.T, doc *billing.Document)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "SynthesizedNumber",
			args: args{
				params: billing.CreateParams{
					StoreID: storeID,
					Type:    billing.DocTypeInvoice,
					Lines:   lines,
				},
			},
			setupMock: func(repo *billing.MockRepository, itx *billing.MockIssueTx, cfg *billing.MockConfigSource) {
				cfg.EXPECT().BillingConfig(gomock.Any(), storeID).Return(storeConfig(), nil)
				repo.EXPECT().BeginIssue(gomock.Any(), storeID).Return(itx, nil)
				itx.EXPECT().NumberExists(gomock.Any(), storeID, billing.DocTypeInvoice, "RE-0005").Return(false, nil)
				itx.EXPECT().SetNextNumber(gomock.Any(), storeID, billing.DocTypeInvoice, 6).Return(nil)
				itx.EXPECT().InsertDocument(gomock.Any(), gomock.Any()).Return(nil)
				itx.EXPECT().Commit().Return(nil)
				itx.EXPECT().Rollback().Return(nil).AnyTimes()
			},
			verify: func(t *testing.T, doc *billing.Document) {
				assert.Equal(t, "RE-0005", doc.Number)
				assert.Equal(t, billing.StatusDraft, doc.Status)
				assert.Equal(t, int64(10000), doc.NetAmount)
				assert.Equal(t, int64(1900), doc.VATAmount)
				assert.Equal(t, int64(11900), doc.Total)
				assert.Equal(t, float64(19), doc.VATRate)
				assert.False(t, doc.VATExempt)
			},
		},
		{
			name: "SynthesizedSkipsTakenNumbers",
			args: args{
				params: billing.CreateParams{
					StoreID: storeID,
					Type:    billing.DocTypeInvoice,
					Lines:   lines,
				},
			},
			setupMock: func(repo *billing.MockRepository, itx *billing.MockIssueTx, cfg *billing.MockConfigSource) {
				cfg.EXPECT().BillingConfig(gomock.Any(), storeID).Return(storeConfig(), nil)
				repo.EXPECT().BeginIssue(gomock.Any(), storeID).Return(itx, nil)
				itx.EXPECT().NumberExists(gomock.Any(), storeID, billing.DocTypeInvoice, "RE-0005").Return(true, nil)
				itx.EXPECT().NumberExists(gomock.Any(), storeID, billing.DocTypeInvoice, "RE-0006").Return(false, nil)
				itx.EXPECT().SetNextNumber(gomock.Any(), storeID, billing.DocTypeInvoice, 7).Return(nil)
				itx.EXPECT().InsertDocument(gomock.Any(), gomock.Any()).Return(nil)
				itx.EXPECT().Commit().Return(nil)
				itx.EXPECT().Rollback().Return(nil).AnyTimes()
			},
			verify: func(t *testing.T, doc *billing.Document) {
				assert.Equal(t, "RE-0006", doc.Number)
			},
		},
		{
			name: "ExplicitNumberAdvancesCounter",
			args: args{
				params: billing.CreateParams{
					StoreID: storeID,
					Type:    billing.DocTypeInvoice,
					Number:  "RE-0100",
					Lines:   lines,
				},
			},
			setupMock: func(repo *billing.MockRepository, itx *billing.MockIssueTx, cfg *billing.MockConfigSource) {
				cfg.EXPECT().BillingConfig(gomock.Any(), storeID).Return(storeConfig(), nil)
				repo.EXPECT().BeginIssue(gomock.Any(), storeID).Return(itx, nil)
				itx.EXPECT().NumberExists(gomock.Any(), storeID, billing.DocTypeInvoice, "RE-0100").Return(false, nil)
				itx.EXPECT().SetNextNumber(gomock.Any(), storeID, billing.DocTypeInvoice, 101).Return(nil)
				itx.EXPECT().InsertDocument(gomock.Any(), gomock.Any()).Return(nil)
				itx.EXPECT().Commit().Return(nil)
				itx.EXPECT().Rollback().Return(nil).AnyTimes()
			},
			verify: func(t *testing.T, doc *billing.Document) {
				assert.Equal(t, "RE-0100", doc.Number)
			},
		},
		{
			name: "ExplicitNumberBehindCounterKeepsCounter",
			args: args{
				params: billing.CreateParams{
					StoreID: storeID,
					Type:    billing.DocTypeInvoice,
					Number:  "RE-0002",
					Lines:   lines,
				},
			},
			setupMock: func(repo *billing.MockRepository, itx *billing.MockIssueTx, cfg *billing.MockConfigSource) {
				cfg.EXPECT().BillingConfig(gomock.Any(), storeID).Return(storeConfig(), nil)
				repo.EXPECT().BeginIssue(gomock.Any(), storeID).Return(itx, nil)
				itx.EXPECT().NumberExists(gomock.Any(), storeID, billing.DocTypeInvoice, "RE-0002").Return(false, nil)
				itx.EXPECT().InsertDocument(gomock.Any(), gomock.Any()).Return(nil)
				itx.EXPECT().Commit().Return(nil)
				itx.EXPECT().Rollback().Return(nil).AnyTimes()
			},
			verify: func(t *testing.T, doc *billing.Document) {
				assert.Equal(t, "RE-0002", doc.Number)
			},
		},
		{
			name: "DuplicateExplicitNumber",
			args: args{
				params: billing.CreateParams{
					StoreID: storeID,
					Type:    billing.DocTypeInvoice,
					Number:  "RE-0003",
					Lines:   lines,
				},
			},
			setupMock: func(repo *billing.MockRepository, itx *billing.MockIssueTx, cfg *billing.MockConfigSource) {
				cfg.EXPECT().BillingConfig(gomock.Any(), storeID).Return(storeConfig(), nil)
				repo.EXPECT().BeginIssue(gomock.Any(), storeID).Return(itx, nil)
				itx.EXPECT().NumberExists(gomock.Any(), storeID, billing.DocTypeInvoice, "RE-0003").Return(true, nil)
				itx.EXPECT().Rollback().Return(nil).AnyTimes()
			},
			wantErr: &billing.DuplicateNumberError{Number: "RE-0003"},
		},
		{
			name: "MarkPaid",
			args: args{
				params: billing.CreateParams{
					StoreID:       storeID,
					Type:          billing.DocTypeInvoice,
					Lines:         lines,
					MarkPaid:      true,
					PaymentMethod: billing.PaymentCash,
				},
			},
			setupMock: func(repo *billing.MockRepository, itx *billing.MockIssueTx, cfg *billing.MockConfigSource) {
				cfg.EXPECT().BillingConfig(gomock.Any(), storeID).Return(storeConfig(), nil)
				repo.EXPECT().BeginIssue(gomock.Any(), storeID).Return(itx, nil)
				itx.EXPECT().NumberExists(gomock.Any(), storeID, billing.DocTypeInvoice, "RE-0005").Return(false, nil)
				itx.EXPECT().SetNextNumber(gomock.Any(), storeID, billing.DocTypeInvoice, 6).Return(nil)
				itx.EXPECT().InsertDocument(gomock.Any(), gomock.Any()).Return(nil)
				itx.EXPECT().Commit().Return(nil)
				itx.EXPECT().Rollback().Return(nil).AnyTimes()
			},
			verify: func(t *testing.T, doc *billing.Document) {
				assert.Equal(t, billing.StatusPaid, doc.Status)
				assert.Equal(t, billing.PaymentCash, doc.PaymentMethod)
			},
		},
		{
			name: "NoLines",
			args: args{
				params: billing.CreateParams{
					StoreID: storeID,
					Type:    billing.DocTypeInvoice,
					Lines:   []billing.LineItem{{Description: "", Amount: 0}},
				},
			},
			wantErr: billing.ErrNoLineItems,
		},
		{
			name: "UnknownType",
			args: args{
				params: billing.CreateParams{
					StoreID: storeID,
					Type:    billing.DocType("receipt"),
					Lines:   lines,
				},
			},
			wantErr: billing.ErrBadDocType,
		},
		{
			name: "BadPaymentMethod",
			args: args{
				params: billing.CreateParams{
					StoreID:       storeID,
					Type:          billing.DocTypeInvoice,
					Lines:         lines,
					MarkPaid:      true,
					PaymentMethod: billing.PaymentMethod("barter"),
				},
			},
			wantErr: billing.ErrBadPayment,
		},
		{
			// Quotes never reach paid, so they cannot start there either.
			name: "QuoteCannotStartPaid",
			args: args{
				params: billing.CreateParams{
					StoreID:       storeID,
					Type:          billing.DocTypeQuote,
					Lines:         lines,
					MarkPaid:      true,
					PaymentMethod: billing.PaymentCash,
				},
			},
			wantErr: &billing.InvalidTransitionError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := billing.NewMockRepository(ctrl)
			itx := billing.NewMockIssueTx(ctrl)
			cfg := billing.NewMockConfigSource(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo, itx, cfg)
			}

			svc := billing.NewService(repo, cfg)
			doc, err := svc.Create(context.Background(), tt.args.params)

			if tt.wantErr != nil {
				require.Error(t, err)

				var (
					dupErr        *billing.DuplicateNumberError
					transitionErr *billing.InvalidTransitionError
				)

				switch {
				case errors.As(tt.wantErr, &dupErr):
					var got *billing.DuplicateNumberError
					require.ErrorAs(t, err, &got)
					assert.Equal(t, dupErr.Number, got.Number)
				case errors.As(tt.wantErr, &transitionErr):
					assert.ErrorAs(t, err, &transitionErr)
				default:
					assert.ErrorIs(t, err, tt.wantErr)
				}

				assert.Nil(t, doc)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, doc)

			if tt.verify != nil {
				tt.verify(t, doc)
			}
		})
	}
}

func TestService_TransitionStatus(t *testing.T) {
	id := uuid.New()
	now := time.Now()

	type testCase struct {
		name      string
		status    billing.Status
		method    billing.PaymentMethod
		paidAt    *time.Time
		setupMock func(repo *billing.MockRepository)
		wantErr   bool
	}

	tests := []testCase{
		{
			name:   "SentToPaidKeepsPaymentDetails",
			status: billing.StatusPaid,
			method: billing.PaymentCardDebit,
			paidAt: &now,
			setupMock: func(repo *billing.MockRepository) {
				repo.EXPECT().GetDocument(gomock.Any(), id).
					Return(&billing.Document{ID: id, Type: billing.DocTypeInvoice, Status: billing.StatusSent}, nil)
				repo.EXPECT().UpdateStatus(gomock.Any(), id, billing.StatusPaid, billing.PaymentCardDebit, &now).
					Return(nil)
			},
		},
		{
			name:   "NonPaidTargetDropsPaymentDetails",
			status: billing.StatusSent,
			method: billing.PaymentCash,
			paidAt: &now,
			setupMock: func(repo *billing.MockRepository) {
				repo.EXPECT().GetDocument(gomock.Any(), id).
					Return(&billing.Document{ID: id, Type: billing.DocTypeInvoice, Status: billing.StatusDraft}, nil)
				repo.EXPECT().UpdateStatus(gomock.Any(), id, billing.StatusSent, billing.PaymentMethod(""), nil).
					Return(nil)
			},
		},
		{
			name:   "PaidIsTerminal",
			status: billing.StatusSent,
			setupMock: func(repo *billing.MockRepository) {
				repo.EXPECT().GetDocument(gomock.Any(), id).
					Return(&billing.Document{ID: id, Type: billing.DocTypeInvoice, Status: billing.StatusPaid}, nil)
			},
			wantErr: true,
		},
		{
			name:   "QuoteAccepted",
			status: billing.StatusAccepted,
			setupMock: func(repo *billing.MockRepository) {
				repo.EXPECT().GetDocument(gomock.Any(), id).
					Return(&billing.Document{ID: id, Type: billing.DocTypeQuote, Status: billing.StatusSent}, nil)
				repo.EXPECT().UpdateStatus(gomock.Any(), id, billing.StatusAccepted, billing.PaymentMethod(""), nil).
					Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := billing.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := billing.NewService(repo, billing.NewMockConfigSource(ctrl))
			err := svc.TransitionStatus(context.Background(), id, tt.status, tt.method, tt.paidAt)

			if tt.wantErr {
				var transitionErr *billing.InvalidTransitionError
				assert.ErrorAs(t, err, &transitionErr)

				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_Update(t *testing.T) {
	id := uuid.New()

	t.Run("CancelledIsFrozen", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := billing.NewMockRepository(ctrl)
		repo.EXPECT().GetDocument(gomock.Any(), id).
			Return(&billing.Document{ID: id, Status: billing.StatusCancelled}, nil)

		svc := billing.NewService(repo, billing.NewMockConfigSource(ctrl))

		notes := "late edit"
		_, err := svc.Update(context.Background(), id, billing.UpdateParams{Notes: &notes})
		assert.ErrorIs(t, err, billing.ErrDocumentFrozen)
	})

	t.Run("RecomputesUnderCapturedRegime", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := billing.NewMockRepository(ctrl)
		repo.EXPECT().GetDocument(gomock.Any(), id).Return(&billing.Document{
			ID:      id,
			Status:  billing.StatusDraft,
			VATRate: 19,
			Lines:   []billing.LineItem{{Description: "Akku", Amount: 4990}},
		}, nil)
		repo.EXPECT().UpdateDocument(gomock.Any(), gomock.Any()).Return(nil)

		svc := billing.NewService(repo, billing.NewMockConfigSource(ctrl))

		doc, err := svc.Update(context.Background(), id, billing.UpdateParams{
			Lines: []billing.LineItem{{Description: "Akku und Einbau", Amount: 11900}},
		})
		require.NoError(t, err)

		assert.Equal(t, int64(10000), doc.NetAmount)
		assert.Equal(t, int64(1900), doc.VATAmount)
		assert.Equal(t, int64(11900), doc.Total)
	})
}

func TestService_SuggestNumber(t *testing.T) {
	storeID := uuid.New()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := billing.NewMockRepository(ctrl)
	cfg := billing.NewMockConfigSource(ctrl)

	cfg.EXPECT().BillingConfig(gomock.Any(), storeID).Return(storeConfig(), nil).Times(2)
	repo.EXPECT().ListNumbers(gomock.Any(), storeID, billing.DocTypeInvoice).
		Return([]string{"RE-0001", "RE-0009", "AN-0050"}, nil).Times(2)

	svc := billing.NewService(repo, cfg)

	got, err := svc.SuggestNumber(context.Background(), storeID, billing.DocTypeInvoice)
	require.NoError(t, err)
	assert.Equal(t, "RE-0010", got.Number)
	assert.Equal(t, 10, got.Sequence)

	// Suggesting must not consume the number.
	again, err := svc.SuggestNumber(context.Background(), storeID, billing.DocTypeInvoice)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestService_BulkTransition(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	okID, badID := uuid.New(), uuid.New()

	repo := billing.NewMockRepository(ctrl)
	repo.EXPECT().GetDocument(gomock.Any(), okID).
		Return(&billing.Document{ID: okID, Type: billing.DocTypeInvoice, Status: billing.StatusDraft}, nil)
	repo.EXPECT().UpdateStatus(gomock.Any(), okID, billing.StatusSent, billing.PaymentMethod(""), nil).Return(nil)
	repo.EXPECT().GetDocument(gomock.Any(), badID).Return(nil, billing.ErrNotFound)

	svc := billing.NewService(repo, billing.NewMockConfigSource(ctrl))

	results := svc.BulkTransition(context.Background(), []uuid.UUID{okID, badID}, billing.StatusSent, "", nil)
	require.Len(t, results, 2)

	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, billing.ErrNotFound)
}

func TestService_ImportLegacy(t *testing.T) {
	storeID := uuid.New()

	params := []billing.ImportParams{
		{
			Number:   "RE-0010",
			Type:     billing.DocTypeInvoice,
			Customer: billing.CustomerSnapshot{Name: "Max Müller"},
			Lines:    []billing.LineItem{{Description: "Displaytausch", Amount: 11900}},
			IssuedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			Number:   "AN-0003",
			Type:     billing.DocTypeQuote,
			Customer: billing.CustomerSnapshot{Name: "Erika Schmidt"},
			Lines:    []billing.LineItem{{Description: "Datenrettung", Amount: 123456}},
			IssuedAt: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		},
	}

	t.Run("Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := billing.NewMockRepository(ctrl)
		itx := billing.NewMockIssueTx(ctrl)
		cfg := billing.NewMockConfigSource(ctrl)

		cfg.EXPECT().BillingConfig(gomock.Any(), storeID).Return(storeConfig(), nil)
		repo.EXPECT().BeginIssue(gomock.Any(), storeID).Return(itx, nil)
		itx.EXPECT().NumberExists(gomock.Any(), storeID, billing.DocTypeInvoice, "RE-0010").Return(false, nil)
		itx.EXPECT().NumberExists(gomock.Any(), storeID, billing.DocTypeQuote, "AN-0003").Return(false, nil)
		itx.EXPECT().InsertDocument(gomock.Any(), gomock.Any()).Return(nil).Times(2)
		// Counters advance past the highest imported sequence per series.
		itx.EXPECT().SetNextNumber(gomock.Any(), storeID, billing.DocTypeInvoice, 11).Return(nil)
		itx.EXPECT().SetNextNumber(gomock.Any(), storeID, billing.DocTypeQuote, 4).Return(nil)
		itx.EXPECT().Commit().Return(nil)
		itx.EXPECT().Rollback().Return(nil).AnyTimes()

		svc := billing.NewService(repo, cfg)

		result, err := svc.ImportLegacy(context.Background(), storeID, params)
		require.NoError(t, err)
		require.Len(t, result.Imported, 2)
		assert.Empty(t, result.Conflicts)

		assert.Equal(t, billing.StatusSent, result.Imported[0].Status)
		assert.Equal(t, params[0].IssuedAt, result.Imported[0].CreatedAt)
		assert.Equal(t, int64(10000), result.Imported[0].NetAmount)
	})

	t.Run("ConflictAbortsWholeBatch", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := billing.NewMockRepository(ctrl)
		itx := billing.NewMockIssueTx(ctrl)
		cfg := billing.NewMockConfigSource(ctrl)

		cfg.EXPECT().BillingConfig(gomock.Any(), storeID).Return(storeConfig(), nil)
		repo.EXPECT().BeginIssue(gomock.Any(), storeID).Return(itx, nil)
		itx.EXPECT().NumberExists(gomock.Any(), storeID, billing.DocTypeInvoice, "RE-0010").Return(true, nil)
		itx.EXPECT().NumberExists(gomock.Any(), storeID, billing.DocTypeQuote, "AN-0003").Return(false, nil)
		itx.EXPECT().Rollback().Return(nil).AnyTimes()

		svc := billing.NewService(repo, cfg)

		result, err := svc.ImportLegacy(context.Background(), storeID, params)
		require.NoError(t, err)

		assert.Empty(t, result.Imported)
		require.Len(t, result.Conflicts, 1)
		assert.Equal(t, "RE-0010", result.Conflicts[0].Number)
		require.Len(t, result.New, 1)
		assert.Equal(t, "AN-0003", result.New[0].Number)
	})

	t.Run("EmptyBatch", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc := billing.NewService(billing.NewMockRepository(ctrl), billing.NewMockConfigSource(ctrl))

		result, err := svc.ImportLegacy(context.Background(), storeID, nil)
		require.NoError(t, err)
		assert.Empty(t, result.Imported)
	})
}
