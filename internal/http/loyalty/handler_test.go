package loyalty_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	loyaltyHttp "github.com/tobiaswld/werkstatt/internal/http/loyalty"
	"github.com/tobiaswld/werkstatt/internal/loyalty"
)

func TestHandler_Reject(t *testing.T) {
	orderID := uuid.New()

	type testCase struct {
		name       string
		body       string
		setupMock  func(repo *loyalty.MockRepository, tx *loyalty.MockDecisionTx)
		wantStatus int
	}

	tests := []testCase{
		{
			name: "Success",
			body: `{"reason":"Punkte bereits eingelöst"}`,
			setupMock: func(repo *loyalty.MockRepository, tx *loyalty.MockDecisionTx) {
				repo.EXPECT().BeginDecision(gomock.Any(), orderID).Return(tx, nil)
				tx.EXPECT().Decision(gomock.Any()).Return(&loyalty.Decision{OrderID: orderID}, nil)
				tx.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
				tx.EXPECT().Commit().Return(nil)
				tx.EXPECT().Rollback().Return(nil).AnyTimes()
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "EmptyReason",
			body:       `{"reason":""}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			// Rejecting a granted reward is a lifecycle violation, the same
			// class as an order or document transition error.
			name: "AlreadyApproved",
			body: `{"reason":"versehentlich genehmigt"}`,
			setupMock: func(repo *loyalty.MockRepository, tx *loyalty.MockDecisionTx) {
				repo.EXPECT().BeginDecision(gomock.Any(), orderID).Return(tx, nil)
				tx.EXPECT().Decision(gomock.Any()).
					Return(&loyalty.Decision{OrderID: orderID, Approved: true}, nil)
				tx.EXPECT().Rollback().Return(nil).AnyTimes()
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := loyalty.NewMockRepository(ctrl)
			tx := loyalty.NewMockDecisionTx(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo, tx)
			}

			r := chi.NewRouter()
			loyaltyHttp.NewHandler(loyalty.NewService(repo)).Routes(r)

			req := httptest.NewRequest(http.MethodPost, "/orders/"+orderID.String()+"/reject", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
