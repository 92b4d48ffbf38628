package transaction

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/app-despesas/internal/lib/apperr"
	"github.com/magabrotheeeer/app-despesas/internal/lib/sl"
	"github.com/magabrotheeeer/app-despesas/internal/models"
)

type repoMock struct {
	mock.Mock
}

func (m *repoMock) CreateTransaction(ctx context.Context, t models.Transaction) (*models.Transaction, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *repoMock) GetTransaction(ctx context.Context, userID, id string) (*models.Transaction, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *repoMock) ListTransactions(ctx context.Context, userID string, f models.TransactionFilter) ([]models.Transaction, int, error) {
	args := m.Called(ctx, userID, f)
	return args.Get(0).([]models.Transaction), args.Int(1), args.Error(2)
}

func (m *repoMock) TransactionTotals(ctx context.Context, userID string, f models.TransactionFilter) (models.Totals, error) {
	args := m.Called(ctx, userID, f)
	return args.Get(0).(models.Totals), args.Error(1)
}

func (m *repoMock) ExpensesByCategory(ctx context.Context, userID string, from, to *time.Time) ([]models.CategoryTotal, error) {
	args := m.Called(ctx, userID, from, to)
	return args.Get(0).([]models.CategoryTotal), args.Error(1)
}

func (m *repoMock) UpdateTransaction(ctx context.Context, t models.Transaction) (*models.Transaction, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *repoMock) DeleteTransaction(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

var day = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

const txID = "5f0c2b8e-9a43-4c1e-8d6a-2b7f3e1c9a10"

func TestService_Create(t *testing.T) {
	tests := []struct {
		name    string
		input   models.Transaction
		wantErr bool
	}{
		{
			name:  "valid expense",
			input: models.Transaction{Type: models.TypeExpense, AmountCents: 1250, Description: " Mercado ", Category: "food", OccurredOn: day.Add(15 * time.Hour)},
		},
		{
			name:    "unknown type",
			input:   models.Transaction{Type: "gift", AmountCents: 100, Description: "x", OccurredOn: day},
			wantErr: true,
		},
		{
			name:    "zero amount",
			input:   models.Transaction{Type: models.TypeIncome, AmountCents: 0, Description: "x", OccurredOn: day},
			wantErr: true,
		},
		{
			name:    "blank description",
			input:   models.Transaction{Type: models.TypeIncome, AmountCents: 10, Description: "   ", OccurredOn: day},
			wantErr: true,
		},
		{
			name:    "missing date",
			input:   models.Transaction{Type: models.TypeIncome, AmountCents: 10, Description: "salary"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(repoMock)
			svc := NewService(repo, sl.Discard())
			if !tt.wantErr {
				repo.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(tr models.Transaction) bool {
					return tr.UserID == "u-1" && tr.Description == "Mercado" && tr.OccurredOn.Equal(day)
				})).Return(&models.Transaction{ID: txID}, nil).Once()
			}

			got, err := svc.Create(context.Background(), "u-1", tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrValidation)
			} else {
				require.NoError(t, err)
				assert.Equal(t, txID, got.ID)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestService_List_DefaultsAndSummary(t *testing.T) {
	repo := new(repoMock)
	svc := NewService(repo, sl.Discard())

	want := models.TransactionFilter{Search: "uber", Page: models.Page{Page: 1, Limit: MaxLimit}}
	items := []models.Transaction{{ID: txID}, {ID: "t-2"}}
	totals := models.Totals{TotalIncome: 5000, TotalExpense: 1500, Balance: 3500}
	repo.On("ListTransactions", mock.Anything, "u-1", want).Return(items, 120, nil).Once()
	repo.On("TransactionTotals", mock.Anything, "u-1", want).Return(totals, nil).Once()

	got, err := svc.List(context.Background(), "u-1", models.TransactionFilter{
		Search: "  uber ",
		Page:   models.Page{Limit: 500},
	})
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)
	assert.Equal(t, models.Pagination{Page: 1, Limit: 100, Total: 120, TotalPages: 2}, got.Pagination)
	assert.Equal(t, totals, got.Summary)
	repo.AssertExpectations(t)
}

func TestService_List_InvalidPeriod(t *testing.T) {
	svc := NewService(new(repoMock), sl.Discard())
	from, to := day, day.Add(-48*time.Hour)

	_, err := svc.List(context.Background(), "u-1", models.TransactionFilter{From: &from, To: &to})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestService_Update(t *testing.T) {
	repo := new(repoMock)
	svc := NewService(repo, sl.Discard())

	existing := &models.Transaction{ID: txID, UserID: "u-1", Type: models.TypeExpense,
		AmountCents: 1000, Description: "Cinema", OccurredOn: day}
	repo.On("GetTransaction", mock.Anything, "u-1", txID).Return(existing, nil).Once()
	repo.On("UpdateTransaction", mock.Anything, mock.MatchedBy(func(tr models.Transaction) bool {
		return tr.AmountCents == 1500 && tr.Description == "Cinema"
	})).Return(&models.Transaction{ID: txID, AmountCents: 1500}, nil).Once()

	amount := int64(1500)
	got, err := svc.Update(context.Background(), "u-1", txID, models.TransactionPatch{AmountCents: &amount})
	require.NoError(t, err)
	assert.EqualValues(t, 1500, got.AmountCents)
	repo.AssertExpectations(t)
}

func TestService_ForeignTransactionIsNotFound(t *testing.T) {
	repo := new(repoMock)
	svc := NewService(repo, sl.Discard())
	repo.On("GetTransaction", mock.Anything, "u-2", txID).Return(nil, apperr.ErrNotFound).Once()
	repo.On("DeleteTransaction", mock.Anything, "u-2", txID).Return(apperr.ErrNotFound).Once()

	_, err := svc.Get(context.Background(), "u-2", txID)
	assert.ErrorIs(t, err, apperr.ErrTransactionNotFound)

	err = svc.Delete(context.Background(), "u-2", txID)
	assert.ErrorIs(t, err, apperr.ErrTransactionNotFound)
	repo.AssertExpectations(t)
}

func TestService_MalformedIDIsNotFound(t *testing.T) {
	repo := new(repoMock)
	svc := NewService(repo, sl.Discard())
	amount := int64(100)

	_, err := svc.Get(context.Background(), "u-1", "abc")
	assert.ErrorIs(t, err, apperr.ErrTransactionNotFound)

	_, err = svc.Update(context.Background(), "u-1", "abc", models.TransactionPatch{AmountCents: &amount})
	assert.ErrorIs(t, err, apperr.ErrTransactionNotFound)

	err = svc.Delete(context.Background(), "u-1", "123")
	assert.ErrorIs(t, err, apperr.ErrTransactionNotFound)

	repo.AssertNotCalled(t, "GetTransaction", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "DeleteTransaction", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Summary(t *testing.T) {
	repo := new(repoMock)
	svc := NewService(repo, sl.Discard())
	from, to := day.AddDate(0, -1, 0), day

	totals := models.Totals{TotalIncome: 100, TotalExpense: 40, Balance: 60}
	cats := []models.CategoryTotal{{Category: "food", AmountCents: 40, Count: 2}}
	repo.On("TransactionTotals", mock.Anything, "u-1", models.TransactionFilter{From: &from, To: &to}).
		Return(totals, nil).Once()
	repo.On("ExpensesByCategory", mock.Anything, "u-1", &from, &to).Return(cats, nil).Once()

	report, err := svc.Summary(context.Background(), "u-1", &from, &to)
	require.NoError(t, err)
	assert.Equal(t, totals, report.Totals)
	assert.Equal(t, cats, report.ByCategory)
	repo.AssertExpectations(t)
}
