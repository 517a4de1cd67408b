package transaction_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/pfm/internal/account"
	"github.com/MrJamesThe3rd/pfm/internal/transaction"
)

var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

var freeTier = transaction.QuotaPolicy{Limit: 10}

func newService(repo transaction.Repository) *transaction.Service {
	return transaction.NewService(repo, freeTier).WithClock(func() time.Time { return testNow })
}

func validParams() transaction.CreateParams {
	return transaction.CreateParams{
		Email:       " Ana@Example.com ",
		Type:        transaction.TypeExpense,
		Amount:      decimal.NewFromInt(250),
		Description: " Groceries ",
		Category:    " Food ",
	}
}

func TestService_Create(t *testing.T) {
	type testCase struct {
		name      string
		params    transaction.CreateParams
		setupMock func(repo *transaction.MockRepository, dbTx *transaction.MockCreateTx)
		wantUsage *account.Usage
		wantErr   error
	}

	tests := []testCase{
		{
			name:   "LastFreeSlot",
			params: validParams(),
			setupMock: func(repo *transaction.MockRepository, dbTx *transaction.MockCreateTx) {
				repo.EXPECT().BeginCreate(gomock.Any()).Return(dbTx, nil)
				dbTx.EXPECT().RefreshUsage(gomock.Any(), "ana@example.com", testNow).Return(nil)
				dbTx.EXPECT().ReserveSlot(gomock.Any(), "ana@example.com", freeTier).
					Return(account.Reservation{Applied: true, Used: 10}, nil)
				dbTx.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
						assert.Equal(t, "ana@example.com", tx.Email)
						assert.Equal(t, "Groceries", tx.Description)
						assert.Equal(t, "Food", tx.Category)
						assert.Equal(t, testNow, tx.Date)

						tx.ID = uuid.New()

						return nil
					})
				dbTx.EXPECT().Commit().Return(nil)
				dbTx.EXPECT().Rollback().Return(nil)
			},
			wantUsage: &account.Usage{Used: 10, Limit: 10, Remaining: 0},
		},
		{
			name:   "PremiumIsNotGated",
			params: validParams(),
			setupMock: func(repo *transaction.MockRepository, dbTx *transaction.MockCreateTx) {
				repo.EXPECT().BeginCreate(gomock.Any()).Return(dbTx, nil)
				dbTx.EXPECT().RefreshUsage(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				dbTx.EXPECT().ReserveSlot(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(account.Reservation{Applied: true, Premium: true, Used: 57}, nil)
				dbTx.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
						tx.ID = uuid.New()
						return nil
					})
				dbTx.EXPECT().Commit().Return(nil)
				dbTx.EXPECT().Rollback().Return(nil)
			},
		},
		{
			name:   "InvalidType",
			params: func() transaction.CreateParams { p := validParams(); p.Type = "loan"; return p }(),
			wantErr: &transaction.ValidationError{
				Field:   "type",
				Message: "Invalid transaction type. Must be income, expense, or savings.",
			},
		},
		{
			name:    "NegativeAmount",
			params:  func() transaction.CreateParams { p := validParams(); p.Amount = decimal.NewFromInt(-1); return p }(),
			wantErr: &transaction.ValidationError{Field: "amount", Message: "Amount must be positive."},
		},
		{
			name:    "TooManyDecimals",
			params:  func() transaction.CreateParams { p := validParams(); p.Amount = decimal.RequireFromString("12.345"); return p }(),
			wantErr: &transaction.ValidationError{Field: "amount", Message: "Amount can have at most 2 decimal places."},
		},
		{
			name:    "TinyExponent",
			params:  func() transaction.CreateParams { p := validParams(); p.Amount = decimal.RequireFromString("1e-10000000"); return p }(),
			wantErr: &transaction.ValidationError{Field: "amount", Message: "Amount can have at most 2 decimal places."},
		},
		{
			name:    "TooLarge",
			params:  func() transaction.CreateParams { p := validParams(); p.Amount = decimal.New(1, 12); return p }(),
			wantErr: &transaction.ValidationError{Field: "amount", Message: "Amount must be less than 1000000000000."},
		},
		{
			name:    "HugeExponent",
			params:  func() transaction.CreateParams { p := validParams(); p.Amount = decimal.RequireFromString("1e10000000"); return p }(),
			wantErr: &transaction.ValidationError{Field: "amount", Message: "Amount must be less than 1000000000000."},
		},
		{
			name:    "BlankCategory",
			params:  func() transaction.CreateParams { p := validParams(); p.Category = "   "; return p }(),
			wantErr: &transaction.ValidationError{Field: "category", Message: "Category is required."},
		},
		{
			name:   "AccountMissing",
			params: validParams(),
			setupMock: func(repo *transaction.MockRepository, dbTx *transaction.MockCreateTx) {
				repo.EXPECT().BeginCreate(gomock.Any()).Return(dbTx, nil)
				dbTx.EXPECT().RefreshUsage(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				dbTx.EXPECT().ReserveSlot(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(account.Reservation{}, account.ErrNotFound)
				dbTx.EXPECT().Rollback().Return(nil)
			},
			wantErr: account.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := transaction.NewMockRepository(ctrl)
			createTx := transaction.NewMockCreateTx(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo, createTx)
			}

			got, err := newService(repo).Create(context.Background(), tt.params)

			if tt.wantErr != nil {
				var ve *transaction.ValidationError
				if errors.As(tt.wantErr, &ve) {
					assert.Equal(t, tt.wantErr, err)
				} else {
					assert.ErrorIs(t, err, tt.wantErr)
				}

				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, got.Transaction)
			assert.NotEqual(t, uuid.Nil, got.Transaction.ID)
			assert.Equal(t, tt.wantUsage, got.Usage)
		})
	}
}

func TestService_Create_QuotaExceeded(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)
	createTx := transaction.NewMockCreateTx(ctrl)

	repo.EXPECT().BeginCreate(gomock.Any()).Return(createTx, nil)
	createTx.EXPECT().RefreshUsage(gomock.Any(), "ana@example.com", testNow).Return(nil)
	createTx.EXPECT().ReserveSlot(gomock.Any(), "ana@example.com", freeTier).
		Return(account.Reservation{Applied: false, Used: 10}, nil)
	// The month reset must survive the rejection.
	createTx.EXPECT().Commit().Return(nil)
	createTx.EXPECT().Rollback().Return(nil)

	got, err := newService(repo).Create(context.Background(), validParams())

	require.Error(t, err)
	assert.Nil(t, got)

	qe, ok := transaction.IsQuotaExceeded(err)
	require.True(t, ok)
	assert.Equal(t, account.Usage{Used: 10, Limit: 10, Remaining: 0}, qe.Usage)
}

func TestService_Create_ExplicitDate(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)
	createTx := transaction.NewMockCreateTx(ctrl)

	date := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	params := validParams()
	params.Date = &date

	repo.EXPECT().BeginCreate(gomock.Any()).Return(createTx, nil)
	createTx.EXPECT().RefreshUsage(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	createTx.EXPECT().ReserveSlot(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(account.Reservation{Applied: true, Used: 1}, nil)
	createTx.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
			assert.Equal(t, date, tx.Date)
			return nil
		})
	createTx.EXPECT().Commit().Return(nil)
	createTx.EXPECT().Rollback().Return(nil)

	got, err := newService(repo).Create(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, &account.Usage{Used: 1, Limit: 10, Remaining: 9}, got.Usage)
}

func TestService_Update(t *testing.T) {
	id := uuid.New()

	existing := func() *transaction.Transaction {
		return &transaction.Transaction{
			ID:          id,
			Email:       "ana@example.com",
			Type:        transaction.TypeExpense,
			Amount:      decimal.NewFromInt(100),
			Description: "Lunch",
			Category:    "Food",
			Date:        testNow,
		}
	}

	type testCase struct {
		name      string
		params    transaction.UpdateParams
		setupMock func(m *transaction.MockRepository)
		want      *transaction.Transaction
		wantErr   bool
		errIs     error
	}

	tests := []testCase{
		{
			name:   "PartialUpdate",
			params: transaction.UpdateParams{Amount: new(decimal.NewFromInt(120)), Category: new(" Dining ")},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetTransaction(gomock.Any(), "ana@example.com", id).Return(existing(), nil)
				m.EXPECT().UpdateTransaction(gomock.Any(), gomock.Any()).Return(nil)
			},
			want: func() *transaction.Transaction {
				tx := existing()
				tx.Amount = decimal.NewFromInt(120)
				tx.Category = "Dining"

				return tx
			}(),
		},
		{
			name:   "NotOwned",
			params: transaction.UpdateParams{Description: new("x")},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetTransaction(gomock.Any(), "ana@example.com", id).Return(nil, transaction.ErrNotFound)
			},
			wantErr: true,
			errIs:   transaction.ErrNotFound,
		},
		{
			name:   "InvalidType",
			params: transaction.UpdateParams{Type: new(transaction.Type("gift"))},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetTransaction(gomock.Any(), gomock.Any(), id).Return(existing(), nil)
			},
			wantErr: true,
		},
		{
			name:   "AmountTooPrecise",
			params: transaction.UpdateParams{Amount: new(decimal.RequireFromString("0.001"))},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetTransaction(gomock.Any(), gomock.Any(), id).Return(existing(), nil)
			},
			wantErr: true,
		},
		{
			name:   "AmountTooLarge",
			params: transaction.UpdateParams{Amount: new(decimal.RequireFromString("1e15"))},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetTransaction(gomock.Any(), gomock.Any(), id).Return(existing(), nil)
			},
			wantErr: true,
		},
		{
			name:   "AmountTrailingZeros",
			params: transaction.UpdateParams{Amount: new(decimal.RequireFromString("999999999999.990"))},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetTransaction(gomock.Any(), "ana@example.com", id).Return(existing(), nil)
				m.EXPECT().UpdateTransaction(gomock.Any(), gomock.Any()).Return(nil)
			},
			want: func() *transaction.Transaction {
				tx := existing()
				tx.Amount = decimal.RequireFromString("999999999999.99")

				return tx
			}(),
		},
		{
			name:   "BlankDescription",
			params: transaction.UpdateParams{Description: new("  ")},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetTransaction(gomock.Any(), gomock.Any(), id).Return(existing(), nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := transaction.NewMockRepository(ctrl)
			tt.setupMock(repo)

			got, err := newService(repo).Update(context.Background(), "ANA@example.com", id, tt.params)

			if tt.wantErr {
				require.Error(t, err)

				if tt.errIs != nil {
					assert.ErrorIs(t, err, tt.errIs)
				}

				return
			}

			require.NoError(t, err)
			assert.True(t, tt.want.Amount.Equal(got.Amount))
			assert.Equal(t, tt.want.Category, got.Category)
			assert.Equal(t, tt.want.Description, got.Description)
		})
	}
}

func TestService_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)
	id := uuid.New()

	repo.EXPECT().DeleteTransaction(gomock.Any(), "ana@example.com", id).Return(transaction.ErrNotFound)

	err := newService(repo).Delete(context.Background(), "Ana@Example.com", id)
	assert.ErrorIs(t, err, transaction.ErrNotFound)
}

func TestService_DeleteAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)

	repo.EXPECT().DeleteAll(gomock.Any(), "ana@example.com").Return(int64(4), nil)

	n, err := newService(repo).DeleteAll(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)

	kind := transaction.TypeIncome
	filter := transaction.ListFilter{Type: &kind}
	want := []*transaction.Transaction{{ID: uuid.New(), Type: transaction.TypeIncome}}

	repo.EXPECT().ListTransactions(gomock.Any(), "ana@example.com", filter).Return(want, nil)

	got, err := newService(repo).List(context.Background(), " ana@example.com", filter)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
