package payment_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/pfm/internal/account"
	"github.com/MrJamesThe3rd/pfm/internal/payment"
)

const testSecret = "s3cr3t"

var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func referenceSignature(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))

	return hex.EncodeToString(mac.Sum(nil))
}

func TestSign(t *testing.T) {
	got := payment.Sign(testSecret, "order_1", "pay_1")

	assert.Equal(t, referenceSignature(testSecret, "order_1|pay_1"), got)
	assert.Len(t, got, 64)
}

func TestVerifySignature(t *testing.T) {
	valid := payment.Sign(testSecret, "order_1", "pay_1")

	type testCase struct {
		name      string
		orderID   string
		paymentID string
		signature string
		want      bool
	}

	tests := []testCase{
		{name: "Valid", orderID: "order_1", paymentID: "pay_1", signature: valid, want: true},
		{name: "SwappedIDs", orderID: "pay_1", paymentID: "order_1", signature: valid},
		{name: "Tampered", orderID: "order_1", paymentID: "pay_2", signature: valid},
		{name: "Uppercase", orderID: "order_1", paymentID: "pay_1", signature: "A" + valid[1:]},
		{name: "Empty", orderID: "order_1", paymentID: "pay_1", signature: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, payment.VerifySignature(testSecret, tt.orderID, tt.paymentID, tt.signature))
		})
	}
}

func newService(t *testing.T) (*payment.Service, *payment.MockGateway, *payment.MockPremium) {
	ctrl := gomock.NewController(t)
	gw := payment.NewMockGateway(ctrl)
	premium := payment.NewMockPremium(ctrl)

	svc := payment.NewService(gw, premium, payment.Config{
		KeySecret: testSecret,
		Price:     35282,
		Currency:  "INR",
	}).WithClock(func() time.Time { return testNow })

	return svc, gw, premium
}

func TestService_CreateOrder(t *testing.T) {
	svc, gw, _ := newService(t)

	gw.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req payment.OrderRequest) (*payment.Order, error) {
			assert.Equal(t, int64(35282), req.Amount)
			assert.Equal(t, "INR", req.Currency)
			assert.Equal(t, "receipt_1710496800000", req.Receipt)
			assert.Equal(t, "ana@example.com", req.Notes["email"])
			assert.NotEmpty(t, req.Notes["description"])

			return &payment.Order{ID: "order_1", Amount: req.Amount, Currency: req.Currency}, nil
		})

	order, err := svc.CreateOrder(context.Background(), "Ana@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "order_1", order.ID)
}

func TestService_CreateOrder_GatewayError(t *testing.T) {
	svc, gw, _ := newService(t)
	upstream := errors.New("boom")

	gw.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).Return(nil, upstream)

	_, err := svc.CreateOrder(context.Background(), "ana@example.com")
	assert.ErrorIs(t, err, upstream)
}

func TestService_Verify(t *testing.T) {
	end := testNow.Add(account.PremiumDuration)

	type testCase struct {
		name      string
		cb        payment.Callback
		setupMock func(m *payment.MockPremium)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			cb: payment.Callback{
				OrderID:   "order_1",
				PaymentID: "pay_1",
				Signature: payment.Sign(testSecret, "order_1", "pay_1"),
				Email:     "ana@example.com",
			},
			setupMock: func(m *payment.MockPremium) {
				m.EXPECT().ActivatePremium(gomock.Any(), "ana@example.com", "order_1", "pay_1").
					Return(&account.Account{Email: "ana@example.com", IsPremium: true, PremiumEndDate: &end}, nil)
			},
		},
		{
			name: "BadSignatureDoesNotActivate",
			cb: payment.Callback{
				OrderID:   "order_1",
				PaymentID: "pay_1",
				Signature: payment.Sign("wrong", "order_1", "pay_1"),
				Email:     "ana@example.com",
			},
			wantErr: payment.ErrInvalidSignature,
		},
		{
			name:    "MissingFields",
			cb:      payment.Callback{OrderID: "order_1", Email: "ana@example.com"},
			wantErr: payment.ErrMissingFields,
		},
		{
			name: "UnknownAccount",
			cb: payment.Callback{
				OrderID:   "order_1",
				PaymentID: "pay_1",
				Signature: payment.Sign(testSecret, "order_1", "pay_1"),
				Email:     "ghost@example.com",
			},
			setupMock: func(m *payment.MockPremium) {
				m.EXPECT().ActivatePremium(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, account.ErrNotFound)
			},
			wantErr: account.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, premium := newService(t)
			if tt.setupMock != nil {
				tt.setupMock(premium)
			}

			got, err := svc.Verify(context.Background(), tt.cb)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.True(t, got.IsPremium)
			assert.Equal(t, end, *got.PremiumEndDate)
		})
	}
}
