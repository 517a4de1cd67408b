package payment

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/pfm/internal/account"
	"github.com/MrJamesThe3rd/pfm/internal/http/middleware"
	"github.com/MrJamesThe3rd/pfm/internal/http/request"
	"github.com/MrJamesThe3rd/pfm/internal/http/respond"
	"github.com/MrJamesThe3rd/pfm/internal/payment"
)

type Handler struct {
	payments *payment.Service
	accounts *account.Service
	// keyID is the public checkout key handed to the browser widget.
	keyID string
}

func NewHandler(payments *payment.Service, accounts *account.Service, keyID string) *Handler {
	return &Handler{payments: payments, accounts: accounts, keyID: keyID}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/create-order", h.createOrder)
	r.Post("/verify-payment", h.verifyPayment)
	r.Get("/premium-status", h.premiumStatus)
}

type createOrderResponse struct {
	Order *payment.Order `json:"order"`
	KeyID string         `json:"keyId"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.payments.CreateOrder(r.Context(), middleware.Email(r.Context()))
	if err != nil {
		// The gateway is the only dependency CreateOrder calls.
		slog.ErrorContext(r.Context(), "payment gateway failed", "error", err)
		respond.Error(w, http.StatusBadGateway, "Order creation failed")

		return
	}

	respond.OK(w, createOrderResponse{Order: order, KeyID: h.keyID})
}

type verifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
}

type premiumResponse struct {
	Email          string     `json:"email,omitempty"`
	IsPremium      bool       `json:"isPremium"`
	PremiumEndDate *time.Time `json:"premiumEndDate,omitempty"`
}

// verifyPayment activates premium for the authenticated account, never
// for an email named in the body.
func (h *Handler) verifyPayment(w http.ResponseWriter, r *http.Request) {
	var req verifyPaymentRequest
	if !request.Bind(w, r, &req) {
		return
	}

	a, err := h.payments.Verify(r.Context(), payment.Callback{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
		Email:     middleware.Email(r.Context()),
	})
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrInvalidSignature):
			respond.Error(w, http.StatusBadRequest, "Payment verification failed: Invalid signature")
		case errors.Is(err, payment.ErrMissingFields):
			respond.Error(w, http.StatusBadRequest, "Order ID, payment ID and signature are required")
		case errors.Is(err, account.ErrNotFound):
			respond.Error(w, http.StatusNotFound, "User not found")
		default:
			respond.ServerError(w, r, err)
		}

		return
	}

	respond.JSON(w, http.StatusOK, respond.Envelope{
		Success: true,
		Message: "Premium activated successfully!",
		Data: premiumResponse{
			Email:          a.Email,
			IsPremium:      a.IsPremium,
			PremiumEndDate: a.PremiumEndDate,
		},
	})
}

func (h *Handler) premiumStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.accounts.PremiumStatus(r.Context(), middleware.Email(r.Context()))
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "User not found")
			return
		}

		respond.ServerError(w, r, err)

		return
	}

	env := respond.Envelope{
		Success: true,
		Data: premiumResponse{
			IsPremium:      status.IsPremium,
			PremiumEndDate: status.PremiumEndDate,
		},
	}
	if status.Expired {
		env.Message = "Premium subscription expired"
	}

	respond.JSON(w, http.StatusOK, env)
}
