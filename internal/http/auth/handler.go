package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pfm/internal/account"
	"github.com/MrJamesThe3rd/pfm/internal/http/middleware"
	"github.com/MrJamesThe3rd/pfm/internal/http/request"
	"github.com/MrJamesThe3rd/pfm/internal/http/respond"
)

type Handler struct {
	svc *account.Service
}

func NewHandler(svc *account.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes registers the auth endpoints. Only /me needs a session, so the
// authenticator is applied per route.
func (h *Handler) Routes(r chi.Router, authenticate func(http.Handler) http.Handler) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Post("/forgot-password", h.forgotPassword)
	r.Post("/verify-security-answer", h.verifySecurityAnswer)
	r.Post("/reset-password", h.resetPassword)
	r.With(authenticate).Get("/me", h.me)
}

type accountResponse struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	IsPremium      bool       `json:"isPremium"`
	PremiumEndDate *time.Time `json:"premiumEndDate,omitempty"`
	Token          string     `json:"token,omitempty"`
}

func toAccountResponse(a *account.Account, token string) accountResponse {
	return accountResponse{
		ID:             a.ID,
		Name:           a.Name,
		Email:          a.Email,
		IsPremium:      a.IsPremium,
		PremiumEndDate: a.PremiumEndDate,
		Token:          token,
	}
}

type registerRequest struct {
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=6"`
	SecurityAnswer string `json:"securityAnswer"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !request.Bind(w, r, &req) {
		return
	}

	session, err := h.svc.Register(r.Context(), account.RegisterParams{
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		SecurityAnswer: req.SecurityAnswer,
	})
	if err != nil {
		switch {
		case errors.Is(err, account.ErrEmailTaken):
			respond.Error(w, http.StatusBadRequest, "Email already registered")
		case errors.Is(err, account.ErrNameRequired):
			respond.Error(w, http.StatusBadRequest, "Name is required")
		case errors.Is(err, account.ErrWeakPassword):
			respond.Error(w, http.StatusBadRequest, "Password must be at least 6 characters")
		default:
			respond.ServerError(w, r, err)
		}

		return
	}

	respond.JSON(w, http.StatusCreated, respond.Envelope{
		Success: true,
		Message: "User registered successfully",
		Data:    toAccountResponse(session.Account, session.Token),
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !request.Bind(w, r, &req) {
		return
	}

	session, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, account.ErrInvalidCredentials) {
			respond.Error(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		respond.ServerError(w, r, err)

		return
	}

	respond.JSON(w, http.StatusOK, respond.Envelope{
		Success: true,
		Message: "Login successful",
		Data:    toAccountResponse(session.Account, session.Token),
	})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Get(r.Context(), middleware.Email(r.Context()))
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			respond.Error(w, http.StatusUnauthorized, "User not found")
			return
		}

		respond.ServerError(w, r, err)

		return
	}

	respond.OK(w, toAccountResponse(a, ""))
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

type securityQuestionResponse struct {
	SecurityQuestion string `json:"securityQuestion"`
}

func (h *Handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !request.Bind(w, r, &req) {
		return
	}

	question, err := h.svc.SecurityQuestion(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "No account found with this email")
			return
		}

		respond.ServerError(w, r, err)

		return
	}

	respond.OK(w, securityQuestionResponse{SecurityQuestion: question})
}

type verifyAnswerRequest struct {
	Email  string `json:"email" validate:"required"`
	Answer string `json:"answer" validate:"required"`
}

type resetTokenResponse struct {
	ResetToken string `json:"resetToken"`
}

func (h *Handler) verifySecurityAnswer(w http.ResponseWriter, r *http.Request) {
	var req verifyAnswerRequest
	if !request.Bind(w, r, &req) {
		return
	}

	token, err := h.svc.VerifySecurityAnswer(r.Context(), req.Email, req.Answer)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrNotFound):
			respond.Error(w, http.StatusNotFound, "User not found")
		case errors.Is(err, account.ErrIncorrectAnswer):
			respond.Error(w, http.StatusBadRequest, "Incorrect answer. Please try again.")
		default:
			respond.ServerError(w, r, err)
		}

		return
	}

	respond.JSON(w, http.StatusOK, respond.Envelope{
		Success: true,
		Message: "Answer verified successfully",
		Data:    resetTokenResponse{ResetToken: token},
	})
}

type resetPasswordRequest struct {
	ResetToken  string `json:"resetToken" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !request.Bind(w, r, &req) {
		return
	}

	err := h.svc.ResetPassword(r.Context(), req.ResetToken, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrInvalidResetToken):
			respond.Error(w, http.StatusUnauthorized, "Reset token is invalid or expired")
		case errors.Is(err, account.ErrWeakPassword):
			respond.Error(w, http.StatusBadRequest, "Password must be at least 6 characters")
		case errors.Is(err, account.ErrNotFound):
			respond.Error(w, http.StatusNotFound, "User not found")
		default:
			respond.ServerError(w, r, err)
		}

		return
	}

	respond.Message(w, http.StatusOK, "Password reset successfully")
}
