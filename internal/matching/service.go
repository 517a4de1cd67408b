package matching

import (
	"context"
	"errors"
	"strings"

	"github.com/MrJamesThe3rd/pfm/internal/account"
)

var ErrEmptyMapping = errors.New("pattern and category are required")

//go:generate mockgen -source=service.go -destination=service_mock.go -package=matching
type Repository interface {
	FindCategory(ctx context.Context, email, description string) (string, error)
	UpsertMapping(ctx context.Context, email, pattern, category string) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest returns the category of the longest learned pattern contained in
// description, or an empty string when nothing matches.
func (s *Service) Suggest(ctx context.Context, email, description string) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", nil
	}

	return s.repo.FindCategory(ctx, account.NormalizeEmail(email), description)
}

// Learn remembers that descriptions containing pattern belong to category.
// Learning the same pattern again replaces its category.
func (s *Service) Learn(ctx context.Context, email, pattern, category string) error {
	pattern = strings.TrimSpace(pattern)
	category = strings.TrimSpace(category)

	if pattern == "" || category == "" {
		return ErrEmptyMapping
	}

	return s.repo.UpsertMapping(ctx, account.NormalizeEmail(email), pattern, category)
}
