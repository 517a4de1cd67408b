package budget_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pfm/internal/budget"
)

func TestBudgets_Validate(t *testing.T) {
	assert.NoError(t, budget.Budgets{"food": decimal.NewFromInt(500), "bills": decimal.Zero}.Validate())
	assert.ErrorIs(t, budget.Budgets{"food": decimal.NewFromInt(-1)}.Validate(), budget.ErrNegative)
	assert.Error(t, budget.Budgets{" ": decimal.NewFromInt(1)}.Validate())
}

func TestFileStore_LoadMissingReturnsDefaults(t *testing.T) {
	s := budget.NewFileStore(filepath.Join(t.TempDir(), "budgets.json"))

	got, err := s.Load("ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, budget.Defaults(), got)
}

func TestFileStore_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "budgets.json")
	s := budget.NewFileStore(path)

	require.NoError(t, s.Save("Ana@Example.com ", budget.Budgets{"food": decimal.RequireFromString("1500.50")}))
	require.NoError(t, s.Save("bob@example.com", budget.Budgets{"bills": decimal.NewFromInt(900)}))

	got, err := s.Load("ana@example.com")
	require.NoError(t, err)
	require.Contains(t, got, "food")
	assert.Equal(t, "1500.5", got["food"].String())
	assert.NotContains(t, got, "bills")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStore_SaveRejectsNegative(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budgets.json")
	s := budget.NewFileStore(path)

	err := s.Save("ana@example.com", budget.Budgets{"food": decimal.NewFromInt(-5)})
	assert.ErrorIs(t, err, budget.ErrNegative)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budgets.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := budget.NewFileStore(path).Load("ana@example.com")
	assert.Error(t, err)
}
