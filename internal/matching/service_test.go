package matching_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/pfm/internal/matching"
)

func TestService_Suggest(t *testing.T) {
	type testCase struct {
		name        string
		description string
		setupMock   func(m *matching.MockRepository)
		want        string
	}

	tests := []testCase{
		{
			name:        "Match",
			description: " UBER *TRIP 1234 ",
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().FindCategory(gomock.Any(), "ana@example.com", "UBER *TRIP 1234").Return("transport", nil)
			},
			want: "transport",
		},
		{
			name:        "NoMatch",
			description: "Unknown shop",
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().FindCategory(gomock.Any(), gomock.Any(), gomock.Any()).Return("", nil)
			},
		},
		{
			name:        "BlankDescriptionSkipsLookup",
			description: "   ",
			setupMock:   func(m *matching.MockRepository) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := matching.NewMockRepository(ctrl)
			tt.setupMock(repo)

			got, err := matching.NewService(repo).Suggest(context.Background(), "Ana@Example.com", tt.description)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_Learn(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := matching.NewMockRepository(ctrl)
	svc := matching.NewService(repo)

	repo.EXPECT().UpsertMapping(gomock.Any(), "ana@example.com", "uber", "transport").Return(nil)

	require.NoError(t, svc.Learn(context.Background(), "ana@example.com", " uber ", " transport "))
	assert.ErrorIs(t, svc.Learn(context.Background(), "ana@example.com", "uber", " "), matching.ErrEmptyMapping)
}
