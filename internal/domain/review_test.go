package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReview(t *testing.T) {
	t.Parallel()

	tourID := uuid.New()
	userID := uuid.New()

	tests := []struct {
		name    string
		text    string
		rating  float64
		tourID  uuid.UUID
		userID  uuid.UUID
		wantErr error
	}{
		{
			name:   "valid review",
			text:   "  Absolutely loved it.  ",
			rating: 4.5,
			tourID: tourID,
			userID: userID,
		},
		{
			name:    "empty text",
			text:    "   ",
			rating:  4,
			tourID:  tourID,
			userID:  userID,
			wantErr: ErrEmptyReviewText,
		},
		{
			name:    "rating too low",
			text:    "meh",
			rating:  0.5,
			tourID:  tourID,
			userID:  userID,
			wantErr: ErrInvalidRating,
		},
		{
			name:    "rating too high",
			text:    "amazing",
			rating:  5.5,
			tourID:  tourID,
			userID:  userID,
			wantErr: ErrInvalidRating,
		},
		{
			name:    "missing tour",
			text:    "nice",
			rating:  4,
			tourID:  uuid.Nil,
			userID:  userID,
			wantErr: ErrEmptyReviewTour,
		},
		{
			name:    "missing author",
			text:    "nice",
			rating:  4,
			tourID:  tourID,
			userID:  uuid.Nil,
			wantErr: ErrEmptyReviewAuthor,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			review, err := NewReview(tt.text, tt.rating, tt.tourID, tt.userID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "Absolutely loved it.", review.Review)
			assert.NotZero(t, review.ID)
		})
	}
}
