package validator

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type playRequest struct {
	PlayTime float64 `json:"play_time" validate:"required,gt=0"`
}

type ratingRequest struct {
	Rating int `json:"rating" validate:"required,min=1,max=5"`
}

func TestValidate_Valid(t *testing.T) {
	err := Validate(playRequest{PlayTime: 2.5})
	assert.NoError(t, err)
}

func TestValidate_GreaterThanZero(t *testing.T) {
	err := Validate(playRequest{PlayTime: -1})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields(), "PlayTime")
}

func TestValidate_RatingRange(t *testing.T) {
	tests := []struct {
		name   string
		rating int
		ok     bool
	}{
		{"lowest valid", 1, true},
		{"highest valid", 5, true},
		{"too low", 0, false},
		{"too high", 6, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(ratingRequest{Rating: tt.rating})
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidationError_Message(t *testing.T) {
	err := Validate(ratingRequest{Rating: 9})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Error(), "Rating")
	assert.Contains(t, valErr.Error(), "at most 5")
}

func TestDecodeAndValidate_Valid(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"rating": 4}`))

	var req ratingRequest
	err := DecodeAndValidate(r, &req)

	require.NoError(t, err)
	assert.Equal(t, 4, req.Rating)
}

func TestDecodeAndValidate_MalformedJSON(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"rating":`))

	var req ratingRequest
	err := DecodeAndValidate(r, &req)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}

func TestDecodeAndValidate_InvalidValue(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"rating": 0}`))

	var req ratingRequest
	err := DecodeAndValidate(r, &req)

	var valErr *ValidationError
	assert.ErrorAs(t, err, &valErr)
}
