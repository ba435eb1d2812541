package dto

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estate/listings/internal/domain/listing"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeUnavailable, http.StatusServiceUnavailable},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeInvalidCredentials, http.StatusUnauthorized},
		{ErrCodeTokenRevoked, http.StatusUnauthorized},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		// Unknown code should return 500
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeNotFound, NormalizeErrorCode("NOT_FOUND"))
	assert.Equal(t, ErrCodeInvalidInput, NormalizeErrorCode("INVALID_INPUT"))
	assert.Equal(t, ErrCodeUnavailable, NormalizeErrorCode("UNAVAILABLE"))
	assert.Equal(t, ErrCodeNotFound, NormalizeErrorCode(ErrCodeNotFound))
	assert.Equal(t, "CUSTOM_ERROR", NormalizeErrorCode("CUSTOM_ERROR"))
}

func TestErrorResponseJSON(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Listing not found", "req-1")
	resp.Error.Back = "/api/v1/listings"

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"success": false,
		"error": {
			"code": "ERR_NOT_FOUND",
			"message": "Listing not found",
			"request_id": "req-1",
			"back": "/api/v1/listings"
		}
	}`, string(raw))
}

func TestBrowseQuery_Criteria(t *testing.T) {
	t.Run("empty query is inactive", func(t *testing.T) {
		c := BrowseQuery{}.Criteria()
		assert.False(t, c.IsActive())
		assert.Nil(t, c.MaxPrice)
	})

	t.Run("all filters", func(t *testing.T) {
		c := BrowseQuery{
			Query:        " нурлы ",
			District:     string(listing.DistrictExpo),
			Construction: string(listing.ConstructionBrick),
			MinPrice:     "100000",
			MaxPrice:     "200000",
			Ready:        true,
			Parking:      true,
			Payments:     []string{"Ипотека", "Ипотека", " "},
		}.Criteria()

		assert.Equal(t, listing.DistrictExpo, c.District)
		assert.Equal(t, listing.ConstructionBrick, c.Construction)
		assert.True(t, c.MinPrice.Equal(decimal.NewFromInt(100000)))
		require.NotNil(t, c.MaxPrice)
		assert.True(t, c.MaxPrice.Equal(decimal.NewFromInt(200000)))
		assert.True(t, c.ReadyOnly)
		assert.False(t, c.CommerceOnly)
		assert.True(t, c.ParkingOnly)
		assert.Equal(t, listing.PaymentSet{"Ипотека"}, c.Payments)
	})

	t.Run("malformed and unbounded prices", func(t *testing.T) {
		c := BrowseQuery{MinPrice: "abc", MaxPrice: "1000000000"}.Criteria()
		assert.True(t, c.MinPrice.IsZero())
		assert.Nil(t, c.MaxPrice)

		c = BrowseQuery{MaxPrice: "oops"}.Criteria()
		assert.Nil(t, c.MaxPrice)

		c = BrowseQuery{MaxPrice: "5000000000"}.Criteria()
		require.NotNil(t, c.MaxPrice)
		assert.True(t, c.MaxPrice.Equal(decimal.NewFromInt(5_000_000_000)))
	})
}

func TestValidationDetails(t *testing.T) {
	v := validator.New()
	v.SetTagName("binding")

	err := v.Struct(SeedRequest{Count: 501})
	details := ValidationDetails(err)
	require.Len(t, details, 1)
	assert.Equal(t, "Count", details[0].Field)
	assert.Equal(t, "Must be at most 500", details[0].Message)

	assert.NoError(t, v.Struct(SeedRequest{}))

	details = ValidationDetails(v.Struct(LoginRequest{}))
	require.Len(t, details, 2)
	assert.Equal(t, "This field is required", details[0].Message)

	assert.Nil(t, ValidationDetails(errors.New("plain")))
}
