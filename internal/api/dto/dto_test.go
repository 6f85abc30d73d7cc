package dto

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/marketplace/internal/domain"
	apperrors "github.com/spec-kit/marketplace/pkg/util"
)

func TestValidateReportsJSONFieldNames(t *testing.T) {
	err := Validate(ProductCreateRequest{Title: "Lamp", Price: -1, FileURL: "not a url"})
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	fields := domainErr.Details["fields"].(map[string]any)
	assert.Contains(t, fields, "price")
	assert.Contains(t, fields, "file_url")
	assert.Contains(t, fields, "description")
}

func TestValidateClosedSets(t *testing.T) {
	assert.NoError(t, Validate(RoleUpdateRequest{Role: "SELLER"}))
	assert.Error(t, Validate(RoleUpdateRequest{Role: "seller"}))
	assert.NoError(t, Validate(OrderStatusRequest{Status: "CANCELED"}))
	assert.Error(t, Validate(OrderStatusRequest{Status: "SHIPPED"}))

	bad := "GONE"
	assert.Error(t, Validate(ProductUpdateRequest{Status: &bad}))
	assert.NoError(t, Validate(ProductUpdateRequest{}))
}

func TestProductPatchConversion(t *testing.T) {
	status := "SOLD"
	patch := ProductUpdateRequest{Status: &status}.Patch()
	require.NotNil(t, patch.Status)
	assert.Equal(t, domain.ProductStatusSold, *patch.Status)
	assert.Nil(t, patch.Title)
}

func TestRegisterValidation(t *testing.T) {
	assert.NoError(t, Validate(RegisterRequest{Email: "a@example.com", Password: "longenough"}))
	assert.Error(t, Validate(RegisterRequest{Email: "a@example.com", Password: "short"}))
	assert.Error(t, Validate(RegisterRequest{Email: "nope", Password: "longenough"}))
}
