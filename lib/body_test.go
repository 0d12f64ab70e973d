package lib

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type idsBody struct {
	ItemIDs []int64 `json:"item_ids" validate:"required,min=1,dive,gt=0"`
}

func TestExtractAndValidateBody(t *testing.T) {
	r := httptest.NewRequest("POST", "/items/export", strings.NewReader(`{"item_ids":[1,2,3]}`))
	body, err := ExtractAndValidateBody[idsBody](r)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, body.ItemIDs)
}

func TestExtractAndValidateBodyRejectsEmptyList(t *testing.T) {
	r := httptest.NewRequest("POST", "/items/export", strings.NewReader(`{"item_ids":[]}`))
	_, err := ExtractAndValidateBody[idsBody](r)
	assert.Error(t, err)
}

func TestExtractAndValidateBodyRejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest("POST", "/items/export", strings.NewReader(`{"item_ids":[1],"extra":true}`))
	_, err := ExtractAndValidateBody[idsBody](r)
	assert.Error(t, err)
}

func TestExtractAndValidateBodyRejectsMalformedJSON(t *testing.T) {
	r := httptest.NewRequest("POST", "/items/export", strings.NewReader(`{"item_ids":`))
	_, err := ExtractAndValidateBody[idsBody](r)
	assert.Error(t, err)
}
