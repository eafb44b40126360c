package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistenceDuplicateMapsToConflict(t *testing.T) {
	err := Persistence(errors.New("Error 1062: Duplicate entry 'OTD-1234' for key 'uniq_code'"))
	assert.Equal(t, "DUPLICATE", err.Code)
	assert.Equal(t, http.StatusConflict, err.Status)
}

func TestPersistenceGenericIsInternal(t *testing.T) {
	err := Persistence(errors.New("dial tcp: connection refused"))
	assert.Equal(t, "PERSISTENCE", err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
}

func TestFromUnwrapsNestedError(t *testing.T) {
	wrapped := fmt.Errorf("lookup failed: %w", NotFound("no such reservation"))

	appErr := From(wrapped)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
}

func TestFromUnknownErrorIsOpaque(t *testing.T) {
	appErr := From(errors.New("boom"))
	assert.Equal(t, "INTERNAL", appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Equal(t, "Internal server error", appErr.Message)
}

func TestErrorStringCarriesCause(t *testing.T) {
	err := StorageWrite(errors.New("connection reset"))
	assert.Contains(t, err.Error(), "STORAGE_WRITE")
	assert.Contains(t, err.Error(), "connection reset")
	require.ErrorContains(t, err.Unwrap(), "connection reset")
}

func TestMissingFieldsMessage(t *testing.T) {
	err := MissingFields([]string{"email", "releaseDate"})
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Contains(t, err.Message, "email")
	assert.Contains(t, err.Message, "releaseDate")
}
