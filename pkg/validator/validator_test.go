package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type loginPayload struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

func TestValidateStructPasses(t *testing.T) {
	err := ValidateStruct(&loginPayload{Username: "sam.trainer", Password: "longenough"})
	require.NoError(t, err)
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	err := ValidateStruct(&loginPayload{Password: "short"})
	require.Error(t, err)

	ve, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Len(t, ve, 2)

	fields := []string{ve[0].Field, ve[1].Field}
	require.Contains(t, fields, "username")
	require.Contains(t, fields, "password")
}

func TestNotBlankRejectsWhitespace(t *testing.T) {
	type payload struct {
		Name string `json:"name" validate:"required,notblank"`
	}

	require.NoError(t, ValidateStruct(&payload{Name: "Morning yoga"}))

	err := ValidateStruct(&payload{Name: "   "})
	require.Error(t, err)

	ve, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Len(t, ve, 1)
	require.Equal(t, "notblank", ve[0].Tag)
}

func TestValidationErrorsMessage(t *testing.T) {
	ve := ValidationErrors{
		{Field: "password", Tag: "min", Param: "8"},
	}
	require.Equal(t, "password failed on min=8", ve.Error())
	require.Equal(t, "validation failed", ValidationErrors{}.Error())
}
