package validation

import (
	"errors"
	"testing"

	"bizrwanda/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name    string   `json:"name" validate:"required,min=2"`
	Website string   `json:"website" validate:"omitempty,url"`
	Years   int      `json:"years" validate:"gte=0,lte=60"`
	Tags    []string `json:"tags" validate:"min=1,dive,required"`
	Ignored string   `json:"-" validate:"required"`
}

func TestStruct_FieldMessages(t *testing.T) {
	err := Struct(sample{Name: "x", Website: "not a url", Years: 70, Tags: []string{"ok", ""}})
	require.Error(t, err)

	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeValidation, appErr.Code)
	assert.Equal(t, "must be at least 2 characters", appErr.Fields["name"])
	assert.Equal(t, "must be a valid URL", appErr.Fields["website"])
	assert.Equal(t, "must be at most 60", appErr.Fields["years"])
	assert.Equal(t, "is required", appErr.Fields["tags[1]"])
	assert.Equal(t, "is required", appErr.Fields["Ignored"])
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(sample{Name: "Kigali", Tags: []string{"a"}, Ignored: "x"}))
}

func TestCheck_KeepsFirstMessage(t *testing.T) {
	fields := map[string]string{"name": "already reported"}
	Check(sample{Tags: []string{}}, fields)
	assert.Equal(t, "already reported", fields["name"])
	assert.Equal(t, "must contain at least 1 item(s)", fields["tags"])
}
