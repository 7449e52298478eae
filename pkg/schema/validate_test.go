package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Success(t *testing.T) {
	s := Schema{
		"score": Int(),
		"tiles": List(List(String())),
		"alive": Bool(),
	}

	data := map[string]any{
		"score": 3,
		"tiles": []any{[]any{"Empty", "Painted"}},
		"alive": true,
	}

	assert.NoError(t, Validate(s, data))
}

func TestValidate_ReportsInKeyOrder(t *testing.T) {
	s := Schema{"b": Int(), "a": Int(), "c": Int()}

	err := Validate(s, map[string]any{"c": "x"})
	require.Error(t, err)

	errs := ValidationErrors(err)
	require.Len(t, errs, 3)
	assert.Equal(t, "a", errs[0].(*ValidationError).Key)
	assert.Equal(t, "b", errs[1].(*ValidationError).Key)
	assert.Equal(t, "c", errs[2].(*ValidationError).Key)
	assert.Equal(t, []string{"a", "b"}, MissingKeys(err))
	assert.Contains(t, err.Error(), "3 validation errors")
}

func TestValidate_EmptySchema(t *testing.T) {
	assert.NoError(t, Validate(nil, map[string]any{"x": 1}))
}

func TestValidateFields_UndefinedField(t *testing.T) {
	err := ValidateFields(Schema{"a": Int()}, map[string]any{"a": 1}, "a", "b")
	require.Error(t, err)

	errs := ValidationErrors(err)
	require.Len(t, errs, 1)
	assert.Equal(t, "not defined in schema", errs[0].(*ValidationError).Reason)
}

func TestValidationErrors_NotAggregate(t *testing.T) {
	assert.Nil(t, ValidationErrors(assert.AnError))
}
