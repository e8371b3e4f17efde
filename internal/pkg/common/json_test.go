package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONBlock(t *testing.T) {
	assert.Equal(t, `{"a":1}`, ExtractJSONBlock("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, ExtractJSONBlock(`Sure! {"a":1} hope this helps`))
	assert.Equal(t, "no json here", ExtractJSONBlock("  no json here "))
}

func TestParseModelJSON(t *testing.T) {
	var out struct {
		Name string `json:"name"`
		Days int    `json:"days"`
	}
	require.NoError(t, ParseModelJSON(`{name: "Milk", days: 7}`, &out))
	assert.Equal(t, "Milk", out.Name)
	assert.Equal(t, 7, out.Days)

	assert.Error(t, ParseModelJSON("", &out))
	assert.Error(t, ParseModelJSON(`{"name": }`, &out))
}

func TestParseJSONRejectsTrailingData(t *testing.T) {
	var v map[string]interface{}
	assert.NoError(t, ParseJSON(`{"a":1}`, &v))
	assert.Error(t, ParseJSON(`{"a":1} {"b":2}`, &v))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(ErrFoodItemNotFound))
	assert.True(t, IsNotFound(ErrRecordNotFound))
	assert.False(t, IsNotFound(ErrInternalError))
	assert.False(t, IsNotFound(nil))
}
