package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type named struct {
	Name string `json:"name"`
}

func TestParseJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"name": "CRISPR screens"}`, "CRISPR screens"},
		{"```json\n{\"name\": \"Yeast\"}\n```", "Yeast"},
		{`Sure! Here it is: {"name": "Protein folding"} Hope that helps.`, "Protein folding"},
	}
	for _, tt := range tests {
		got, err := ParseJSON[named](tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got.Name)
	}
}

func TestParseJSON_Errors(t *testing.T) {
	_, err := ParseJSON[named]("no json here")
	assert.ErrorContains(t, err, "no JSON object")

	_, err = ParseJSON[named](`{"name": }`)
	assert.ErrorContains(t, err, "failed to decode response JSON")

	_, err = ParseJSON[named](`} backwards {`)
	assert.Error(t, err)
}
