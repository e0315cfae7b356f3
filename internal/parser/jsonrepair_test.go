package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "strict input is untouched",
			input:    `{"a":[1,2],"b":{"c":"d"}}`,
			expected: `{"a":[1,2],"b":{"c":"d"}}`,
		},
		{
			name:     "single quotes and trailing commas",
			input:    `{'a': [1, 2,], 'b': {'c': 'd',},}`,
			expected: `{"a": [1, 2], "b": {"c": "d"}}`,
		},
		{
			name:     "commas inside strings are kept",
			input:    `{"a":"x, ]","b":"one,}","c":"say \"hi,\" ]"}`,
			expected: `{"a":"x, ]","b":"one,}","c":"say \"hi,\" ]"}`,
		},
		{
			name:     "trailing commas after strings with brackets",
			input:    `{'size': 'XL, ]', 'values': ['9,}', '10',],}`,
			expected: `{"size": "XL, ]", "values": ["9,}", "10"]}`,
		},
		{
			name:     "embedded newlines",
			input:    "{\n  'initial': [\n    {'large': 'x.jpg'},\n  ]\n}",
			expected: `{  "initial": [    {"large": "x.jpg"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RepairJSON(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(got))

			again, err := RepairJSON(string(got))
			require.NoError(t, err)
			assert.Equal(t, string(got), string(again))
		})
	}
}

func TestRepairJSONMalformed(t *testing.T) {
	for _, input := range []string{`{"a": [1, 2}`, `{'a': 1`, ``, `var x = 1`} {
		_, err := RepairJSON(input)
		assert.ErrorIs(t, err, ErrMalformedPageData, input)
	}
}

// Apostrophes inside values are turned into double quotes along with the
// delimiters, so such payloads cannot be repaired.
func TestRepairJSONApostropheInValue(t *testing.T) {
	_, err := RepairJSON(`{'title': 'Men's Trail Shoe'}`)
	assert.ErrorIs(t, err, ErrMalformedPageData)

	_, err = RepairJSON(`{"title": "Men's Trail Shoe"}`)
	assert.ErrorIs(t, err, ErrMalformedPageData)
}

func TestDecodeLenient(t *testing.T) {
	var out struct {
		Dimensions []string          `json:"dimensions"`
		Map        map[string]string `json:"dimensionToAsinMap"`
	}

	err := DecodeLenient(`{'dimensions': ['color_name',], 'dimensionToAsinMap': {'0': 'B000000001',},}`, &out)
	require.NoError(t, err)
	assert.Equal(t, []string{"color_name"}, out.Dimensions)
	assert.Equal(t, "B000000001", out.Map["0"])

	var wrongShape struct {
		Dimensions int `json:"dimensions"`
	}
	err = DecodeLenient(`{'dimensions': ['color_name']}`, &wrongShape)
	assert.ErrorIs(t, err, ErrMalformedPageData)
}
