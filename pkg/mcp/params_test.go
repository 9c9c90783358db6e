package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActionInput_EmptyAndWhitespace(t *testing.T) {
	for _, input := range []string{"", "   \n  "} {
		result, err := ParseActionInput(input)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{}, result)
	}
}

func TestParseActionInput_JSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]any
	}{
		{
			name:  "object",
			input: `{"namespace": "default", "limit": 10}`,
			want:  map[string]any{"namespace": "default", "limit": float64(10)},
		},
		{
			name:  "nested object",
			input: `{"filter": {"app": "nginx"}, "namespace": "prod"}`,
			want:  map[string]any{"filter": map[string]any{"app": "nginx"}, "namespace": "prod"},
		},
		// Non-object JSON values get wrapped under "input".
		{
			name:  "array",
			input: `["pod1", "pod2"]`,
			want:  map[string]any{"input": []any{"pod1", "pod2"}},
		},
		{
			name:  "string",
			input: `"hello world"`,
			want:  map[string]any{"input": "hello world"},
		},
		{
			name:  "number",
			input: `42`,
			want:  map[string]any{"input": float64(42)},
		},
		{
			name:  "true",
			input: `true`,
			want:  map[string]any{"input": true},
		},
		{
			name:  "false",
			input: `false`,
			want:  map[string]any{"input": false},
		},
		{
			name:  "null",
			input: `null`,
			want:  map[string]any{"input": nil},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ParseActionInput(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, result)
		})
	}
}

func TestParseActionInput_YAML(t *testing.T) {
	t.Run("nested list", func(t *testing.T) {
		result, err := ParseActionInput("namespaces:\n  - default\n  - kube-system\nlabel: app=nginx")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			"namespaces": []any{"default", "kube-system"},
			"label":      "app=nginx",
		}, result)
	})

	t.Run("nested map", func(t *testing.T) {
		result, err := ParseActionInput("selector:\n  app: nginx\n  env: prod")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			"selector": map[string]any{"app": "nginx", "env": "prod"},
		}, result)
	})
}

func TestParseActionInput_KeyValue(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]any
	}{
		{
			name:  "colon separated",
			input: "namespace: default",
			want:  map[string]any{"namespace": "default"},
		},
		{
			name:  "equals separated",
			input: "namespace=default",
			want:  map[string]any{"namespace": "default"},
		},
		{
			name:  "comma separated pairs",
			input: "namespace: default, limit: 10",
			want:  map[string]any{"namespace": "default", "limit": int64(10)},
		},
		{
			name:  "newline separated pairs",
			input: "namespace: default\nlimit: 10",
			want:  map[string]any{"namespace": "default", "limit": int64(10)},
		},
		{
			name:  "mixed separators",
			input: "namespace: default, verbose=true\nlimit: 5",
			want:  map[string]any{"namespace": "default", "verbose": true, "limit": int64(5)},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ParseActionInput(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, result)
		})
	}
}

func TestParseActionInput_RawString(t *testing.T) {
	for _, input := range []string{
		"get all pods in the default namespace",
		"default",
	} {
		result, err := ParseActionInput(input)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"input": input}, result)
	}
}

func TestCoerceValue(t *testing.T) {
	tests := []struct {
		input string
		want  any
	}{
		{"true", true},
		{"True", true},
		{"TRUE", true},
		{"false", false},
		{"False", false},
		{"null", nil},
		{"none", nil},
		{"None", nil},
		{"42", int64(42)},
		{"-5", int64(-5)},
		{"3.14", 3.14},
		// Non-finite floats must stay strings; they are not valid JSON.
		{"NaN", "NaN"},
		{"Inf", "Inf"},
		{"-Inf", "-Inf"},
		{"+Inf", "+Inf"},
		{"hello", "hello"},
		{"  hello  ", "hello"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.want, coerceValue(tc.input))
		})
	}
}

func TestParseActionInput_Precedence(t *testing.T) {
	// Valid JSON is parsed as JSON even though it contains colons.
	result, err := ParseActionInput(`{"key": "value"}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"key": "value"}, result)

	// A simple "key: value" line goes through the key-value parser rather
	// than YAML.
	result, err = ParseActionInput("namespace: default")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"namespace": "default"}, result)
}
