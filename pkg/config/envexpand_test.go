package config

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// expand sets the given environment variables and runs ExpandEnv,
// failing the test on error.
func expand(t *testing.T, input string, env map[string]string) string {
	t.Helper()
	for k, v := range env {
		t.Setenv(k, v)
	}
	result, err := ExpandEnv([]byte(input))
	require.NoError(t, err)
	return string(result)
}

func TestExpandEnv(t *testing.T) {
	tests := map[string]struct {
		input string
		env   map[string]string
		want  string
	}{
		"simple substitution with {{.VAR}}": {
			input: "api_key: {{.API_KEY}}",
			env:   map[string]string{"API_KEY": "secret123"},
			want:  "api_key: secret123",
		},
		"literal ${VAR} is NOT expanded (no collision)": {
			input: "pattern: ${USER_ID}",
			env:   map[string]string{"USER_ID": "123"},
			want:  "pattern: ${USER_ID}",
		},
		"literal $VAR is NOT expanded (no collision)": {
			input: "regex: ^secret.*$",
			want:  "regex: ^secret.*$",
		},
		"multiple substitutions in one line": {
			input: "url: {{.PROTOCOL}}://{{.HOST}}:{{.PORT}}",
			env: map[string]string{
				"PROTOCOL": "https",
				"HOST":     "example.com",
				"PORT":     "443",
			},
			want: "url: https://example.com:443",
		},
		"no substitution when no variables": {
			input: "static: value",
			env:   map[string]string{"UNUSED": "value"},
			want:  "static: value",
		},
		"variables in YAML array": {
			input: "args:\n  - {{.ARG1}}\n  - {{.ARG2}}",
			env: map[string]string{
				"ARG1": "value1",
				"ARG2": "value2",
			},
			want: "args:\n  - value1\n  - value2",
		},
		"variables in nested YAML structure": {
			input: "config:\n  host: {{.HOST}}\n  port: {{.PORT}}",
			env: map[string]string{
				"HOST": "localhost",
				"PORT": "5432",
			},
			want: "config:\n  host: localhost\n  port: 5432",
		},
		"special characters in expanded value": {
			input: "password: {{.PASSWORD}}",
			env:   map[string]string{"PASSWORD": "p@ssw0rd!#$%"},
			want:  "password: p@ssw0rd!#$%",
		},
		"literal dollar in password is preserved": {
			input: "password: p@ss$word",
			want:  "password: p@ss$word",
		},
		"regex pattern with $ preserved": {
			input: `pattern: "^\\$[0-9]+$"`,
			want:  `pattern: "^\\$[0-9]+$"`,
		},
		"environment variable with underscores": {
			input: "key: {{.MY_LONG_VAR_NAME}}",
			env:   map[string]string{"MY_LONG_VAR_NAME": "value"},
			want:  "key: value",
		},
		"adjacent variables without separator": {
			input: "{{.VAR1}}{{.VAR2}}",
			env: map[string]string{
				"VAR1": "hello",
				"VAR2": "world",
			},
			want: "helloworld",
		},
		"variable in quoted string": {
			input: `message: "Hello {{.NAME}}"`,
			env:   map[string]string{"NAME": "World"},
			want:  `message: "Hello World"`,
		},
		"empty string variable is accepted": {
			input: "value: {{.EMPTY}}",
			env:   map[string]string{"EMPTY": ""},
			want:  "value: ",
		},
		"numeric value in environment variable": {
			input: "port: {{.PORT_NUMBER}}",
			env:   map[string]string{"PORT_NUMBER": "8080"},
			want:  "port: 8080",
		},
		"complex YAML with multiple variables": {
			input: `
database:
  host: {{.DB_HOST}}
  port: {{.DB_PORT}}
  user: {{.DB_USER}}
  password: {{.DB_PASSWORD}}
`,
			env: map[string]string{
				"DB_HOST":     "localhost",
				"DB_PORT":     "5432",
				"DB_USER":     "tarsy",
				"DB_PASSWORD": "secret",
			},
			want: `
database:
  host: localhost
  port: 5432
  user: tarsy
  password: secret
`,
		},
		"masking pattern with ${} syntax preserved": {
			input: `custom_patterns:\n  - pattern: "user_\${USER_ID}_.*"`,
			env:   map[string]string{"USER_ID": "123"},
			want:  `custom_patterns:\n  - pattern: "user_\${USER_ID}_.*"`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, expand(t, tt.input, tt.env))
		})
	}
}

// Referencing an unset variable fails loudly, listing every missing name,
// so a misconfigured deployment cannot start with empty credentials.
func TestExpandEnvMissingVariables(t *testing.T) {
	tests := map[string]struct {
		input   string
		env     map[string]string
		wantErr string
	}{
		"single missing variable": {
			input:   "endpoint: {{.TARSY_TEST_MISSING_VAR}}",
			wantErr: "missing environment variables: TARSY_TEST_MISSING_VAR",
		},
		"multiple missing variables listed sorted": {
			input:   "url: {{.TARSY_TEST_MISSING_B}}://{{.TARSY_TEST_MISSING_A}}",
			wantErr: "missing environment variables: TARSY_TEST_MISSING_A, TARSY_TEST_MISSING_B",
		},
		"only missing variables are listed": {
			input:   "url: {{.PROTOCOL}}://{{.TARSY_TEST_MISSING_HOST}}",
			env:     map[string]string{"PROTOCOL": "https"},
			wantErr: "missing environment variables: TARSY_TEST_MISSING_HOST",
		},
		"duplicate references reported once": {
			input:   "a: {{.TARSY_TEST_MISSING_VAR}}\nb: {{.TARSY_TEST_MISSING_VAR}}",
			wantErr: "missing environment variables: TARSY_TEST_MISSING_VAR",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := ExpandEnv([]byte(tt.input))
			require.Error(t, err)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestExpandEnvPreservesOriginalWhenNoVariables(t *testing.T) {
	input := `
# This is a comment
key: value
nested:
  field: "string value"
  number: 123
  boolean: true
array:
  - item1
  - item2
`

	assert.Equal(t, input, expand(t, input, nil),
		"Content without variables should be unchanged")
}

func TestExpandEnvWithEmptyInput(t *testing.T) {
	assert.Equal(t, "", expand(t, "", nil), "Empty input should return empty output")
}

// Literal backslash-n sequences must survive expansion untouched rather
// than turning into newlines.
func TestExpandEnvPreservesLiteralBackslashN(t *testing.T) {
	result := expand(t, `path: {{.TEST_PATH}}\nother: value`,
		map[string]string{"TEST_PATH": "/usr/bin"})

	assert.Contains(t, result, `/usr/bin\nother: value`)
}

func TestExpandEnvThreadSafety(t *testing.T) {
	input := []byte("key: {{.TEST_VAR}}")
	t.Setenv("TEST_VAR", "value")

	const goroutines = 100
	results := make([]string, goroutines)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			result, _ := ExpandEnv(input)
			results[index] = string(result)
		}(i)
	}
	wg.Wait()

	for i, result := range results {
		assert.Equal(t, "key: value", result, "Result %d should match", i)
	}
}

// Malformed template syntax passes through unchanged instead of erroring,
// leaving the YAML parser to accept it as a literal or produce its own,
// clearer failure.
func TestExpandEnvMalformedTemplates(t *testing.T) {
	tests := map[string]string{
		"unclosed template - missing closing braces": "api_key: {{.API_KEY",
		"incomplete template - only opening braces":  "api_key: {{",
		"single closing brace after variable":        "api_key: {{.API_KEY}",
		"reversed template syntax":                   "api_key: }}.API_KEY{{",
		"malformed variable name - missing dot":      "api_key: {{API_KEY}}",
		"nested template braces":                     "api_key: {{{{.API_KEY}}}}",
		"triple opening braces":                      "api_key: {{{.API_KEY}}}",
		"space in variable name":                     "api_key: {{.API KEY}}",
		"special characters in template":             "api_key: {{.API-KEY!}}",
		"unclosed with valid YAML around it":         "host: localhost\napi_key: {{.API_KEY\nport: 8080",
		"multiple malformed templates":               "key1: {{.VAR1\nkey2: {{.VAR2}",
		"template with undefined function":           `api_key: {{.API_KEY | upper}}`,
		"template with invalid field access":         "api_key: {{.API_KEY.NonExistent.Field}}",
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			// Values that must NOT leak into the output.
			t.Setenv("API_KEY", "should-not-appear")
			t.Setenv("VAR1", "should-not-appear")
			t.Setenv("VAR2", "should-not-appear")

			result, err := ExpandEnv([]byte(input))
			require.NoError(t, err)

			assert.Equal(t, input, string(result),
				"Malformed template should be passed through unchanged")
			assert.NotContains(t, string(result), "should-not-appear",
				"Malformed template should not expand environment variables")
		})
	}
}

// When ExpandEnv passes malformed input through, the YAML parser is the
// one that decides whether the document is acceptable.
func TestExpandEnvPassThroughToYAMLParser(t *testing.T) {
	tests := map[string]struct {
		input         string
		expectYAMLErr bool
	}{
		"valid YAML without templates passes through successfully": {
			input: `
host: localhost
port: 8080
name: test-server
`,
		},
		"malformed template but valid YAML structure": {
			input: `
host: localhost
api_key: "{{.API_KEY"
port: 8080
`,
		},
		"malformed template with invalid YAML": {
			input: `
host: localhost
api_key: {{.API_KEY
  invalid: indentation
port: 8080
`,
			expectYAMLErr: true,
		},
		"unclosed template in quoted string is valid YAML": {
			input: `
config:
  command: "run"
  args: ["--key", "{{.API_KEY"]
`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			expanded, err := ExpandEnv([]byte(tt.input))
			require.NoError(t, err)

			var result map[string]any
			err = yaml.Unmarshal(expanded, &result)

			if tt.expectYAMLErr {
				assert.Error(t, err, "Expected YAML parsing to fail")
			} else {
				assert.NoError(t, err, "Expected YAML parsing to succeed")
				assert.NotNil(t, result, "Parsed YAML should not be nil")
			}
		})
	}
}

// On template parse failure the contract is to hand back the original
// byte slice, not a copy.
func TestExpandEnvReturnsOriginalBytesOnError(t *testing.T) {
	tests := map[string]string{
		"parse error - unclosed template": "key: {{.VAR",
		"parse error - empty template":    "key: {{}}",
		"parse error - invalid syntax":    "key: {{.VAR1 {{.VAR2}}}}",
	}

	for name, inputStr := range tests {
		t.Run(name, func(t *testing.T) {
			input := []byte(inputStr)
			result, err := ExpandEnv(input)
			require.NoError(t, err)

			assert.Equal(t, inputStr, string(result), "Must return original data on error")
			assert.Equal(t, input, result, "Must return original byte slice on error")
		})
	}
}
