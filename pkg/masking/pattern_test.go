package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
)

func bareService() *Service {
	return NewService(config.NewMCPServerRegistry(nil), AlertMaskingConfig{})
}

// customPatternService registers a single "test-server" carrying the
// given custom patterns.
func customPatternService(enabled bool, patterns ...config.MaskingPattern) *Service {
	return NewService(
		config.NewMCPServerRegistry(map[string]*config.MCPServerConfig{
			"test-server": stdioServer(&config.MaskingConfig{
				Enabled:        enabled,
				CustomPatterns: patterns,
			}),
		}),
		AlertMaskingConfig{},
	)
}

func regexNames(resolved *resolvedPatterns) []string {
	names := make([]string, len(resolved.regexPatterns))
	for i, p := range resolved.regexPatterns {
		names[i] = p.Name
	}
	return names
}

func TestCompileBuiltinPatterns(t *testing.T) {
	svc := bareService()

	// With an empty registry there are no custom patterns, so the
	// compiled set is exactly the built-in catalog.
	builtin := config.GetBuiltinConfig()
	assert.Equal(t, len(builtin.MaskingPatterns), len(svc.patterns),
		"All built-in patterns should compile (no custom patterns with empty registry)")

	for name, cp := range svc.patterns {
		assert.NotNil(t, cp.Regex, "Pattern %s should have compiled regex", name)
		assert.NotEmpty(t, cp.Replacement, "Pattern %s should have replacement", name)
	}
}

func TestCompileCustomPatterns(t *testing.T) {
	svc := customPatternService(true, config.MaskingPattern{
		Pattern:     `CUSTOM_SECRET_[A-Za-z0-9]+`,
		Replacement: "[MASKED_CUSTOM]",
		Description: "Custom secret pattern",
	})

	builtinCount := len(config.GetBuiltinConfig().MaskingPatterns)
	assert.Equal(t, builtinCount+1, len(svc.patterns))

	// Custom patterns are keyed "custom:<server>:<index>".
	cp, exists := svc.patterns["custom:test-server:0"]
	require.True(t, exists, "Custom pattern should be registered")
	assert.Equal(t, "[MASKED_CUSTOM]", cp.Replacement)
}

func TestCompileCustomPatterns_InvalidRegex(t *testing.T) {
	svc := customPatternService(true,
		config.MaskingPattern{Pattern: `[invalid`, Replacement: "[MASKED]"},
		config.MaskingPattern{Pattern: `valid_pattern`, Replacement: "[MASKED_VALID]"},
	)

	_, invalidExists := svc.patterns["custom:test-server:0"]
	assert.False(t, invalidExists, "Invalid regex pattern should be skipped")

	_, validExists := svc.patterns["custom:test-server:1"]
	assert.True(t, validExists, "Valid pattern should be compiled")
}

func TestCompileCustomPatterns_MaskingDisabled(t *testing.T) {
	svc := customPatternService(false,
		config.MaskingPattern{Pattern: `secret`, Replacement: "[MASKED]"})

	_, exists := svc.patterns["custom:test-server:0"]
	assert.False(t, exists, "Custom patterns from disabled servers should not be compiled")
}

func TestResolvePatterns_GroupExpansion(t *testing.T) {
	svc := bareService()

	tests := map[string]struct {
		groups         []string
		minRegex       int
		hasCodeMaskers bool
	}{
		"basic group": {
			groups:   []string{"basic"},
			minRegex: 2, // api_key, password
		},
		"secrets group": {
			groups:   []string{"secrets"},
			minRegex: 5, // api_key, password, token, private_key, secret_key
		},
		"security group": {
			groups:   []string{"security"},
			minRegex: 7,
		},
		"kubernetes group": {
			// kubernetes_secret is a code masker, not a regex.
			groups:         []string{"kubernetes"},
			minRegex:       3,
			hasCodeMaskers: true,
		},
		"cloud group": {
			groups:   []string{"cloud"},
			minRegex: 4,
		},
		"all group": {
			groups:   []string{"all"},
			minRegex: 15,
		},
		"multiple groups with dedup": {
			// basic and secrets share api_key and password.
			groups:   []string{"basic", "secrets"},
			minRegex: 5,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			resolved := svc.resolvePatterns(&config.MaskingConfig{
				Enabled:       true,
				PatternGroups: tt.groups,
			}, "")

			assert.GreaterOrEqual(t, len(resolved.regexPatterns), tt.minRegex,
				"Should have at least %d regex patterns", tt.minRegex)

			if tt.hasCodeMaskers {
				assert.NotEmpty(t, resolved.codeMaskerNames, "Should have code maskers")
				assert.Contains(t, resolved.codeMaskerNames, "kubernetes_secret")
			}
		})
	}
}

func TestResolvePatterns_IndividualPatterns(t *testing.T) {
	svc := bareService()

	resolved := svc.resolvePatterns(&config.MaskingConfig{
		Enabled:  true,
		Patterns: []string{"api_key", "email"},
	}, "")

	assert.Len(t, resolved.regexPatterns, 2)

	names := regexNames(resolved)
	assert.Contains(t, names, "api_key")
	assert.Contains(t, names, "email")
}

func TestResolvePatterns_UnknownGroup(t *testing.T) {
	svc := bareService()

	resolved := svc.resolvePatterns(&config.MaskingConfig{
		Enabled:       true,
		PatternGroups: []string{"nonexistent_group"},
	}, "")

	assert.Empty(t, resolved.regexPatterns)
	assert.Empty(t, resolved.codeMaskerNames)
}

func TestResolvePatterns_WithCustomPatterns(t *testing.T) {
	custom := config.MaskingPattern{Pattern: `MY_SECRET_[A-Z]+`, Replacement: "[MASKED_MY_SECRET]"}
	svc := NewService(
		config.NewMCPServerRegistry(map[string]*config.MCPServerConfig{
			"test-server": stdioServer(&config.MaskingConfig{
				Enabled:        true,
				PatternGroups:  []string{"basic"},
				CustomPatterns: []config.MaskingPattern{custom},
			}),
		}),
		AlertMaskingConfig{},
	)

	resolved := svc.resolvePatterns(&config.MaskingConfig{
		Enabled:        true,
		PatternGroups:  []string{"basic"},
		CustomPatterns: []config.MaskingPattern{custom},
	}, "test-server")

	// basic group (api_key, password) plus the custom pattern.
	assert.GreaterOrEqual(t, len(resolved.regexPatterns), 3)
}

func TestResolvePatternsFromGroup(t *testing.T) {
	svc := bareService()

	t.Run("valid group", func(t *testing.T) {
		resolved := svc.resolvePatternsFromGroup("security")
		assert.GreaterOrEqual(t, len(resolved.regexPatterns), 7)
	})

	t.Run("unknown group", func(t *testing.T) {
		resolved := svc.resolvePatternsFromGroup("nonexistent")
		assert.Empty(t, resolved.regexPatterns)
		assert.Empty(t, resolved.codeMaskerNames)
	})
}

func TestResolvePatterns_Deduplication(t *testing.T) {
	svc := bareService()

	// api_key arrives both via the basic group and the individual list.
	resolved := svc.resolvePatterns(&config.MaskingConfig{
		Enabled:       true,
		PatternGroups: []string{"basic"},
		Patterns:      []string{"api_key"},
	}, "")

	apiKeyCount := 0
	for _, name := range regexNames(resolved) {
		if name == "api_key" {
			apiKeyCount++
		}
	}
	assert.Equal(t, 1, apiKeyCount, "api_key should appear only once (deduplicated)")
}
