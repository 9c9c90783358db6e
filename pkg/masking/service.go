package masking

import (
	"log/slog"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
)

// AlertMaskingConfig controls masking of inbound alert payloads.
type AlertMaskingConfig struct {
	Enabled      bool
	PatternGroup string
}

// Service masks sensitive data in MCP tool results and alert payloads.
// One instance is built at startup; after construction it only reads
// compiled patterns, so concurrent use is safe.
type Service struct {
	registry             *config.MCPServerRegistry
	patterns             map[string]*CompiledPattern // built-in plus custom, compiled
	patternGroups        map[string][]string         // group name to pattern names
	codeMaskers          map[string]Masker
	alertMasking         AlertMaskingConfig
	serverCustomPatterns map[string][]string // serverID to custom pattern keys
}

// NewService compiles every pattern up front and registers the code
// maskers. Patterns that fail to compile are logged and skipped rather
// than aborting startup.
func NewService(
	registry *config.MCPServerRegistry,
	alertCfg AlertMaskingConfig,
) *Service {
	s := &Service{
		registry:             registry,
		patterns:             make(map[string]*CompiledPattern),
		patternGroups:        config.GetBuiltinConfig().PatternGroups,
		codeMaskers:          make(map[string]Masker),
		alertMasking:         alertCfg,
		serverCustomPatterns: make(map[string][]string),
	}

	s.compileBuiltinPatterns()
	s.compileCustomPatterns()
	s.registerMasker(&KubernetesSecretMasker{})

	slog.Info("Masking service initialized",
		"builtin_patterns", len(config.GetBuiltinConfig().MaskingPatterns),
		"compiled_patterns", len(s.patterns),
		"code_maskers", len(s.codeMaskers),
		"alert_masking_enabled", alertCfg.Enabled)

	return s
}

// hasWork reports whether the resolved set would change anything.
func hasWork(resolved *resolvedPatterns) bool {
	return len(resolved.codeMaskerNames) > 0 || len(resolved.regexPatterns) > 0
}

// MaskToolResult masks MCP tool output according to the server's
// masking config. A masking failure redacts the whole result; leaking
// is worse than losing a tool output.
func (s *Service) MaskToolResult(content string, serverID string) string {
	if content == "" {
		return content
	}

	serverCfg, err := s.registry.Get(serverID)
	if err != nil || serverCfg.DataMasking == nil || !serverCfg.DataMasking.Enabled {
		return content
	}

	resolved := s.resolvePatterns(serverCfg.DataMasking, serverID)
	if !hasWork(resolved) {
		return content
	}

	masked, err := s.applyMasking(content, resolved)
	if err != nil {
		slog.Error("Masking failed, redacting content (fail-closed)",
			"server", serverID, "error", err)
		return "[REDACTED: data masking failure — tool result could not be safely processed]"
	}

	return masked
}

// MaskAlertData masks the alert payload with the configured pattern
// group. Unlike tool results, a failure passes the data through: alerts
// must not be dropped on a masking bug.
func (s *Service) MaskAlertData(data string) string {
	if !s.alertMasking.Enabled || data == "" {
		return data
	}

	resolved := s.resolvePatternsFromGroup(s.alertMasking.PatternGroup)
	if !hasWork(resolved) {
		return data
	}

	masked, err := s.applyMasking(data, resolved)
	if err != nil {
		slog.Error("Alert masking failed, continuing with unmasked data (fail-open)",
			"error", err)
		return data
	}

	return masked
}

// applyMasking runs code maskers first (they understand structure),
// then the regex patterns as a general sweep.
func (s *Service) applyMasking(content string, resolved *resolvedPatterns) (string, error) {
	masked := content

	for _, maskerName := range resolved.codeMaskerNames {
		masker, ok := s.codeMaskers[maskerName]
		if !ok {
			continue
		}
		if masker.AppliesTo(masked) {
			masked = masker.Mask(masked)
		}
	}

	for _, pattern := range resolved.regexPatterns {
		masked = pattern.Regex.ReplaceAllString(masked, pattern.Replacement)
	}

	return masked, nil
}

func (s *Service) registerMasker(m Masker) {
	s.codeMaskers[m.Name()] = m
}
