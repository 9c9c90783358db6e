package masking

import (
	"fmt"
	"log/slog"
	"regexp"
	"slices"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
)

// CompiledPattern pairs a compiled regex with the replacement text that
// stands in for whatever it matches.
type CompiledPattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string
	Description string
}

// resolvedPatterns is the working set for one masking operation: code
// maskers run first, regex patterns second.
type resolvedPatterns struct {
	codeMaskerNames []string
	regexPatterns   []*CompiledPattern
}

// storeCompiled compiles and registers one pattern under the given key.
// A bad regex is logged and dropped rather than failing startup.
func (s *Service) storeCompiled(name string, pattern config.MaskingPattern, logAttrs ...any) bool {
	compiled, err := regexp.Compile(pattern.Pattern)
	if err != nil {
		attrs := append([]any{"pattern", name}, logAttrs...)
		slog.Error("Failed to compile masking pattern, skipping", append(attrs, "error", err)...)
		return false
	}
	s.patterns[name] = &CompiledPattern{
		Name:        name,
		Regex:       compiled,
		Replacement: pattern.Replacement,
		Description: pattern.Description,
	}
	return true
}

func (s *Service) compileBuiltinPatterns() {
	for name, pattern := range config.GetBuiltinConfig().MaskingPatterns {
		s.storeCompiled(name, pattern)
	}
}

// compileCustomPatterns registers the per-server custom patterns under
// "custom:{serverID}:{index}" keys so they cannot collide with built-ins
// or with each other.
func (s *Service) compileCustomPatterns() {
	for serverID, serverCfg := range s.registry.GetAll() {
		if serverCfg.DataMasking == nil || !serverCfg.DataMasking.Enabled {
			continue
		}
		for i, pattern := range serverCfg.DataMasking.CustomPatterns {
			name := fmt.Sprintf("custom:%s:%d", serverID, i)
			if s.storeCompiled(name, pattern, "server", serverID) {
				s.serverCustomPatterns[serverID] = append(s.serverCustomPatterns[serverID], name)
			}
		}
	}
}

// addGroup expands one pattern group into the resolved set, skipping
// names already present.
func (s *Service) addGroup(resolved *resolvedPatterns, seen map[string]bool, groupName string, builtin *config.BuiltinConfig) {
	for _, name := range s.patternGroups[groupName] {
		if seen[name] {
			continue
		}
		seen[name] = true
		s.addToResolved(resolved, name, builtin)
	}
}

// resolvePatterns expands a MaskingConfig into a deduplicated working
// set: pattern groups first, then individually listed patterns, then
// the server's own custom patterns.
func (s *Service) resolvePatterns(cfg *config.MaskingConfig, serverID string) *resolvedPatterns {
	seen := make(map[string]bool)
	resolved := &resolvedPatterns{}
	builtin := config.GetBuiltinConfig()

	for _, groupName := range cfg.PatternGroups {
		s.addGroup(resolved, seen, groupName, builtin)
	}

	for _, name := range cfg.Patterns {
		if seen[name] {
			continue
		}
		seen[name] = true
		s.addToResolved(resolved, name, builtin)
	}

	if serverID != "" {
		for _, name := range s.serverCustomPatterns[serverID] {
			if seen[name] {
				continue
			}
			seen[name] = true
			if cp, ok := s.patterns[name]; ok {
				resolved.regexPatterns = append(resolved.regexPatterns, cp)
			}
		}
	}

	return resolved
}

// resolvePatternsFromGroup resolves a single group name; unknown groups
// yield an empty set.
func (s *Service) resolvePatternsFromGroup(groupName string) *resolvedPatterns {
	resolved := &resolvedPatterns{}
	s.addGroup(resolved, make(map[string]bool), groupName, config.GetBuiltinConfig())
	return resolved
}

// addToResolved files one name into the right bucket: code masker if
// the built-in catalog says so, compiled regex otherwise.
func (s *Service) addToResolved(resolved *resolvedPatterns, name string, builtin *config.BuiltinConfig) {
	if slices.Contains(builtin.CodeMaskers, name) {
		resolved.codeMaskerNames = append(resolved.codeMaskerNames, name)
		return
	}

	if cp, ok := s.patterns[name]; ok {
		resolved.regexPatterns = append(resolved.regexPatterns, cp)
	}
}
