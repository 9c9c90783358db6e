package config

import (
	"errors"
	"fmt"
)

// Sentinel errors for config loading and registry lookups. Callers match
// these with errors.Is after unwrapping ValidationError/LoadError.
var (
	ErrConfigNotFound       = errors.New("configuration file not found")
	ErrInvalidYAML          = errors.New("invalid YAML syntax")
	ErrValidationFailed     = errors.New("configuration validation failed")
	ErrAgentNotFound        = errors.New("agent not found")
	ErrChainNotFound        = errors.New("chain not found")
	ErrMCPServerNotFound    = errors.New("MCP server not found")
	ErrLLMProviderNotFound  = errors.New("LLM provider not found")
	ErrInvalidReference     = errors.New("invalid configuration reference")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidValue         = errors.New("invalid field value")
)

// ValidationError identifies which component and field failed validation.
type ValidationError struct {
	Component string // agent, chain, mcp_server, llm_provider
	ID        string
	Field     string // optional
	Err       error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s '%s': field '%s': %v", e.Component, e.ID, e.Field, e.Err)
	}
	return fmt.Sprintf("%s '%s': %v", e.Component, e.ID, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError wraps err with the component/field it applies to.
func NewValidationError(component, id, field string, err error) *ValidationError {
	return &ValidationError{Component: component, ID: id, Field: field, Err: err}
}

// LoadError attaches the offending file to a configuration loading error.
type LoadError struct {
	File string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.File, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// NewLoadError wraps err with the file being loaded.
func NewLoadError(file string, err error) *LoadError {
	return &LoadError{File: file, Err: err}
}
