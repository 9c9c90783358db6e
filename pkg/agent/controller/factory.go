// Package controller provides iteration strategy implementations for agents.
package controller

import (
	"fmt"

	"github.com/rsoaresd/tarsy-bot-sub007/pkg/agent"
	"github.com/rsoaresd/tarsy-bot-sub007/pkg/config"
)

// Factory creates controllers by iteration strategy.
// Implements agent.ControllerFactory.
type Factory struct{}

// NewFactory creates a new controller factory.
func NewFactory() *Factory {
	return &Factory{}
}

// CreateController builds a Controller for the given strategy.
func (f *Factory) CreateController(strategy config.IterationStrategy, execCtx *agent.ExecutionContext) (agent.Controller, error) {
	switch strategy {
	case config.IterationStrategyReact:
		return NewReActController(), nil
	case config.IterationStrategyNativeThinking:
		return NewNativeThinkingController(), nil
	case config.IterationStrategySynthesis, config.IterationStrategySynthesisNativeThinking:
		return NewSynthesisController(), nil
	default:
		return nil, fmt.Errorf("unknown iteration strategy: %q", strategy)
	}
}
