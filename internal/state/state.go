package state

import (
	"context"

	"hnreport/internal/components"
	"hnreport/internal/config"
	"hnreport/internal/core"
)

// State is everything a built application holds on to between start and
// shutdown.
type State struct {
	Config   *config.Config
	Registry *components.Registry
	Pipeline *core.Pipeline
	Bot      *core.Bot
}

func NewState(cfg *config.Config, registry *components.Registry, pipeline *core.Pipeline, bot *core.Bot) *State {
	return &State{
		Config:   cfg,
		Registry: registry,
		Pipeline: pipeline,
		Bot:      bot,
	}
}

// Close stops the bot, which shuts down the targets and then the components.
func (s *State) Close(ctx context.Context) error {
	return s.Bot.Stop(ctx)
}
