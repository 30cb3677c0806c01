package state

import (
	"context"

	"github.com/llehouerou/essai/internal/playback"
)

// Interface defines the state manager contract for dependency injection and testing.
type Interface interface {
	playback.PositionStore
	Settings() (playback.Settings, error)
	SaveSettings(s playback.Settings)
	Token() (string, error)
	SaveToken(token string) error
	DeleteToken() error
	GetQueue(ctx context.Context) (*QueueState, error)
	SaveQueue(ctx context.Context, state QueueState) error
	Close() error
}

var (
	_ Interface = (*Manager)(nil)
	_ Interface = (*Mock)(nil)
)
