package domain

import (
	"context"
)

// Renderer receives every event emitted by the game in emission order.
type Renderer interface {
	Render(event Event) error
}

type HubUseCase interface {
	Activate(ctx context.Context, c Coord) error
	Subscribe(r Renderer)
	Done() <-chan struct{}
}

// Frontend is a renderer that also drives input.
type Frontend interface {
	Renderer
	Serve(ctx context.Context, hub HubUseCase) error
}
