// Package lifecycle exposes rollover outcomes as a lifecycle.Source.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/todoroll/pkg/core"
)

// Subscriber is satisfied by core.Service.
type Subscriber interface {
	Subscribe() (<-chan core.Event, func())
}

type rolloverSource struct {
	sub Subscriber
	out chan lifecycle.Event
}

// NewSource creates a lifecycle.Source that emits one event per rollover run.
// The subscription is taken on Start and released when ctx is done.
func NewSource(sub Subscriber) lifecycle.Source {
	return &rolloverSource{
		sub: sub,
		out: make(chan lifecycle.Event),
	}
}

func (s *rolloverSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *rolloverSource) Start(ctx context.Context) error {
	events, cancel := s.sub.Subscribe()

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-events:
				if !ok {
					return nil
				}
				// core.Event implements lifecycle.Event (has String())
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
