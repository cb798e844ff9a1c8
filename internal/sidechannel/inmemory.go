package sidechannel

import (
	"context"
	"fmt"
	"sync"
)

// ChannelPublisher is an in-process Publisher backed by a buffered channel.
// It preserves publish order and is used when no broker is configured, and
// in tests. For multi-process deployments use the AMQP publisher.
type ChannelPublisher struct {
	cardChan  chan *Card
	closeChan chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
}

// NewChannelPublisher creates an in-memory publisher. bufferSize bounds how
// many undelivered cards may be pending before PublishCard blocks.
func NewChannelPublisher(bufferSize int) *ChannelPublisher {
	return &ChannelPublisher{
		cardChan:  make(chan *Card, bufferSize),
		closeChan: make(chan struct{}),
	}
}

// PublishCard implements Publisher.
func (p *ChannelPublisher) PublishCard(ctx context.Context, card *Card) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return fmt.Errorf("publisher is closed")
	}

	select {
	case p.cardChan <- card:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.closeChan:
		return fmt.Errorf("publisher is closed")
	}
}

// Start delivers published cards to handler on a single goroutine,
// preserving publish order, until ctx is cancelled or the publisher is
// closed.
func (p *ChannelPublisher) Start(ctx context.Context, handler func(*Card)) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return fmt.Errorf("publisher is closed")
	}
	p.mu.RUnlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-p.closeChan:
				return
			case card := <-p.cardChan:
				if card == nil {
					return
				}
				handler(card)
			}
		}
	}()

	return nil
}

// Drain returns any cards currently buffered, without blocking.
func (p *ChannelPublisher) Drain() []*Card {
	var cards []*Card
	for {
		select {
		case card := <-p.cardChan:
			cards = append(cards, card)
		default:
			return cards
		}
	}
}

// Close implements Publisher. It stops delivery and waits for the
// consumer goroutine to exit.
func (p *ChannelPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.closeChan)
	p.mu.Unlock()

	p.wg.Wait()
	return nil
}
