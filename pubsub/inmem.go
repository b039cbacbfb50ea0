package pubsub

import (
	"context"
	"sync"
)

// Inmem delivers within the same process. Used when no NATS server is
// configured and in tests.
type Inmem struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string]map[uint64]func([]byte)
}

func (p *Inmem) Pub(_ context.Context, topic string, data []byte) error {
	p.mu.RLock()
	handlers := make([]func([]byte), 0, len(p.subs[topic]))
	for _, h := range p.subs[topic] {
		handlers = append(handlers, h)
	}
	p.mu.RUnlock()

	for _, h := range handlers {
		h(data)
	}

	return nil
}

func (p *Inmem) Sub(topic string, handler func(data []byte)) (func() error, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.subs == nil {
		p.subs = map[string]map[uint64]func([]byte){}
	}

	if p.subs[topic] == nil {
		p.subs[topic] = map[uint64]func([]byte){}
	}

	p.nextID++
	subID := p.nextID
	p.subs[topic][subID] = handler

	var once sync.Once
	return func() error {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()

			delete(p.subs[topic], subID)
			if len(p.subs[topic]) == 0 {
				delete(p.subs, topic)
			}
		})
		return nil
	}, nil
}

// Subscribers returns the number of active handlers on topic.
func (p *Inmem) Subscribers(topic string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subs[topic])
}
