package cache

import "context"

// Chained reads through layers in order, back-filling the faster layers on a
// hit further down, and writes to every layer. It is typically an in-memory
// cache in front of a shared one.
type Chained struct {
	layers []Cache
}

// NewChained builds a chained cache. Nil layers are skipped.
func NewChained(layers ...Cache) *Chained {
	out := &Chained{}
	for _, layer := range layers {
		if layer != nil {
			out.layers = append(out.layers, layer)
		}
	}
	return out
}

func (c *Chained) Get(ctx context.Context, key string) (any, bool) {
	for i, layer := range c.layers {
		value, ok := layer.Get(ctx, key)
		if !ok {
			continue
		}
		for _, faster := range c.layers[:i] {
			faster.Set(ctx, key, value)
		}
		return value, true
	}
	return nil, false
}

func (c *Chained) Set(ctx context.Context, key string, value any) {
	for _, layer := range c.layers {
		layer.Set(ctx, key, value)
	}
}

// Flush flushes every layer that supports it.
func (c *Chained) Flush(ctx context.Context) error {
	for _, layer := range c.layers {
		if flusher, ok := layer.(Flusher); ok {
			if err := flusher.Flush(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

type nop struct{}

// Nop returns a cache that never stores anything.
func Nop() Cache { return nop{} }

func (nop) Get(context.Context, string) (any, bool) { return nil, false }
func (nop) Set(context.Context, string, any)        {}
