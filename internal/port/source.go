package port

import "context"

// LineSource yields the input stream one line at a time, in order.
type LineSource interface {
	Each(ctx context.Context, fn func(line string) error) error
}
