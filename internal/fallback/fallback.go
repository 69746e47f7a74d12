// Package fallback substitutes a known-good value when a primary source fails.
package fallback

import (
	"context"
	"fmt"
)

// Load runs primary and returns its value. If primary returns an error or
// panics, Load returns fallback unchanged together with the reason; nothing
// from a failed primary is ever returned. The returned error is informational:
// the value is always usable.
func Load[T any](ctx context.Context, primary func(context.Context) (T, error), fallback T) (value T, reason error) {
	defer func() {
		if r := recover(); r != nil {
			value, reason = fallback, fmt.Errorf("primary source panicked: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return fallback, err
	}
	v, err := primary(ctx)
	if err != nil {
		return fallback, err
	}
	return v, nil
}
