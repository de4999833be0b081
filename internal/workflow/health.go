package workflow

import (
	"context"

	"quire/internal/stage"
)

// Health reports readiness of the external collaborators that can check
// themselves.
func (m *Manager) Health(ctx context.Context) []stage.Health {
	var out []stage.Health
	for _, c := range []any{m.fetcher, m.converter, m.renderer} {
		if checker, ok := c.(stage.HealthChecker); ok {
			out = append(out, checker.HealthCheck(ctx))
		}
	}
	return out
}
