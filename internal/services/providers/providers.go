// Package providers renders the context sections fed into the decision
// prompt. Each provider covers one data source; the registry fans them out
// concurrently and tolerates individual failures so one flaky upstream does
// not starve the whole prompt.
package providers

import (
	"context"
	"sync"
	"time"

	"github.com/bytedance/gopkg/util/gopool"
	"github.com/qmerle/simbot/internal/services/promptbuilder"
	"go.uber.org/zap"
)

const provideTimeout = 45 * time.Second

// Provider renders one prompt section.
type Provider interface {
	Name() string
	Provide(ctx context.Context) (promptbuilder.Section, error)
}

// Registry fans providers out on a bounded worker pool and collects their
// sections in registration order.
type Registry struct {
	providers []Provider
	pool      gopool.Pool
	logger    *zap.Logger
}

// NewRegistry creates a provider registry with the given fan-out width.
func NewRegistry(logger *zap.Logger, concurrency int, providers ...Provider) *Registry {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Registry{
		providers: providers,
		pool:      gopool.NewPool("providers", int32(concurrency), gopool.NewConfig()),
		logger:    logger,
	}
}

// Collect runs all providers and returns the sections that succeeded, in
// registration order. Failed providers are logged and skipped.
func (r *Registry) Collect(ctx context.Context) []promptbuilder.Section {
	ctx, cancel := context.WithTimeout(ctx, provideTimeout)
	defer cancel()

	results := make([]*promptbuilder.Section, len(r.providers))

	var wg sync.WaitGroup
	for i, provider := range r.providers {
		i, provider := i, provider
		wg.Add(1)
		r.pool.CtxGo(ctx, func() {
			defer wg.Done()

			section, err := provider.Provide(ctx)
			if err != nil {
				r.logger.Warn("provider failed, skipping section",
					zap.String("provider", provider.Name()),
					zap.Error(err))
				return
			}
			results[i] = &section
		})
	}
	wg.Wait()

	sections := make([]promptbuilder.Section, 0, len(results))
	for _, section := range results {
		if section != nil {
			sections = append(sections, *section)
		}
	}
	return sections
}
