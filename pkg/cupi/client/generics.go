package client

import (
	"context"

	"github.com/diwise/cupi-client/pkg/cupi/entities"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
)

const DefaultRowsPerPage uint64 = 100

// ForEach pages through every entity matching params and hands each one,
// wrapped by wrap, to callback. It returns the number of entities visited.
func ForEach[T any](ctx context.Context, repo *Repository, wrap func(*entities.Entity) T, callback func(t T), params ...RequestDecoratorFunc) (count int, err error) {

	logger := logging.GetFromContext(ctx)

	limit := DefaultRowsPerPage
	pageNumber := uint64(1)

	for {
		var result *ListResult

		pageParams := append(append([]RequestDecoratorFunc{}, params...), Page(limit, pageNumber))

		logger.Debug("fetching page", "resource", repo.resource.Path, "page", pageNumber)

		result, err = repo.List(ctx, pageParams...)
		if err != nil {
			return
		}

		for _, e := range result.Entities {
			callback(wrap(e))
		}

		batchSize := len(result.Entities)
		count += batchSize

		if uint64(batchSize) < limit {
			break
		}

		if result.TotalCount >= 0 && int64(count) >= result.TotalCount {
			break
		}

		pageNumber++
	}

	return
}
