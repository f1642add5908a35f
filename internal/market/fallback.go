package market

import (
	"context"
	"fmt"

	"github.com/hsliu/cnstock/internal/common"
	"github.com/hsliu/cnstock/internal/errors"
)

// Attempt is one named entry in a fallback chain: a data-source name and
// the fetch closure that queries it.
type Attempt struct {
	Source string
	Fetch  func(ctx context.Context) (*Table, error)
}

// Dispatch tries each attempt in order and returns the first non-empty
// result together with the name of the source that produced it. An empty
// table counts as a failure. Duplicate source names are skipped, keeping
// the first occurrence's position. When every source fails, the returned
// error aggregates all per-source outcomes.
func Dispatch(ctx context.Context, log *common.Logger, attempts []Attempt) (*Table, string, error) {
	seen := make(map[string]bool, len(attempts))
	var failures []string

	for _, a := range attempts {
		if seen[a.Source] {
			continue
		}
		seen[a.Source] = true

		if err := ctx.Err(); err != nil {
			return nil, "", err
		}

		table, err := a.Fetch(ctx)
		if err != nil {
			log.Debug().Str("source", a.Source).Err(err).Msg("Data source failed")
			failures = append(failures, errors.SourceUnavailable(a.Source, err).Error())
			continue
		}
		if table.Empty() {
			log.Debug().Str("source", a.Source).Msg("Data source returned no rows")
			failures = append(failures, errors.EmptyResult(a.Source).Error())
			continue
		}

		log.Debug().Str("source", a.Source).Int("rows", table.Len()).Msg("Data source succeeded")
		return table, a.Source, nil
	}

	if len(failures) == 0 {
		return nil, "", errors.AllSourcesFailed([]string{"no sources configured"})
	}
	return nil, "", errors.AllSourcesFailed(failures)
}

// orderSources builds the unique source priority list for an operation:
// the preferred source first, then the defaults. An empty preference keeps
// the default order. Unknown preferences are rejected.
func orderSources(preferred string, defaults []string) ([]string, error) {
	if preferred == "" {
		return defaults, nil
	}

	known := false
	for _, s := range defaults {
		if s == preferred {
			known = true
			break
		}
	}
	if !known {
		return nil, errors.UnknownSource(preferred)
	}

	ordered := make([]string, 0, len(defaults))
	ordered = append(ordered, preferred)
	for _, s := range defaults {
		if s != preferred {
			ordered = append(ordered, s)
		}
	}
	return ordered, nil
}

// attemptsFor maps an ordered source list onto fetch closures. Sources
// without a registered fetcher are an error: the caller declared support
// it cannot provide.
func attemptsFor(sources []string, fetchers map[string]func(ctx context.Context) (*Table, error)) ([]Attempt, error) {
	attempts := make([]Attempt, 0, len(sources))
	for _, s := range sources {
		fetch, ok := fetchers[s]
		if !ok {
			return nil, errors.Internal(fmt.Errorf("no fetcher registered for source %q", s))
		}
		attempts = append(attempts, Attempt{Source: s, Fetch: fetch})
	}
	return attempts, nil
}
