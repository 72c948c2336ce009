package backend

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"folio/pkg/logic"
)

// CompileAll renders one theory into several formats concurrently.
// Formats are deduplicated; an unknown format fails the whole call. Each
// compiler runs independently, so per-format diagnostics stay separated
// in the result map.
func CompileAll(ctx context.Context, th *logic.Theory, formats []Format) (map[Format]Result, error) {
	seen := make(map[Format]bool, len(formats))
	var todo []Format
	for _, f := range formats {
		if seen[f] {
			continue
		}
		seen[f] = true
		todo = append(todo, f)
	}

	var mu sync.Mutex
	results := make(map[Format]Result, len(todo))
	g, ctx := errgroup.WithContext(ctx)
	for _, f := range todo {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c, err := For(f)
			if err != nil {
				return err
			}
			res, err := c.CompileTheory(th)
			if err != nil {
				return err
			}
			mu.Lock()
			results[f] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
