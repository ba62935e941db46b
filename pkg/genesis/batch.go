package genesis

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/streaming-dev/IMA/pkg/contracts"
	"github.com/streaming-dev/IMA/pkg/storage"
)

// Job is one independent storage generation.
type Job struct {
	Generator contracts.Generator
	Params    contracts.Params
}

// GenerateBatch runs jobs in parallel and returns their storage images in job
// order. The first failure cancels jobs that have not started yet.
func GenerateBatch(ctx context.Context, jobs []Job) ([]storage.Storage, error) {
	results := make([]storage.Storage, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := job.Generator.GenerateStorage(job.Params)
			if err != nil {
				return fmt.Errorf("job %d (%s): %w", i, job.Generator.Name(), err)
			}
			results[i] = s
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
