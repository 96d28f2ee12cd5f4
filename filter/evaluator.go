package filter

import (
	"context"
	"runtime"
	"sync"

	"github.com/kodayn/osukit/tracker"
)

// EvaluatorOption configures an evaluator
type EvaluatorOption func(*ConcurrentEvaluator)

// WithWorkers sets the number of worker goroutines
func WithWorkers(workers int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		e.workerCount = workers
	}
}

// WithBatchSize sets the batch size for chunked processing
func WithBatchSize(size int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		e.batchSize = size
	}
}

// ConcurrentEvaluator implements both Evaluator and BatchEvaluator interfaces
type ConcurrentEvaluator struct {
	workerCount int
	batchSize   int
	pool        WorkerPool
}

// NewConcurrentEvaluator creates a new concurrent evaluator
func NewConcurrentEvaluator(opts ...EvaluatorOption) *ConcurrentEvaluator {
	e := &ConcurrentEvaluator{
		workerCount: runtime.GOMAXPROCS(0),
		batchSize:   100,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.pool = NewWorkerPool(e.workerCount)

	return e
}

// Evaluate evaluates a single filter against all plays
func (e *ConcurrentEvaluator) Evaluate(ctx context.Context, filter CompiledFilter, plays []tracker.ScoreInfo) ([]tracker.ScoreInfo, error) {
	if len(plays) == 0 {
		return []tracker.ScoreInfo{}, nil
	}

	// For small play lists, don't bother with concurrency
	if len(plays) < e.batchSize {
		return e.evaluateSequential(filter, plays), nil
	}

	// Use concurrent evaluation for large play lists
	return e.evaluateConcurrent(ctx, filter, plays)
}

// EvaluateBatch evaluates multiple filters against plays concurrently
func (e *ConcurrentEvaluator) EvaluateBatch(ctx context.Context, filters map[string]CompiledFilter, plays []tracker.ScoreInfo) (map[string][]tracker.ScoreInfo, error) {
	if len(filters) == 0 || len(plays) == 0 {
		return make(map[string][]tracker.ScoreInfo), nil
	}

	results := make(map[string][]tracker.ScoreInfo)
	resultChan := make(chan BatchResult, len(filters))

	var wg sync.WaitGroup
	for name, filter := range filters {
		wg.Add(1)

		err := e.pool.Submit(func() {
			defer wg.Done()

			select {
			case <-ctx.Done():
				resultChan <- BatchResult{
					FilterName: name,
					Error:      ctx.Err(),
				}
				return
			default:
			}

			matches, err := e.Evaluate(ctx, filter, plays)
			resultChan <- BatchResult{
				FilterName: name,
				Matches:    matches,
				Error:      err,
			}
		})

		if err != nil {
			wg.Done()
			// Pool is stopped, return early
			return nil, err
		}
	}

	// Close result channel when all work is done
	go func() {
		wg.Wait()
		close(resultChan)
	}()

	// Collect results
	for result := range resultChan {
		if result.Error != nil {
			// Skip filters that error
			continue
		}
		results[result.FilterName] = result.Matches
	}

	return results, nil
}

// evaluateSequential evaluates a filter against all plays sequentially
func (e *ConcurrentEvaluator) evaluateSequential(filter CompiledFilter, plays []tracker.ScoreInfo) []tracker.ScoreInfo {
	matches := make([]tracker.ScoreInfo, 0, len(plays)/10) // Pre-allocate with estimate
	for _, play := range plays {
		if filter.Evaluate(play) {
			matches = append(matches, play)
		}
	}
	return matches
}

// evaluateConcurrent evaluates a filter against plays using the worker pool
func (e *ConcurrentEvaluator) evaluateConcurrent(ctx context.Context, filter CompiledFilter, plays []tracker.ScoreInfo) ([]tracker.ScoreInfo, error) {
	// Calculate chunk size
	chunkSize := max(len(plays)/e.workerCount, e.batchSize)

	// Result collection
	type chunkResult struct {
		matches []tracker.ScoreInfo
		order   int
	}

	resultChan := make(chan chunkResult, (len(plays)/chunkSize)+1)
	var wg sync.WaitGroup

	// Process chunks concurrently
	chunkIndex := 0
	for i := 0; i < len(plays); i += chunkSize {
		end := min(i+chunkSize, len(plays))

		wg.Add(1)
		chunk := plays[i:end]
		index := chunkIndex
		chunkIndex++

		err := e.pool.Submit(func() {
			defer wg.Done()

			// Check context
			select {
			case <-ctx.Done():
				return
			default:
			}

			// Evaluate chunk
			matches := make([]tracker.ScoreInfo, 0, len(chunk)/10)
			for _, play := range chunk {
				if filter.Evaluate(play) {
					matches = append(matches, play)
				}
			}

			resultChan <- chunkResult{matches: matches, order: index}
		})

		if err != nil {
			wg.Done()
			return nil, err
		}
	}

	// Wait for completion
	go func() {
		wg.Wait()
		close(resultChan)
	}()

	// Collect results maintaining order
	results := make(map[int][]tracker.ScoreInfo)
	for result := range resultChan {
		results[result.order] = result.matches
	}

	// Check context one more time
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	// Combine results in order
	totalMatches := 0
	for i := 0; i < len(results); i++ {
		totalMatches += len(results[i])
	}

	allMatches := make([]tracker.ScoreInfo, 0, totalMatches)
	for i := 0; i < len(results); i++ {
		allMatches = append(allMatches, results[i]...)
	}

	return allMatches, nil
}

// Stop gracefully stops the evaluator's worker pool
func (e *ConcurrentEvaluator) Stop(ctx context.Context) error {
	return e.pool.Stop(ctx)
}
