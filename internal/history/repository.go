package history

import "context"

// Repository defines read access to the observation store plus the single
// append operation used by the ingest worker. Reads never see partial writes:
// observations are immutable rows.
type Repository interface {
	// Recent retrieves up to limit observations for a bottleneck, newest
	// first.
	Recent(ctx context.Context, bottleneckID string, limit int) ([]Observation, error)

	// ByHourOfDay retrieves all observations for a bottleneck recorded at
	// the given hour of day (0-23), regardless of date.
	ByHourOfDay(ctx context.Context, bottleneckID string, hour int) ([]Observation, error)

	// Insert appends a new observation.
	Insert(ctx context.Context, obs Observation) error
}

// WindowBuilder assembles fixed-size feature windows from a Repository.
type WindowBuilder struct {
	repo Repository
	size int
}

// NewWindowBuilder creates a WindowBuilder producing windows of the given
// size. A non-positive size selects the model's trained window of 6.
func NewWindowBuilder(repo Repository, size int) *WindowBuilder {
	if size <= 0 {
		size = 6
	}
	return &WindowBuilder{repo: repo, size: size}
}

// Size returns the window length the builder produces.
func (b *WindowBuilder) Size() int {
	return b.size
}

// Build retrieves the most recent observations for a bottleneck and returns
// them as a chronological window of exactly the configured size. Fewer
// recorded observations than the window size yields ErrInsufficientData;
// missing rows are never padded or synthesized.
func (b *WindowBuilder) Build(ctx context.Context, bottleneckID string) (Window, error) {
	recent, err := b.repo.Recent(ctx, bottleneckID, b.size)
	if err != nil {
		return Window{}, err
	}

	if len(recent) < b.size {
		return Window{}, ErrInsufficientData
	}

	// Storage order is newest-first; the model was trained on chronological
	// sequences, so reverse before handing the window to inference.
	chronological := make([]Observation, b.size)
	for i := 0; i < b.size; i++ {
		chronological[i] = recent[b.size-1-i]
	}

	return Window{
		BottleneckID: bottleneckID,
		Observations: chronological,
	}, nil
}
