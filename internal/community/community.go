// Package community supplies the reader-review component of an assessment.
package community

import "context"

// DefaultScore is used when no approved reviews exist
const DefaultScore = 50

// Provider returns the community score for a subject. ok is false when
// there is no review data and the caller should use its default.
type Provider interface {
	Score(ctx context.Context, subjectID string) (score int, ok bool, err error)
}

// Static reports no review data for every subject
type Static struct{}

// Score always reports no data
func (Static) Score(context.Context, string) (int, bool, error) {
	return DefaultScore, false, nil
}
