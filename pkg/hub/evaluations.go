package hub

import (
	"context"
	"slices"

	"github.com/aussiebroadwan/atriahub/pkg/apiclient"
	"github.com/google/uuid"
)

// Evaluations manages evaluation experiments and their per-sample results.
// Experiments are resolved by the backend's own get-or-create endpoint.
type Evaluations struct {
	api *apiclient.Client
}

func (e *Evaluations) GetOrCreate(ctx context.Context, key apiclient.EvaluationExperimentGetOrCreate) (*apiclient.EvaluationExperiment, error) {
	return e.api.GetOrCreateEvaluation(ctx, key)
}

func (e *Evaluations) Get(ctx context.Context, id uuid.UUID) (*apiclient.EvaluationExperiment, error) {
	return e.api.GetEvaluation(ctx, id)
}

func (e *Evaluations) Delete(ctx context.Context, id uuid.UUID) error {
	return e.api.DeleteEvaluation(ctx, id)
}

// SampleIndices returns the indices that already have results, sorted.
func (e *Evaluations) SampleIndices(ctx context.Context, experimentID uuid.UUID) ([]int, error) {
	indices, err := e.api.ListSampleEvaluationIndices(ctx, experimentID)
	if err != nil {
		return nil, err
	}
	slices.Sort(indices)
	return indices, nil
}

// PendingSamples returns the indices in [0, total) without results, so an
// interrupted evaluation can resume.
func (e *Evaluations) PendingSamples(ctx context.Context, experimentID uuid.UUID, total int) ([]int, error) {
	done, err := e.SampleIndices(ctx, experimentID)
	if err != nil {
		return nil, err
	}

	var pending []int
	for i := range total {
		if _, found := slices.BinarySearch(done, i); !found {
			pending = append(pending, i)
		}
	}
	return pending, nil
}

func (e *Evaluations) WriteSamples(ctx context.Context, experimentID uuid.UUID, samples []apiclient.SampleEvaluation) error {
	return e.api.WriteSampleEvaluations(ctx, experimentID, samples)
}

func (e *Evaluations) ReadSamples(ctx context.Context, experimentID uuid.UUID, indices []int) ([]apiclient.SampleEvaluation, error) {
	return e.api.ReadSampleEvaluations(ctx, experimentID, indices)
}

// WriteMetrics stores experiment-level metrics, one entry per key in
// sorted key order.
func (e *Evaluations) WriteMetrics(ctx context.Context, experimentID uuid.UUID, metrics map[string]any) error {
	keys := make([]string, 0, len(metrics))
	for k := range metrics {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	entries := make([]apiclient.EvaluationMetric, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, apiclient.EvaluationMetric{Key: k, Value: metrics[k]})
	}
	return e.api.WriteEvaluationMetrics(ctx, experimentID, entries)
}

// ReadMetrics returns the experiment metrics keyed by name.
func (e *Evaluations) ReadMetrics(ctx context.Context, experimentID uuid.UUID) (map[string]any, error) {
	entries, err := e.api.ReadEvaluationMetrics(ctx, experimentID)
	if err != nil {
		return nil, err
	}

	out := make(map[string]any, len(entries))
	for _, m := range entries {
		out[m.Key] = m.Value
	}
	return out, nil
}

func (e *Evaluations) WriteExplanation(ctx context.Context, experimentID uuid.UUID, in apiclient.SampleExplanationWrite) error {
	return e.api.WriteSampleExplanation(ctx, experimentID, in)
}

// ReadExplanations lists a sample's explanations; configID narrows them to
// one explainer configuration when non-nil.
func (e *Evaluations) ReadExplanations(ctx context.Context, experimentID uuid.UUID, sampleIndex int, configID *uuid.UUID) ([]apiclient.SampleExplanation, error) {
	return e.api.ReadSampleExplanations(ctx, experimentID, sampleIndex, configID)
}

func (e *Evaluations) WriteExplanationMetrics(ctx context.Context, experimentID, explanationID uuid.UUID, metrics []apiclient.SampleExplanationMetric) error {
	return e.api.WriteSampleExplanationMetrics(ctx, experimentID, explanationID, metrics)
}

func (e *Evaluations) ReadExplanationMetrics(ctx context.Context, experimentID uuid.UUID, q apiclient.SampleExplanationMetricsQuery) ([]apiclient.SampleExplanationMetric, error) {
	return e.api.ReadSampleExplanationMetrics(ctx, experimentID, q)
}
