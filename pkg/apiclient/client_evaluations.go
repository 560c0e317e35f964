package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
)

// ============================================================================
// Evaluation Experiments
// ============================================================================

// GetOrCreateEvaluation resolves an evaluation experiment by its natural key,
// creating it server-side when absent.
func (c *Client) GetOrCreateEvaluation(ctx context.Context, body EvaluationExperimentGetOrCreate) (*EvaluationExperiment, error) {
	var e EvaluationExperiment
	err := c.call(ctx, request{
		name:   "Evaluations::GetOrCreate",
		method: http.MethodPost,
		path:   "/evaluation_experiments/get_or_create",
		body:   body,
	}, &e)
	if err != nil {
		return nil, err
	}

	return &e, nil
}

func (c *Client) GetEvaluation(ctx context.Context, id uuid.UUID) (*EvaluationExperiment, error) {
	var e EvaluationExperiment
	err := c.call(ctx, request{
		name:   "Evaluations::Get",
		method: http.MethodGet,
		path:   evaluationPath(id, ""),
	}, &e)
	if err != nil {
		return nil, err
	}

	return &e, nil
}

func (c *Client) DeleteEvaluation(ctx context.Context, id uuid.UUID) error {
	return c.call(ctx, request{
		name:   "Evaluations::Delete",
		method: http.MethodDelete,
		path:   evaluationPath(id, ""),
		ok:     deleteStatuses,
	}, nil)
}

func evaluationPath(id uuid.UUID, sub string) string {
	p := "/evaluation_experiments/" + id.String()
	if sub != "" {
		p += "/" + sub
	}
	return p
}

// ============================================================================
// Sample Evaluations
// ============================================================================

// ListSampleEvaluationIndices returns the sample indices that already have results.
func (c *Client) ListSampleEvaluationIndices(ctx context.Context, experimentID uuid.UUID) ([]int, error) {
	var indices []int
	err := c.call(ctx, request{
		name:   "SampleEvaluations::ListIndices",
		method: http.MethodGet,
		path:   evaluationPath(experimentID, "sample_evaluations/indices"),
	}, &indices)
	if err != nil {
		return nil, err
	}

	return indices, nil
}

func (c *Client) WriteSampleEvaluations(ctx context.Context, experimentID uuid.UUID, samples []SampleEvaluation) error {
	return c.call(ctx, request{
		name:   "SampleEvaluations::Write",
		method: http.MethodPost,
		path:   evaluationPath(experimentID, "sample_evaluations"),
		body:   samples,
	}, nil)
}

func (c *Client) ReadSampleEvaluations(ctx context.Context, experimentID uuid.UUID, indices []int) ([]SampleEvaluation, error) {
	var samples []SampleEvaluation
	err := c.call(ctx, request{
		name:   "SampleEvaluations::Read",
		method: http.MethodPost,
		path:   evaluationPath(experimentID, "sample_evaluations/read"),
		body:   indices,
	}, &samples)
	if err != nil {
		return nil, err
	}

	return samples, nil
}

// ============================================================================
// Evaluation Metrics
// ============================================================================

func (c *Client) WriteEvaluationMetrics(ctx context.Context, experimentID uuid.UUID, metrics []EvaluationMetric) error {
	return c.call(ctx, request{
		name:   "EvaluationMetrics::Write",
		method: http.MethodPost,
		path:   evaluationPath(experimentID, "metrics"),
		body:   metrics,
	}, nil)
}

func (c *Client) ReadEvaluationMetrics(ctx context.Context, experimentID uuid.UUID) ([]EvaluationMetric, error) {
	var metrics []EvaluationMetric
	err := c.call(ctx, request{
		name:   "EvaluationMetrics::Read",
		method: http.MethodGet,
		path:   evaluationPath(experimentID, "metrics"),
	}, &metrics)
	if err != nil {
		return nil, err
	}

	return metrics, nil
}

// ============================================================================
// Sample Explanations
// ============================================================================

// WriteSampleExplanation uploads an explanation payload as multipart form data.
func (c *Client) WriteSampleExplanation(ctx context.Context, experimentID uuid.UUID, in SampleExplanationWrite) error {
	const name = "SampleExplanations::Write"

	metadata, err := json.Marshal(in.Metadata)
	if err != nil {
		return transportError(name, fmt.Errorf("failed to encode metadata: %w", err))
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"name", in.Name},
		{"sample_index", strconv.Itoa(in.SampleIndex)},
		{"config_id", in.ConfigID.String()},
		{"config_hash", in.ConfigHash},
		{"explanation_metadata", string(metadata)},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return transportError(name, err)
		}
	}

	fw, err := mw.CreateFormFile("explanation_file", "explanation.bin")
	if err != nil {
		return transportError(name, err)
	}
	if _, err := fw.Write(in.Payload); err != nil {
		return transportError(name, err)
	}
	if err := mw.Close(); err != nil {
		return transportError(name, err)
	}

	return c.call(ctx, request{
		name:        name,
		method:      http.MethodPost,
		path:        evaluationPath(experimentID, "sample_explanations"),
		raw:         &buf,
		contentType: mw.FormDataContentType(),
	}, nil)
}

// ReadSampleExplanations lists explanations for a sample, optionally filtered by config.
func (c *Client) ReadSampleExplanations(ctx context.Context, experimentID uuid.UUID, sampleIndex int, configID *uuid.UUID) ([]SampleExplanation, error) {
	query := url.Values{"sample_index": {strconv.Itoa(sampleIndex)}}
	if configID != nil {
		query.Set("config_id", configID.String())
	}

	var out []SampleExplanation
	err := c.call(ctx, request{
		name:   "SampleExplanations::Read",
		method: http.MethodGet,
		path:   evaluationPath(experimentID, "sample_explanations"),
		query:  query,
	}, &out)
	if err != nil {
		return nil, err
	}

	return out, nil
}

// ============================================================================
// Sample Explanation Metrics
// ============================================================================

func (c *Client) WriteSampleExplanationMetrics(ctx context.Context, experimentID, sampleExplanationID uuid.UUID, metrics []SampleExplanationMetric) error {
	return c.call(ctx, request{
		name:   "SampleExplanationMetrics::Write",
		method: http.MethodPost,
		path:   evaluationPath(experimentID, "sample_explanation_metrics"),
		query:  url.Values{"sample_explanation_id": {sampleExplanationID.String()}},
		body:   metrics,
	}, nil)
}

func (c *Client) ReadSampleExplanationMetrics(ctx context.Context, experimentID uuid.UUID, q SampleExplanationMetricsQuery) ([]SampleExplanationMetric, error) {
	query := url.Values{"sample_index": {strconv.Itoa(q.SampleIndex)}}
	if q.SampleExplanationID != nil {
		query.Set("sample_explanation_id", q.SampleExplanationID.String())
	}
	if q.ConfigID != nil {
		query.Set("config_id", q.ConfigID.String())
	}

	var out []SampleExplanationMetric
	err := c.call(ctx, request{
		name:   "SampleExplanationMetrics::Read",
		method: http.MethodGet,
		path:   evaluationPath(experimentID, "sample_explanation_metrics"),
		query:  query,
	}, &out)
	if err != nil {
		return nil, err
	}

	return out, nil
}
