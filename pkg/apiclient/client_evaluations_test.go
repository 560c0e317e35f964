package apiclient_test

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/aussiebroadwan/atriahub/pkg/apiclient"
	"github.com/aussiebroadwan/atriahub/pkg/httpx"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestWriteSampleExplanationMultipart(t *testing.T) {
	t.Parallel()

	expID := uuid.New()
	configID := uuid.New()

	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/evaluation_experiments/"+expID.String()+"/sample_explanations", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		require.Equal(t, "saliency", r.FormValue("name"))
		require.Equal(t, "7", r.FormValue("sample_index"))
		require.Equal(t, configID.String(), r.FormValue("config_id"))
		require.JSONEq(t, `{"method":"grad"}`, r.FormValue("explanation_metadata"))

		f, hdr, err := r.FormFile("explanation_file")
		require.NoError(t, err)
		defer f.Close()
		require.Equal(t, "explanation.bin", hdr.Filename)
		payload, err := io.ReadAll(f)
		require.NoError(t, err)
		require.Equal(t, []byte{1, 2, 3}, payload)

		w.WriteHeader(http.StatusOK)
	})

	err := apiclient.NewClient(srv.URL, "k").WriteSampleExplanation(t.Context(), expID, apiclient.SampleExplanationWrite{
		Name:        "saliency",
		ConfigID:    configID,
		ConfigHash:  "abc",
		SampleIndex: 7,
		Metadata:    map[string]any{"method": "grad"},
		Payload:     []byte{1, 2, 3},
	})
	require.NoError(t, err)
}

func TestSampleEvaluationsRoundTrip(t *testing.T) {
	t.Parallel()

	expID := uuid.New()
	stored := map[int]map[string]any{}

	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		base := "/api/v1/evaluation_experiments/" + expID.String()
		switch r.URL.Path {
		case base + "/sample_evaluations":
			var in []apiclient.SampleEvaluation
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			for _, s := range in {
				stored[s.SampleIndex] = s.Data
			}
		case base + "/sample_evaluations/indices":
			var idx []int
			for k := range stored {
				idx = append(idx, k)
			}
			httpx.WriteJSON(w, http.StatusOK, idx)
		case base + "/sample_evaluations/read":
			var idx []int
			require.NoError(t, json.NewDecoder(r.Body).Decode(&idx))
			var out []apiclient.SampleEvaluation
			for _, i := range idx {
				out = append(out, apiclient.SampleEvaluation{SampleIndex: i, Data: stored[i]})
			}
			httpx.WriteJSON(w, http.StatusOK, out)
		case base + "/metrics":
			if r.Method == http.MethodGet {
				httpx.WriteJSON(w, http.StatusOK, []apiclient.EvaluationMetric{{Key: "f1", Value: 0.9}})
			}
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	c := apiclient.NewClient(srv.URL, "k")
	ctx := t.Context()

	require.NoError(t, c.WriteSampleEvaluations(ctx, expID, []apiclient.SampleEvaluation{
		{SampleIndex: 3, Data: map[string]any{"pred": "cat"}},
	}))

	indices, err := c.ListSampleEvaluationIndices(ctx, expID)
	require.NoError(t, err)
	require.Equal(t, []int{3}, indices)

	samples, err := c.ReadSampleEvaluations(ctx, expID, []int{3})
	require.NoError(t, err)
	require.Equal(t, "cat", samples[0].Data["pred"])

	require.NoError(t, c.WriteEvaluationMetrics(ctx, expID, []apiclient.EvaluationMetric{{Key: "f1", Value: 0.9}}))
	metrics, err := c.ReadEvaluationMetrics(ctx, expID)
	require.NoError(t, err)
	require.Equal(t, "f1", metrics[0].Key)

	_, err = c.ReadSampleExplanations(ctx, expID, 3, nil)
	require.True(t, apiclient.IsNotFound(err))
}

func TestSampleExplanationMetricsQuery(t *testing.T) {
	t.Parallel()

	expID, explID, configID := uuid.New(), uuid.New(), uuid.New()

	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, explID.String(), q.Get("sample_explanation_id"))
		if r.Method == http.MethodGet {
			require.Equal(t, "2", q.Get("sample_index"))
			require.Equal(t, configID.String(), q.Get("config_id"))
			httpx.WriteJSON(w, http.StatusOK, []apiclient.SampleExplanationMetric{{Name: "faithfulness"}})
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	c := apiclient.NewClient(srv.URL, "k")
	require.NoError(t, c.WriteSampleExplanationMetrics(t.Context(), expID, explID, []apiclient.SampleExplanationMetric{
		{Name: "faithfulness", ConfigID: configID, Data: map[string]any{"score": 1}},
	}))

	out, err := c.ReadSampleExplanationMetrics(t.Context(), expID, apiclient.SampleExplanationMetricsQuery{
		SampleIndex:         2,
		SampleExplanationID: &explID,
		ConfigID:            &configID,
	})
	require.NoError(t, err)
	require.Equal(t, "faithfulness", out[0].Name)
}
