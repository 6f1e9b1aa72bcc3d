//go:build !integration

package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/geocontext/internal/config"
)

func computeRequestBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"points": []map[string]any{
			{"id": "p1", "north": 0, "east": 0},
		},
		"locations": map[string]any{
			"north":   []float64{0, 3, 6},
			"east":    []float64{0, 4, 8},
			"columns": map[string][]float64{"population": {2, 3, 5}, "young": {1, 2, 4}},
		},
		"spec": map[string]any{
			"groups":      []string{"young"},
			"populations": []string{"population"},
			"proportions": []bool{true},
			"k_values":    []int{4},
		},
	})
	require.NoError(t, err)
	return body
}

func TestHandleCompute(t *testing.T) {
	cfg = &config.Config{Compute: config.ComputeConfig{Concurrency: 2}}

	req := httptest.NewRequest(http.MethodPost, "/context/compute", bytes.NewReader(computeRequestBody(t)))
	rec := httptest.NewRecorder()
	handleCompute(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Columns []string   `json:"columns"`
		Rows    [][]string `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, []string{"point", "radius_k4", "total_k4", "group_young_k4", "mean_young_k4"}, resp.Columns)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, []string{"p1", "5", "5", "3", "0.6"}, resp.Rows[0])
}

func TestHandleCompute_InvalidBody(t *testing.T) {
	cfg = &config.Config{Compute: config.ComputeConfig{Concurrency: 2}}

	req := httptest.NewRequest(http.MethodPost, "/context/compute", bytes.NewReader([]byte("{")))
	rec := httptest.NewRecorder()
	handleCompute(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCompute_NoPoints(t *testing.T) {
	cfg = &config.Config{Compute: config.ComputeConfig{Concurrency: 2}}

	req := httptest.NewRequest(http.MethodPost, "/context/compute", bytes.NewReader([]byte(`{"points":[]}`)))
	rec := httptest.NewRecorder()
	handleCompute(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCompute_InsufficientPopulation(t *testing.T) {
	cfg = &config.Config{Compute: config.ComputeConfig{Concurrency: 2}}

	body, err := json.Marshal(map[string]any{
		"points": []map[string]any{{"id": "p1", "north": 0, "east": 0}},
		"locations": map[string]any{
			"north":   []float64{0},
			"east":    []float64{0},
			"columns": map[string][]float64{"population": {2}, "young": {1}},
		},
		"spec": map[string]any{
			"groups":      []string{"young"},
			"populations": []string{"population"},
			"proportions": []bool{true},
			"k_values":    []int{100},
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/context/compute", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handleCompute(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleCompute_BadSpec(t *testing.T) {
	cfg = &config.Config{Compute: config.ComputeConfig{Concurrency: 2}}

	body, err := json.Marshal(map[string]any{
		"points": []map[string]any{{"id": "p1", "north": 0, "east": 0}},
		"locations": map[string]any{
			"north":   []float64{0},
			"east":    []float64{0},
			"columns": map[string][]float64{"population": {2}},
		},
		"spec": map[string]any{
			"groups":      []string{"missing"},
			"populations": []string{"population"},
			"proportions": []bool{true},
			"k_values":    []int{1},
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/context/compute", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handleCompute(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
