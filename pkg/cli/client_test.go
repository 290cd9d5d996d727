package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SubmitQuery(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/query", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "SELECT 1", body["query"])

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "success",
			"data":   map[string]interface{}{"id": "q-1", "status": "pending"},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tok", "")
	rec, err := client.SubmitQuery(context.Background(), "SELECT 1", []string{"ds-1"}, "json", 0)
	require.NoError(t, err)
	assert.Equal(t, "q-1", rec.ID)
	assert.Equal(t, "pending", rec.Status)
}

func TestClient_ErrorEnvelope(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "error",
			"message": "query record not found",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", "k")
	_, err := client.GetResult(context.Background(), "missing")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.HTTPStatus)
	assert.Equal(t, "query record not found", apiErr.Message)
}

func TestClient_APIKeyHeader(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "svc-key", r.Header.Get("X-API-Key"))
		assert.Empty(t, r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "success",
			"data":   map[string]interface{}{"items": []interface{}{}, "total": 0},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", "svc-key")
	items, total, err := client.ListDatasets(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, int64(0), total)
}

func TestValidateHostURL(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validateHostURL("http://localhost:8080"))
	assert.NoError(t, validateHostURL("https://hub.example.com"))
	assert.Error(t, validateHostURL(""))
	assert.Error(t, validateHostURL("ftp://x"))
	assert.Error(t, validateHostURL("localhost:8080"))
}

func TestValidateOutputFormat(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validateOutputFormat(""))
	assert.NoError(t, validateOutputFormat("table"))
	assert.NoError(t, validateOutputFormat("json"))
	assert.Error(t, validateOutputFormat("yaml"))
}
