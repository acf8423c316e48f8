package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var authHeaders = map[string]string{
	"Content-Type":  "application/json",
	"Authorization": "Bearer s3cret",
}

func TestCompositionEndpointRequiresAuth(t *testing.T) {
	r := newTestRouter(testConfig(), nil, nil)

	w := doRequest(r, http.MethodPost, "/video/composition",
		map[string]string{"Content-Type": "application/json"},
		`{"title": "Tienda Coleman", "price": 89.99, "category": "tiendas-campana"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCompositionEndpointReturnsTimeline(t *testing.T) {
	r := newTestRouter(testConfig(), nil, nil)

	w := doRequest(r, http.MethodPost, "/video/composition", authHeaders,
		`{"title": "Tienda Coleman", "price": 89.99, "discount": 40, "category": "tiendas-campana"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp compositionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 30, resp.FPS)
	assert.Equal(t, 450, resp.DurationInFrames)
	assert.Equal(t, 1080, resp.Width)
	assert.Equal(t, 1920, resp.Height)

	names := make([]string, len(resp.Layers))
	for i, l := range resp.Layers {
		names[i] = l.Name
	}
	assert.Contains(t, names, "background")
	assert.Contains(t, names, "title")
	assert.Contains(t, names, "discount-badge")
	assert.Empty(t, resp.Frames, "no frames unless a range is requested")
}

func TestCompositionEndpointEvaluatesFrameRange(t *testing.T) {
	r := newTestRouter(testConfig(), nil, nil)

	w := doRequest(r, http.MethodPost, "/video/composition", authHeaders,
		`{"title": "Tienda Coleman", "price": 89.99, "fromFrame": 100, "toFrame": 110}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp compositionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Frames, 10)
	assert.Len(t, resp.Frames[0], len(resp.Layers))
}

func TestCompositionEndpointRejectsBadInput(t *testing.T) {
	r := newTestRouter(testConfig(), nil, nil)

	w := doRequest(r, http.MethodPost, "/video/composition", authHeaders, `{"price": 10}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodPost, "/video/composition", authHeaders,
		`{"title": "x", "dialogueSegments": [{"start": 2, "end": 1, "text": "mal"}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodPost, "/video/composition", authHeaders,
		`{"title": "x", "fromFrame": 0, "toFrame": 9999}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type mockUploader struct {
	url string
	err error
}

func (m *mockUploader) Upload(context.Context, string, string) (string, error) {
	return m.url, m.err
}

func newVideoRouter(up *mockUploader) *gin.Engine {
	srv := New(testConfig(), &mockSyncer{}, &mockStatusStore{}, mockCopyGen{}, up)
	return srv.Router()
}

func TestVideoPublishUploadsAndCleansUp(t *testing.T) {
	local := filepath.Join(t.TempDir(), "deal.mp4")
	require.NoError(t, os.WriteFile(local, []byte("x"), 0o644))

	r := newVideoRouter(&mockUploader{url: "https://cdn.example.com/deal.mp4"})
	w := doRequest(r, http.MethodPost, "/video/publish", authHeaders,
		`{"localPath": "`+local+`", "name": "deal.mp4"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cdn.example.com/deal.mp4")

	_, statErr := os.Stat(local)
	assert.True(t, os.IsNotExist(statErr), "local artifact removed after publish")
}

func TestVideoPublishWithoutBlobStore(t *testing.T) {
	r := newTestRouter(testConfig(), nil, nil)

	w := doRequest(r, http.MethodPost, "/video/publish", authHeaders,
		`{"localPath": "/tmp/x.mp4", "name": "x.mp4"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestVideoPublishUploadFailure(t *testing.T) {
	local := filepath.Join(t.TempDir(), "deal.mp4")
	require.NoError(t, os.WriteFile(local, []byte("x"), 0o644))

	r := newVideoRouter(&mockUploader{err: errors.New("bucket gone")})
	w := doRequest(r, http.MethodPost, "/video/publish", authHeaders,
		`{"localPath": "`+local+`", "name": "deal.mp4"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestVideoPublishRequiresFields(t *testing.T) {
	r := newVideoRouter(&mockUploader{})
	w := doRequest(r, http.MethodPost, "/video/publish", authHeaders, `{"name": "x.mp4"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
