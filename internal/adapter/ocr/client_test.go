package ocr

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecognize_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/recognize", r.URL.Path)
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))

		file, _, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "png-bytes", string(data))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text": "WARNING: hot surface"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)

	text, err := c.Recognize(context.Background(), []byte("png-bytes"))

	require.NoError(t, err)
	assert.Equal(t, "WARNING: hot surface", text)
}

func TestRecognize_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "engine crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)

	_, err := c.Recognize(context.Background(), []byte("png-bytes"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestRecognize_Unreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 500*time.Millisecond)

	_, err := c.Recognize(context.Background(), []byte("png-bytes"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "OCR request failed")
}
