package media_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swiftcart/storefront-platform/internal/media"
)

func TestClient_Upload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "swiftstore", r.FormValue("upload_preset"))
		assert.Equal(t, "products", r.FormValue("folder"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "mug.jpg", header.Filename)

		_, _ = w.Write([]byte(`{"secure_url":"https://cdn.example.com/products/mug.jpg"}`))
	}))
	defer srv.Close()

	c := media.NewClient(srv.URL, "swiftstore")
	url, err := c.Upload(context.Background(), "mug.jpg", strings.NewReader("fake-image-bytes"), "products")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/products/mug.jpg", url)
}

func TestClient_UploadFailureIsSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid upload preset"}}`))
	}))
	defer srv.Close()

	c := media.NewClient(srv.URL, "bad-preset")
	_, err := c.Upload(context.Background(), "mug.jpg", strings.NewReader("x"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid upload preset")
}
