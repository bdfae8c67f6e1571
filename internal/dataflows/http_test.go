package dataflows

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/psxlens/internal/models"
)

func TestHTTPRenderer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			assert.Equal(t, "psxlens-test", r.Header.Get("User-Agent"))
			_, _ = w.Write([]byte(sectorPage))
		case "/empty":
			_, _ = w.Write([]byte("<html><body>no data</body></html>"))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	r := NewHTTPRenderer("psxlens-test", "table", 5*time.Second)
	ctx := context.Background()

	body, err := r.Render(ctx, srv.URL+"/ok")
	require.NoError(t, err)
	assert.Contains(t, body, "HCAR")

	_, err = r.Render(ctx, srv.URL+"/empty")
	var renderErr *models.RenderError
	assert.ErrorAs(t, err, &renderErr)

	_, err = r.Render(ctx, srv.URL+"/down")
	var fetchErr *models.FetchError
	assert.ErrorAs(t, err, &fetchErr)
}
