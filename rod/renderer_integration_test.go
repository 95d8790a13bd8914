//go:build integration

package rod_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/artdir/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_Render_ReturnsHydratedHTML(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Boston</title></head>
<body>
<div id="root"></div>
<script>
setTimeout(function () {
  document.getElementById('root').innerHTML = '<main>Art Appraisers in Boston</main>';
}, 100);
</script>
</body>
</html>`))
	}))
	defer srv.Close()

	r, err := rod.NewRenderer()
	require.NoError(t, err)
	defer r.Close()

	html, err := r.Render(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Contains(t, html, "<main>Art Appraisers in Boston</main>")
}

func TestRenderer_Render_ReturnsUnhydratedPageAfterWait(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head></head><body><div id="root"></div></body></html>`))
	}))
	defer srv.Close()

	r, err := rod.NewRenderer(rod.WithHydration("#root > *", 200*time.Millisecond))
	require.NoError(t, err)
	defer r.Close()

	html, err := r.Render(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Contains(t, html, `<div id="root"></div>`)
}

func TestRenderer_Render_ContextCancellation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	r, err := rod.NewRenderer()
	require.NoError(t, err)
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = r.Render(ctx, srv.URL)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderer_RecyclesBrowserAfterMaxPages(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div id="root"><p>ok</p></div></body></html>`))
	}))
	defer srv.Close()

	r, err := rod.NewRenderer(rod.WithMaxPages(2))
	require.NoError(t, err)
	defer r.Close()

	first := r.LauncherPID()
	for i := 0; i < 3; i++ {
		_, err := r.Render(context.Background(), srv.URL)
		require.NoError(t, err)
	}

	assert.NotEqual(t, first, r.LauncherPID())
}

func TestRenderer_Close_IsIdempotent(t *testing.T) {
	t.Parallel()

	r, err := rod.NewRenderer()
	require.NoError(t, err)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	assert.Zero(t, r.LauncherPID())
}
