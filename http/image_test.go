package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/artdir"
	artdirhttp "github.com/fwojciec/artdir/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageChecker_CheckImage(t *testing.T) {
	t.Parallel()

	t.Run("valid image answers HEAD", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodHead, r.Method)
			assert.Equal(t, artdirhttp.DefaultUserAgent, r.Header.Get("User-Agent"))
			w.Header().Set("Content-Type", "image/jpeg")
		}))
		defer srv.Close()

		check, err := artdirhttp.NewImageChecker().CheckImage(context.Background(), srv.URL+"/a.jpg")

		require.NoError(t, err)
		assert.True(t, check.Valid)
		assert.Equal(t, http.StatusOK, check.Status)
		assert.Equal(t, "image/jpeg", check.ContentType)
		assert.False(t, check.CheckedAt.IsZero())
	})

	t.Run("custom user agent", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "directory-bot/2.0", r.Header.Get("User-Agent"))
			w.Header().Set("Content-Type", "image/png")
		}))
		defer srv.Close()

		checker := artdirhttp.NewImageChecker(artdirhttp.WithUserAgent("directory-bot/2.0"))
		check, err := checker.CheckImage(context.Background(), srv.URL+"/a.png")

		require.NoError(t, err)
		assert.True(t, check.Valid)
	})

	t.Run("404 is invalid", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		check, err := artdirhttp.NewImageChecker().CheckImage(context.Background(), srv.URL+"/gone.jpg")

		require.NoError(t, err)
		assert.False(t, check.Valid)
		assert.Equal(t, http.StatusNotFound, check.Status)
		assert.Equal(t, "HTTP 404", check.Reason)
		assert.False(t, check.Retryable())
	})

	t.Run("falls back to ranged GET when HEAD is refused", func(t *testing.T) {
		t.Parallel()

		var gets atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			gets.Add(1)
			assert.Equal(t, "bytes=0-0", r.Header.Get("Range"))
			w.Header().Set("Content-Type", "image/png")
			w.WriteHeader(http.StatusPartialContent)
			_, _ = w.Write([]byte{0x89})
		}))
		defer srv.Close()

		check, err := artdirhttp.NewImageChecker().CheckImage(context.Background(), srv.URL+"/a.png")

		require.NoError(t, err)
		assert.True(t, check.Valid)
		assert.Equal(t, int32(1), gets.Load())
	})

	t.Run("html response is not an image", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
		}))
		defer srv.Close()

		check, err := artdirhttp.NewImageChecker().CheckImage(context.Background(), srv.URL+"/login")

		require.NoError(t, err)
		assert.False(t, check.Valid)
		assert.Equal(t, artdir.ReasonNotImage, check.Reason)
	})

	t.Run("malformed URL is invalid without error", func(t *testing.T) {
		t.Parallel()

		check, err := artdirhttp.NewImageChecker().CheckImage(context.Background(), "images/local.jpg")

		require.NoError(t, err)
		assert.False(t, check.Valid)
		assert.Equal(t, artdir.ReasonMalformedURL, check.Reason)
		assert.False(t, check.Retryable())
	})

	t.Run("timeout is invalid and retryable", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
		}))
		defer srv.Close()

		checker := artdirhttp.NewImageChecker(artdirhttp.WithTimeout(10 * time.Millisecond))
		check, err := checker.CheckImage(context.Background(), srv.URL+"/slow.jpg")

		require.NoError(t, err)
		assert.False(t, check.Valid)
		assert.Zero(t, check.Status)
		assert.True(t, check.Retryable())
	})

	t.Run("canceled context is an error", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := artdirhttp.NewImageChecker().CheckImage(ctx, "https://example.com/a.jpg")

		require.ErrorIs(t, err, context.Canceled)
	})
}
