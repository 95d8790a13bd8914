package slog_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/fwojciec/artdir"
	"github.com/fwojciec/artdir/mock"
	artslog "github.com/fwojciec/artdir/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingImageChecker_CheckImage(t *testing.T) {
	t.Parallel()

	t.Run("logs status and reason", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.ImageChecker{
			CheckImageFn: func(ctx context.Context, url string) (*artdir.ImageCheck, error) {
				return &artdir.ImageCheck{URL: url, Status: 404, Reason: "HTTP 404"}, nil
			},
		}

		check, err := artslog.NewLoggingImageChecker(inner, logger).CheckImage(context.Background(), "https://img.example.com/a.jpg")

		require.NoError(t, err)
		assert.False(t, check.Valid)
		output := buf.String()
		assert.Contains(t, output, `msg="image check"`)
		assert.Contains(t, output, "url=https://img.example.com/a.jpg")
		assert.Contains(t, output, "valid=false")
		assert.Contains(t, output, "status=404")
		assert.Contains(t, output, `reason="HTTP 404"`)
	})

	t.Run("logs context error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.ImageChecker{
			CheckImageFn: func(ctx context.Context, url string) (*artdir.ImageCheck, error) {
				return nil, context.Canceled
			},
		}

		_, err := artslog.NewLoggingImageChecker(inner, logger).CheckImage(context.Background(), "https://img.example.com/a.jpg")

		require.ErrorIs(t, err, context.Canceled)
		assert.Contains(t, buf.String(), `err="context canceled"`)
		assert.NotContains(t, buf.String(), "status=")
	})
}
