package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/artdir"
	"github.com/fwojciec/artdir/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageStore_FindPages(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "index.html"), "<html>home</html>")
	writeFile(t, filepath.Join(root, "location", "boston", "index.html"), "<html>boston</html>")
	writeFile(t, filepath.Join(root, "location", "denver", "index.html"), "<html>denver</html>")
	writeFile(t, filepath.Join(root, "assets", "app.js"), "console.log(1)")

	store := fs.NewPageStore(root)
	ctx := context.Background()

	t.Run("lists all html pages in path order", func(t *testing.T) {
		t.Parallel()

		pages, err := store.FindPages(ctx, artdir.PageFilter{})
		require.NoError(t, err)
		require.Len(t, pages, 3)
		assert.Equal(t, "index.html", pages[0].Path)
		assert.Equal(t, "location/boston/index.html", pages[1].Path)
		assert.Equal(t, "<html>boston</html>", pages[1].HTML)
	})

	t.Run("filters by route prefix and slug", func(t *testing.T) {
		t.Parallel()

		pages, err := store.FindPages(ctx, artdir.PageFilter{RoutePrefix: "/location/", Slugs: []string{"denver"}})
		require.NoError(t, err)
		require.Len(t, pages, 1)
		assert.Equal(t, "/location/denver", pages[0].Route())
	})

	t.Run("skip content leaves html empty", func(t *testing.T) {
		t.Parallel()

		pages, err := store.FindPages(ctx, artdir.PageFilter{SkipContent: true})
		require.NoError(t, err)
		require.NotEmpty(t, pages)
		assert.Empty(t, pages[0].HTML)
		assert.False(t, pages[0].ModTime.IsZero())
	})
}

func TestPageStore_FindPages_MissingRoot(t *testing.T) {
	t.Parallel()

	store := fs.NewPageStore(filepath.Join(t.TempDir(), "dist"))
	_, err := store.FindPages(context.Background(), artdir.PageFilter{})

	assert.Equal(t, artdir.ENOTFOUND, artdir.ErrorCode(err))
}

func TestPageStore_WritePage(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "location", "boston", "index.html"), "<html>old</html>")
	store := fs.NewPageStore(root)
	ctx := context.Background()

	pages, err := store.FindPages(ctx, artdir.PageFilter{})
	require.NoError(t, err)
	require.Len(t, pages, 1)

	changed, err := store.WritePage(ctx, pages[0])
	require.NoError(t, err)
	assert.False(t, changed, "unchanged content is not rewritten")

	pages[0].HTML = "<html>new</html>"
	changed, err = store.WritePage(ctx, pages[0])
	require.NoError(t, err)
	assert.True(t, changed)

	data, err := os.ReadFile(filepath.Join(root, "location", "boston", "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html>new</html>", string(data))
}

func TestWriteFile_LeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.json")

	changed, err := fs.WriteFile(path, []byte(`{}`), "")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = fs.WriteFile(path, []byte(`{}`), "")
	require.NoError(t, err)
	assert.False(t, changed)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.json", entries[0].Name())
}

func TestPageStore_ReadPage(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "location", "boston", "index.html"), "<html>boston</html>")
	store := fs.NewPageStore(root)

	t.Run("reads page by relative path", func(t *testing.T) {
		t.Parallel()

		page, err := store.ReadPage(context.Background(), "location/boston/index.html")

		require.NoError(t, err)
		assert.Equal(t, "<html>boston</html>", page.HTML)
		assert.Equal(t, "/location/boston", page.Route())
		assert.Equal(t, fs.Checksum([]byte("<html>boston</html>")), page.Checksum)
	})

	t.Run("missing page is not found", func(t *testing.T) {
		t.Parallel()

		_, err := store.ReadPage(context.Background(), "location/nowhere/index.html")

		assert.Equal(t, artdir.ENOTFOUND, artdir.ErrorCode(err))
	})
}
