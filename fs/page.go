package fs

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/artdir"
)

// Ensure PageStore implements artdir.PageStore at compile time.
var _ artdir.PageStore = (*PageStore)(nil)

// PageStore reads and writes HTML files under a public directory.
type PageStore struct {
	root string
}

// NewPageStore creates a PageStore rooted at the public directory.
func NewPageStore(root string) *PageStore {
	return &PageStore{root: root}
}

// Root returns the public directory.
func (s *PageStore) Root() string {
	return s.root
}

// FindPages walks the public directory for .html files.
func (s *PageStore) FindPages(ctx context.Context, filter artdir.PageFilter) ([]*artdir.Page, error) {
	if _, err := os.Stat(s.root); errors.Is(err, os.ErrNotExist) {
		return nil, artdir.Errorf(artdir.ENOTFOUND, "public directory %q not found", s.root)
	}

	var pages []*artdir.Page
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".html") {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		page := &artdir.Page{Path: filepath.ToSlash(rel)}
		if !filter.Match(page) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		page.ModTime = info.ModTime()

		if !filter.SkipContent {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			page.HTML = string(data)
			page.Checksum = Checksum(data)
		}

		pages = append(pages, page)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pages, nil
}

// ReadPage reads a single page by its relative path.
func (s *PageStore) ReadPage(ctx context.Context, rel string) (*artdir.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(s.root, filepath.FromSlash(rel))
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, artdir.Errorf(artdir.ENOTFOUND, "page %q not found", rel)
	} else if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &artdir.Page{
		Path:     filepath.ToSlash(rel),
		HTML:     string(data),
		ModTime:  info.ModTime(),
		Checksum: Checksum(data),
	}, nil
}

// WritePage writes the page when its content differs from what was read.
func (s *PageStore) WritePage(ctx context.Context, page *artdir.Page) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if page.Path == "" {
		return false, artdir.Errorf(artdir.EINVALID, "page path required")
	}

	data := []byte(page.HTML)
	changed, err := WriteFile(filepath.Join(s.root, filepath.FromSlash(page.Path)), data, page.Checksum)
	if err != nil {
		return false, err
	}
	page.Checksum = Checksum(data)
	return changed, nil
}
