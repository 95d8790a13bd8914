package mock

import (
	"context"

	"github.com/fwojciec/artdir"
)

var _ artdir.PageStore = (*PageStore)(nil)

// PageStore is a mock implementation of artdir.PageStore.
type PageStore struct {
	FindPagesFn func(ctx context.Context, filter artdir.PageFilter) ([]*artdir.Page, error)
	ReadPageFn  func(ctx context.Context, path string) (*artdir.Page, error)
	WritePageFn func(ctx context.Context, page *artdir.Page) (bool, error)
}

func (s *PageStore) FindPages(ctx context.Context, filter artdir.PageFilter) ([]*artdir.Page, error) {
	return s.FindPagesFn(ctx, filter)
}

func (s *PageStore) ReadPage(ctx context.Context, path string) (*artdir.Page, error) {
	return s.ReadPageFn(ctx, path)
}

func (s *PageStore) WritePage(ctx context.Context, page *artdir.Page) (bool, error) {
	return s.WritePageFn(ctx, page)
}
