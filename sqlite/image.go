package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/artdir"
)

// Compile-time interface verification.
var _ artdir.ImageInventory = (*ImageInventory)(nil)

// ImageInventory implements artdir.ImageInventory using SQLite.
type ImageInventory struct {
	db *DB
}

// NewImageInventory creates a new ImageInventory.
func NewImageInventory(db *DB) *ImageInventory {
	return &ImageInventory{db: db}
}

// FindImageByURL retrieves the record for a URL.
func (s *ImageInventory) FindImageByURL(ctx context.Context, url string) (*artdir.ImageRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT url, image_id, valid, status, source, checked_at
		FROM images
		WHERE url = ?
	`, url)

	rec, err := scanImage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, artdir.Errorf(artdir.ENOTFOUND, "image %q not in inventory", url)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// FindImages retrieves records matching the filter, most recently checked first.
func (s *ImageInventory) FindImages(ctx context.Context, filter artdir.ImageFilter) ([]*artdir.ImageRecord, error) {
	var query strings.Builder
	query.WriteString("SELECT url, image_id, valid, status, source, checked_at FROM images")
	args := appendWhere(&query, filter)
	query.WriteString(" ORDER BY checked_at DESC, url")
	appendPage(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*artdir.ImageRecord
	for rows.Next() {
		rec, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// UpsertImage inserts or replaces the record for rec.URL.
func (s *ImageInventory) UpsertImage(ctx context.Context, rec *artdir.ImageRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	if rec.CheckedAt.IsZero() {
		rec.CheckedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO images (url, image_id, valid, status, source, checked_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			image_id = excluded.image_id,
			valid = excluded.valid,
			status = excluded.status,
			source = excluded.source,
			checked_at = excluded.checked_at
	`, rec.URL, rec.ID, rec.Valid, rec.Status, string(rec.Source), rec.CheckedAt.UTC().Format(time.RFC3339))
	return err
}

// DeleteImages removes records matching the filter.
func (s *ImageInventory) DeleteImages(ctx context.Context, filter artdir.ImageFilter) (int, error) {
	var query strings.Builder
	query.WriteString("DELETE FROM images")
	args := appendWhere(&query, filter)

	res, err := s.db.ExecContext(ctx, query.String(), args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanImage(row scanner) (*artdir.ImageRecord, error) {
	var rec artdir.ImageRecord
	var source, checkedAt string
	if err := row.Scan(&rec.URL, &rec.ID, &rec.Valid, &rec.Status, &source, &checkedAt); err != nil {
		return nil, err
	}
	rec.Source = artdir.ImageSource(source)

	var err error
	rec.CheckedAt, err = parseTime(checkedAt, "checked_at")
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
