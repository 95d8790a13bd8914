package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fwojciec/artdir"
)

// Ensure LocationService implements artdir.LocationService at compile time.
var _ artdir.LocationService = (*LocationService)(nil)

// LocationService stores each location as <dir>/<slug>.json.
type LocationService struct {
	dir string
}

// NewLocationService creates a LocationService rooted at dir.
func NewLocationService(dir string) *LocationService {
	return &LocationService{dir: dir}
}

// Dir returns the directory holding the location files.
func (s *LocationService) Dir() string {
	return s.dir
}

// FindLocations loads every location file matching the filter.
// Files that cannot be parsed are reported in Skipped instead of failing the call.
func (s *LocationService) FindLocations(ctx context.Context, filter artdir.LocationFilter) (*artdir.LocationSet, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, artdir.Errorf(artdir.ENOTFOUND, "locations directory %q not found", s.dir)
		}
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	set := &artdir.LocationSet{}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		slug := strings.TrimSuffix(name, ".json")
		if !filter.Match(slug) {
			continue
		}

		loc, err := s.load(slug)
		if err != nil {
			set.Skipped = append(set.Skipped, artdir.SkippedFile{Path: filepath.Join(s.dir, name), Err: err})
			continue
		}
		set.Locations = append(set.Locations, loc)
	}
	return set, nil
}

// FindLocationBySlug loads one location file.
func (s *LocationService) FindLocationBySlug(ctx context.Context, slug string) (*artdir.Location, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.load(slug)
}

// SaveLocation writes the location as indented JSON when its content changed.
func (s *LocationService) SaveLocation(ctx context.Context, loc *artdir.Location) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := loc.Validate(); err != nil {
		return false, err
	}

	data, err := artdir.MarshalIndent(loc)
	if err != nil {
		return false, fmt.Errorf("encoding location %q: %w", loc.Slug, err)
	}

	changed, err := WriteFile(s.path(loc.Slug), data, loc.Checksum)
	if err != nil {
		return false, err
	}
	loc.Checksum = Checksum(data)
	return changed, nil
}

func (s *LocationService) path(slug string) string {
	return filepath.Join(s.dir, slug+".json")
}

func (s *LocationService) load(slug string) (*artdir.Location, error) {
	path := s.path(slug)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, artdir.Errorf(artdir.ENOTFOUND, "location %q not found", slug)
	} else if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	loc := &artdir.Location{Slug: slug}
	if err := json.Unmarshal(data, loc); err != nil {
		return nil, artdir.Errorf(artdir.EINVALID, "parsing %s: %v", path, err)
	}
	loc.ModTime = info.ModTime()
	loc.Checksum = Checksum(data)
	return loc, nil
}
