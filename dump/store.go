// Package dump persists region bytes to disk and loads them back for offline runs.
package dump

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/jnesss/hunt-recorder/memory"
	"github.com/jnesss/hunt-recorder/types"
)

const fileSuffix = ".bin"

// Store writes one "<BEGIN_HEX>.bin" file per region under a directory
type Store struct {
	dir string
}

// NewStore wipes dir and recreates it empty
func NewStore(dir string) (*Store, error) {
	s := &Store{dir: dir}
	if err := s.Reset(); err != nil {
		return nil, err
	}
	return s, nil
}

// Dir returns the store directory
func (s *Store) Dir() string {
	return s.dir
}

// Reset removes everything under the store directory
func (s *Store) Reset() error {
	if err := os.RemoveAll(s.dir); err != nil {
		return types.NewError(types.KindDumpIoFailure, s.dir, errors.Wrap(err, "failed to wipe dump directory"))
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return types.NewError(types.KindDumpIoFailure, s.dir, errors.Wrap(err, "failed to create dump directory"))
	}
	return nil
}

// FileName returns the dump file name for a region start address
func FileName(begin uint64) string {
	return fmt.Sprintf("%x%s", begin, fileSuffix)
}

// Path returns where a region's bytes are stored
func (s *Store) Path(r *memory.Region) string {
	return filepath.Join(s.dir, FileName(r.Base()))
}

// Write stores a filled region's bytes
func (s *Store) Write(r *memory.Region) error {
	if !r.Filled() {
		return types.NewError(types.KindDumpIoFailure, r.Info, errors.New("region has no data"))
	}

	path := s.Path(r)
	if err := os.WriteFile(path, r.Data, 0644); err != nil {
		return types.NewError(types.KindDumpIoFailure, path, err)
	}
	return nil
}

// Load rebuilds a region set from a dump directory.
// Each file becomes a region [0, size) whose Origin is the address in its name.
func Load(dir string) ([]*memory.Region, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, types.NewError(types.KindDumpIoFailure, dir, errors.Wrap(err, "failed to read dump directory"))
	}

	var regions []*memory.Region
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, fileSuffix) {
			continue
		}

		origin, err := strconv.ParseUint(strings.TrimSuffix(name, fileSuffix), 16, 64)
		if err != nil {
			return nil, types.NewError(types.KindDumpIoFailure, name, errors.Wrap(err, "dump file name is not a hex address"))
		}

		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, types.NewError(types.KindDumpIoFailure, path, err)
		}
		if len(data) == 0 {
			continue
		}

		regions = append(regions, &memory.Region{
			Begin:    0,
			End:      uint64(len(data)),
			Origin:   origin,
			Info:     path,
			Data:     data,
			FromDump: true,
		})
	}

	sort.Slice(regions, func(i, j int) bool { return regions[i].Origin < regions[j].Origin })
	return regions, nil
}
