package memory

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/jnesss/hunt-recorder/types"
)

// MapsOptions controls which mappings become regions
type MapsOptions struct {
	// IncludeAnonymous keeps mappings with inode 0 (heap, stack, anonymous)
	IncludeAnonymous bool
}

// Mapping is one parsed line of /proc/<pid>/maps
type Mapping struct {
	Begin  uint64
	End    uint64
	Perms  string
	Offset uint64
	Device string
	Inode  uint64
	Path   string
}

// Readable reports whether the mapping has the read permission bit
func (m Mapping) Readable() bool {
	return strings.HasPrefix(m.Perms, "r")
}

// ParseMapping parses a single maps line.
// address           perms offset  dev   inode   pathname
// 08048000-08056000 r-xp 00000000 03:0c 64593   /usr/sbin/gpm
func ParseMapping(line string) (Mapping, error) {
	var m Mapping

	fields := strings.Fields(line)
	if len(fields) < 5 {
		return m, errors.Errorf("malformed maps line: %q", line)
	}

	begin, end, ok := strings.Cut(fields[0], "-")
	if !ok {
		return m, errors.Errorf("malformed address range: %q", fields[0])
	}

	var err error
	if m.Begin, err = strconv.ParseUint(begin, 16, 64); err != nil {
		return m, errors.Wrapf(err, "invalid begin address %q", begin)
	}
	if m.End, err = strconv.ParseUint(end, 16, 64); err != nil {
		return m, errors.Wrapf(err, "invalid end address %q", end)
	}
	if m.Offset, err = strconv.ParseUint(fields[2], 16, 64); err != nil {
		return m, errors.Wrapf(err, "invalid offset %q", fields[2])
	}
	if m.Inode, err = strconv.ParseUint(fields[4], 10, 64); err != nil {
		return m, errors.Wrapf(err, "invalid inode %q", fields[4])
	}

	m.Perms = fields[1]
	m.Device = fields[3]
	if len(fields) > 5 {
		m.Path = strings.Join(fields[5:], " ")
	}
	return m, nil
}

// ParseMaps turns a maps table into the candidate regions, in the order they are listed.
// Unparseable lines are skipped.
func ParseMaps(r io.Reader, opts MapsOptions) ([]*Region, error) {
	var regions []*Region

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		m, err := ParseMapping(line)
		if err != nil {
			continue
		}
		if !m.Readable() {
			continue
		}
		if m.Inode == 0 && !opts.IncludeAnonymous {
			continue
		}
		if m.End <= m.Begin {
			continue
		}
		regions = append(regions, &Region{
			Begin: m.Begin,
			End:   m.End,
			Info:  line,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to scan maps")
	}
	return regions, nil
}

// ReadMaps enumerates the readable regions of a live process
func ReadMaps(pid int, opts MapsOptions) ([]*Region, error) {
	path := fmt.Sprintf("/proc/%d/maps", pid)
	f, err := os.Open(path)
	if err != nil {
		return nil, types.NewError(types.KindMapReadFailure, path, err)
	}
	defer f.Close()

	regions, err := ParseMaps(f, opts)
	if err != nil {
		return nil, types.NewError(types.KindMapReadFailure, path, err)
	}
	return regions, nil
}
