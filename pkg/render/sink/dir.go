package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/matzehuels/chaosgame/pkg/errors"
)

// FramePrefix is the file name prefix of every frame.
const FramePrefix = "frame_"

// minDigits is the zero-padding of frame numbers. Runs with more frames
// widen the padding so lexical and numeric order still agree.
const minDigits = 4

// Dir is a frames directory for one run.
type Dir struct {
	path   string
	format Format
	total  int
	digits int
}

// NewDir returns a Dir for total frames of the given format. It does not touch
// the filesystem; call Prepare before writing.
func NewDir(path string, format Format, total int) *Dir {
	digits := len(strconv.Itoa(total))
	if digits < minDigits {
		digits = minDigits
	}
	return &Dir{path: path, format: format, total: total, digits: digits}
}

// Path returns the directory path.
func (d *Dir) Path() string { return d.path }

// Format returns the frame format.
func (d *Dir) Format() Format { return d.format }

// Total returns the number of frames the run writes.
func (d *Dir) Total() int { return d.total }

// Prepare creates the directory and removes frame files a run of Total
// frames would not overwrite: frames numbered above Total and frames padded
// for a different total. With clean set, every existing frame file is
// removed. Other files are left alone.
func (d *Dir) Prepare(clean bool) error {
	if err := os.MkdirAll(d.path, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailure, err, "create frames directory")
	}
	existing, err := d.scan()
	if err != nil {
		return err
	}
	for _, f := range existing {
		if !clean && f.n <= d.total && filepath.Base(f.path) == d.Name(f.n) {
			continue
		}
		if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeRenderFailure, err, "remove stale frame %s", filepath.Base(f.path))
		}
	}
	return nil
}

// Name returns the file name of frame index (1-based).
func (d *Dir) Name(index int) string {
	return fmt.Sprintf("%s%0*d.%s", FramePrefix, d.digits, index, d.format.Ext())
}

// FramePath returns the full path of frame index.
func (d *Dir) FramePath(index int) string {
	return filepath.Join(d.path, d.Name(index))
}

// Pattern returns the printf-style input pattern understood by ffmpeg,
// e.g. "frames/frame_%04d.png".
func (d *Dir) Pattern() string {
	return filepath.Join(d.path, fmt.Sprintf("%s%%0%dd.%s", FramePrefix, d.digits, d.format.Ext()))
}

// Write stores already-encoded frame data as frame index. The file is
// written to a temporary name and renamed so readers never see a partial
// frame.
func (d *Dir) Write(index int, data []byte) (string, error) {
	if index < 1 {
		return "", errors.New(errors.ErrCodeInternal, "frame index must be >= 1, got %d", index)
	}
	path := d.FramePath(index)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", errors.Wrap(errors.ErrCodeRenderFailure, err, "write frame %d", index)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", errors.Wrap(errors.ErrCodeRenderFailure, err, "write frame %d", index)
	}
	return path, nil
}

// Frames returns the paths of frames 1..Total in order. Every one of them
// must exist; frames numbered above Total are not part of the run.
func (d *Dir) Frames() ([]string, error) {
	if d.total < 1 {
		return nil, errors.Invalid("no frames to encode")
	}
	out := make([]string, d.total)
	for i := range out {
		path := d.FramePath(i + 1)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return nil, errors.Invalid("frame %d of %d is missing from %s", i+1, d.total, d.path)
			}
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "stat frame %d", i+1)
		}
		out[i] = path
	}
	return out, nil
}

// List returns the paths of the frame files in the directory, ordered by
// frame number. Files of other formats are ignored.
func (d *Dir) List() ([]string, error) {
	frames, err := d.scan()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(frames))
	for i, f := range frames {
		out[i] = f.path
	}
	return out, nil
}

type numbered struct {
	n    int
	path string
}

// scan returns the frame files of the directory's format by frame number.
func (d *Dir) scan() ([]numbered, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read frames directory")
	}

	var frames []numbered
	suffix := "." + d.format.Ext()
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, FramePrefix) || !strings.HasSuffix(name, suffix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, FramePrefix), suffix))
		if err != nil || n < 1 {
			continue
		}
		frames = append(frames, numbered{n: n, path: filepath.Join(d.path, name)})
	}

	sort.Slice(frames, func(i, j int) bool { return frames[i].n < frames[j].n })
	return frames, nil
}

// Detect inspects a frames directory and returns its format and frame count.
// The format with the most frames wins.
func Detect(path string) (Format, int, error) {
	var (
		best  Format
		count int
	)
	for _, f := range Formats {
		frames, err := NewDir(path, f, 0).List()
		if err != nil {
			return "", 0, err
		}
		if len(frames) > count {
			best, count = f, len(frames)
		}
	}
	if count == 0 {
		return "", 0, errors.Invalid("no frames found in %s", path)
	}
	return best, count, nil
}
