// Package encode assembles a directory of frames into an animation.
//
// Two encoders are provided. [FFmpeg] shells out to the ffmpeg binary and
// can produce GIF and MP4. [GIF] assembles a GIF in-process and is used when
// ffmpeg is not installed.
//
// Encoding is the only step of a run that can be retried on its own: the
// frames are already on disk, so every failure is reported as an
// ENCODING_FAILURE (see [errors.IsRetryable]).
//
// [errors.IsRetryable]: github.com/matzehuels/chaosgame/pkg/errors.IsRetryable
package encode

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/matzehuels/chaosgame/pkg/errors"
	"github.com/matzehuels/chaosgame/pkg/render/sink"
)

// Target is an animation container.
type Target string

// Supported targets. TargetNone disables encoding.
const (
	TargetNone Target = "none"
	TargetGIF  Target = "gif"
	TargetMP4  Target = "mp4"
)

// Encoder names accepted by Select.
const (
	EncoderAuto    = "auto"
	EncoderFFmpeg  = "ffmpeg"
	EncoderBuiltin = "builtin"
)

// ParseTarget parses a target name. The empty string means TargetNone.
func ParseTarget(s string) (Target, error) {
	switch Target(strings.ToLower(s)) {
	case "", TargetNone:
		return TargetNone, nil
	case TargetGIF:
		return TargetGIF, nil
	case TargetMP4:
		return TargetMP4, nil
	}
	return "", errors.Invalid("unsupported animation target %q (supported: none, gif, mp4)", s)
}

// Request describes one encoding job.
type Request struct {
	Pattern     string      // printf-style input pattern, e.g. frames/frame_%04d.png
	Frames      []string    // frame paths in order
	Format      sink.Format // frame image format
	StartNumber int         // number of the first frame
	FrameRate   int         // frames per second
	Target      Target
	Output      string // animation path
}

// Validate checks that the request can be encoded.
func (r Request) Validate() error {
	if len(r.Frames) == 0 {
		return errors.Invalid("no frames to encode")
	}
	if r.FrameRate <= 0 {
		return errors.Invalid("frame rate must be positive, got %d", r.FrameRate)
	}
	if r.Target != TargetGIF && r.Target != TargetMP4 {
		return errors.Invalid("unsupported animation target %q", r.Target)
	}
	if r.Output == "" {
		return errors.Invalid("output path is required")
	}
	return nil
}

// NewRequest builds a request for frames 1..dir.Total() of a frames
// directory. Other frame files in the directory are not encoded. The output
// is written next to the directory as animation.<target>.
func NewRequest(dir *sink.Dir, frameRate int, target Target) (Request, error) {
	frames, err := dir.Frames()
	if err != nil {
		return Request{}, err
	}
	return Request{
		Pattern:     dir.Pattern(),
		Frames:      frames,
		Format:      dir.Format(),
		StartNumber: 1,
		FrameRate:   frameRate,
		Target:      target,
		Output:      OutputPath(filepath.Dir(dir.Path()), target),
	}, nil
}

// OutputPath returns the animation path for a run directory.
func OutputPath(runDir string, target Target) string {
	return filepath.Join(runDir, "animation."+string(target))
}

// Encoder turns an ordered frame sequence into an animation.
type Encoder interface {
	Name() string
	Encode(ctx context.Context, req Request) error
}

// Available reports whether an executable is on PATH.
func Available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// Select returns the encoder for name and target. "auto" prefers ffmpeg and
// falls back to the builtin GIF encoder when ffmpeg is missing.
func Select(name string, target Target) (Encoder, error) {
	switch strings.ToLower(name) {
	case "", EncoderAuto:
		if Available(DefaultFFmpegBinary) {
			return NewFFmpeg(), nil
		}
		if target == TargetGIF {
			return &GIF{}, nil
		}
		return nil, errors.New(errors.ErrCodeEncodingFailure, "%s output requires ffmpeg, which is not installed", target)
	case EncoderFFmpeg:
		return NewFFmpeg(), nil
	case EncoderBuiltin:
		if target != TargetGIF {
			return nil, errors.Invalid("the builtin encoder only produces gif, not %s", target)
		}
		return &GIF{}, nil
	}
	return nil, errors.Invalid("unknown encoder %q (supported: auto, ffmpeg, builtin)", name)
}
