package encode

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/matzehuels/chaosgame/pkg/errors"
)

// DefaultFFmpegBinary is the executable looked up on PATH.
const DefaultFFmpegBinary = "ffmpeg"

// stderrTail is how much of ffmpeg's stderr ends up in error messages.
const stderrTail = 2048

// gifFilter builds a per-run palette so the attractor colours survive
// quantisation.
const gifFilter = "split[s0][s1];[s0]palettegen=stats_mode=full[p];[s1][p]paletteuse=dither=sierra2_4a"

// FFmpeg encodes through an ffmpeg subprocess.
type FFmpeg struct {
	Binary string
}

// NewFFmpeg returns an encoder using the ffmpeg found on PATH.
func NewFFmpeg() *FFmpeg {
	return &FFmpeg{Binary: DefaultFFmpegBinary}
}

// Name implements Encoder.
func (f *FFmpeg) Name() string { return EncoderFFmpeg }

// Args returns the ffmpeg command line for req, without the binary.
func (f *FFmpeg) Args(req Request) []string {
	start := req.StartNumber
	if start < 1 {
		start = 1
	}
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-y",
		"-framerate", strconv.Itoa(req.FrameRate),
		"-start_number", strconv.Itoa(start),
		"-i", req.Pattern,
		"-frames:v", strconv.Itoa(len(req.Frames)),
	}
	switch req.Target {
	case TargetGIF:
		args = append(args, "-filter_complex", gifFilter, "-loop", "0")
	case TargetMP4:
		// libx264 with yuv420p needs even dimensions.
		args = append(args,
			"-vf", "pad=ceil(iw/2)*2:ceil(ih/2)*2",
			"-c:v", "libx264",
			"-pix_fmt", "yuv420p",
			"-movflags", "+faststart",
		)
	}
	return append(args, req.Output)
}

// Encode implements Encoder. A missing binary or a non-zero exit status is
// an ENCODING_FAILURE.
func (f *FFmpeg) Encode(ctx context.Context, req Request) error {
	if err := req.Validate(); err != nil {
		return err
	}
	bin := f.Binary
	if bin == "" {
		bin = DefaultFFmpegBinary
	}
	if _, err := exec.LookPath(bin); err != nil {
		return errors.Wrap(errors.ErrCodeEncodingFailure, err,
			"%s not found. Install with:\n  macOS:  brew install ffmpeg\n  Linux:  apt install ffmpeg", bin)
	}

	cmd := exec.CommandContext(ctx, bin, f.Args(req)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return errors.Wrap(errors.ErrCodeCanceled, ctx.Err(), "encoding canceled")
		}
		return errors.Wrap(errors.ErrCodeEncodingFailure, err, "%s: %s", bin, tail(stderr.String()))
	}
	return nil
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > stderrTail {
		s = "..." + s[len(s)-stderrTail:]
	}
	if s == "" {
		return "no output"
	}
	return s
}
