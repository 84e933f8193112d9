package encode

import (
	"context"
	"image"
	"image/color"
	"image/gif"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/matzehuels/chaosgame/pkg/errors"
	"github.com/matzehuels/chaosgame/pkg/render/sink"
)

func writeFrames(t *testing.T, n int) *sink.Dir {
	t.Helper()
	d := sink.NewDir(filepath.Join(t.TempDir(), "frames"), sink.FormatPNG, n)
	if err := d.Prepare(false); err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= n; i++ {
		img := image.NewRGBA(image.Rect(0, 0, 16, 16))
		img.Set(i, i, color.RGBA{R: 255, A: 255})
		data, err := sink.Bytes(img, sink.FormatPNG)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := d.Write(i, data); err != nil {
			t.Fatal(err)
		}
	}
	return d
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in      string
		want    Target
		wantErr bool
	}{
		{"", TargetNone, false},
		{"none", TargetNone, false},
		{"GIF", TargetGIF, false},
		{"mp4", TargetMP4, false},
		{"webm", "", true},
	}
	for _, tt := range tests {
		got, err := ParseTarget(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseTarget(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestNewRequest(t *testing.T) {
	d := writeFrames(t, 3)
	req, err := NewRequest(d, 10, TargetGIF)
	if err != nil {
		t.Fatal(err)
	}
	if len(req.Frames) != 3 || req.StartNumber != 1 || req.FrameRate != 10 {
		t.Errorf("NewRequest() = %+v", req)
	}
	if want := filepath.Join(filepath.Dir(d.Path()), "animation.gif"); req.Output != want {
		t.Errorf("Output = %s, want %s", req.Output, want)
	}
	if req.Pattern != d.Pattern() {
		t.Errorf("Pattern = %s, want %s", req.Pattern, d.Pattern())
	}
}

func TestNewRequestStopsAtTotal(t *testing.T) {
	d := writeFrames(t, 5)
	req, err := NewRequest(sink.NewDir(d.Path(), sink.FormatPNG, 3), 10, TargetGIF)
	if err != nil {
		t.Fatal(err)
	}
	if len(req.Frames) != 3 || filepath.Base(req.Frames[2]) != "frame_0003.png" {
		t.Errorf("Frames = %v, want frames 1..3", req.Frames)
	}

	if err := (&GIF{}).Encode(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(req.Output)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	anim, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(anim.Image) != 3 {
		t.Errorf("gif has %d frames, want 3", len(anim.Image))
	}
}

func TestRequestValidate(t *testing.T) {
	ok := Request{Frames: []string{"a"}, FrameRate: 10, Target: TargetGIF, Output: "out.gif"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{"no frames", func(r *Request) { r.Frames = nil }},
		{"zero fps", func(r *Request) { r.FrameRate = 0 }},
		{"no target", func(r *Request) { r.Target = TargetNone }},
		{"no output", func(r *Request) { r.Output = "" }},
	}
	for _, tt := range tests {
		r := ok
		tt.mutate(&r)
		if err := r.Validate(); !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
			t.Errorf("%s: Validate() = %v", tt.name, err)
		}
	}
}

func TestFFmpegArgs(t *testing.T) {
	f := NewFFmpeg()
	req := Request{
		Pattern:     "run/frames/frame_%04d.png",
		Frames:      []string{"a", "b", "c"},
		StartNumber: 1,
		FrameRate:   30,
		Target:      TargetGIF,
		Output:      "run/animation.gif",
	}

	args := f.Args(req)
	idx := slices.Index(args, "-framerate")
	if idx < 0 || args[idx+1] != "30" {
		t.Errorf("args %v missing -framerate 30", args)
	}
	idx = slices.Index(args, "-i")
	if idx < 0 || args[idx+1] != req.Pattern {
		t.Errorf("args %v missing input pattern", args)
	}
	idx = slices.Index(args, "-start_number")
	if idx < 0 || args[idx+1] != "1" {
		t.Errorf("args %v missing -start_number 1", args)
	}
	idx = slices.Index(args, "-frames:v")
	if idx < 0 || args[idx+1] != "3" || idx > slices.Index(args, req.Output) {
		t.Errorf("args %v should stop the output after 3 frames", args)
	}
	if !slices.Contains(args, "-y") {
		t.Errorf("args %v missing -y", args)
	}
	if args[len(args)-1] != req.Output {
		t.Errorf("last arg = %s, want output path", args[len(args)-1])
	}
	if !slices.Contains(args, "-filter_complex") {
		t.Errorf("gif args %v missing palette filter", args)
	}

	req.Target = TargetMP4
	req.Output = "run/animation.mp4"
	args = f.Args(req)
	if idx := slices.Index(args, "-c:v"); idx < 0 || args[idx+1] != "libx264" {
		t.Errorf("mp4 args %v missing libx264", args)
	}
	if idx := slices.Index(args, "-pix_fmt"); idx < 0 || args[idx+1] != "yuv420p" {
		t.Errorf("mp4 args %v missing yuv420p", args)
	}
}

func TestFFmpegMissingBinary(t *testing.T) {
	d := writeFrames(t, 2)
	req, _ := NewRequest(d, 10, TargetGIF)
	f := &FFmpeg{Binary: "chaosgame-no-such-encoder"}
	err := f.Encode(context.Background(), req)
	if !errors.Is(err, errors.ErrCodeEncodingFailure) {
		t.Fatalf("Encode error = %v, want ENCODING_FAILURE", err)
	}
	if !errors.IsRetryable(err) {
		t.Error("missing encoder should be retryable")
	}
}

func TestFFmpegNonZeroExit(t *testing.T) {
	if !Available("false") {
		t.Skip("false(1) not available")
	}
	d := writeFrames(t, 2)
	req, _ := NewRequest(d, 10, TargetGIF)
	err := (&FFmpeg{Binary: "false"}).Encode(context.Background(), req)
	if !errors.Is(err, errors.ErrCodeEncodingFailure) {
		t.Fatalf("Encode error = %v, want ENCODING_FAILURE", err)
	}
}

func TestGIFEncode(t *testing.T) {
	d := writeFrames(t, 4)
	req, err := NewRequest(d, 20, TargetGIF)
	if err != nil {
		t.Fatal(err)
	}
	if err := (&GIF{}).Encode(context.Background(), req); err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	f, err := os.Open(req.Output)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	anim, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatalf("DecodeAll error: %v", err)
	}
	if len(anim.Image) != 4 {
		t.Errorf("gif has %d frames, want 4", len(anim.Image))
	}
	for i, delay := range anim.Delay {
		if delay != 5 {
			t.Errorf("frame %d delay = %d, want 5", i, delay)
		}
	}
}

func TestGIFRejectsMP4(t *testing.T) {
	d := writeFrames(t, 1)
	req, _ := NewRequest(d, 10, TargetMP4)
	if err := (&GIF{}).Encode(context.Background(), req); !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
		t.Errorf("Encode(mp4) error = %v", err)
	}
}

func TestGIFCanceled(t *testing.T) {
	d := writeFrames(t, 2)
	req, _ := NewRequest(d, 10, TargetGIF)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := (&GIF{}).Encode(ctx, req); !errors.Is(err, errors.ErrCodeCanceled) {
		t.Errorf("Encode on canceled context = %v", err)
	}
}

func TestDelay(t *testing.T) {
	tests := []struct{ fps, want int }{
		{10, 10},
		{30, 3},
		{25, 4},
		{200, 1},
		{0, 0},
	}
	for _, tt := range tests {
		if got := Delay(tt.fps); got != tt.want {
			t.Errorf("Delay(%d) = %d, want %d", tt.fps, got, tt.want)
		}
	}
}

func TestSelect(t *testing.T) {
	e, err := Select(EncoderBuiltin, TargetGIF)
	if err != nil || e.Name() != EncoderBuiltin {
		t.Errorf("Select(builtin, gif) = %v, %v", e, err)
	}
	if _, err := Select(EncoderBuiltin, TargetMP4); err == nil {
		t.Error("Select(builtin, mp4) should fail")
	}
	e, err = Select(EncoderFFmpeg, TargetMP4)
	if err != nil || e.Name() != EncoderFFmpeg {
		t.Errorf("Select(ffmpeg, mp4) = %v, %v", e, err)
	}
	if _, err := Select("handbrake", TargetGIF); !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
		t.Errorf("Select(unknown) error = %v", err)
	}
	if e, err := Select(EncoderAuto, TargetGIF); err != nil || e == nil {
		t.Errorf("Select(auto, gif) = %v, %v", e, err)
	}
}
