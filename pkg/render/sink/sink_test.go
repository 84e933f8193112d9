package sink

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/chaosgame/pkg/errors"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 40), B: 200, A: 255})
		}
	}
	return img
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatPNG, false},
		{"png", FormatPNG, false},
		{"PNG", FormatPNG, false},
		{".bmp", FormatBMP, false},
		{"tif", FormatTIFF, false},
		{"tiff", FormatTIFF, false},
		{"jpeg", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEncodeDecode(t *testing.T) {
	src := testImage()
	for _, f := range Formats {
		t.Run(string(f), func(t *testing.T) {
			data, err := Bytes(src, f)
			if err != nil {
				t.Fatalf("Bytes error: %v", err)
			}
			got, err := Decode(bytes.NewReader(data), f)
			if err != nil {
				t.Fatalf("Decode error: %v", err)
			}
			if got.Bounds().Dx() != 8 || got.Bounds().Dy() != 6 {
				t.Fatalf("decoded size = %v", got.Bounds())
			}
			r1, g1, b1, _ := src.At(3, 2).RGBA()
			r2, g2, b2, _ := got.At(3, 2).RGBA()
			if r1>>8 != r2>>8 || g1>>8 != g2>>8 || b1>>8 != b2>>8 {
				t.Errorf("pixel (3, 2) = %v, want %v", got.At(3, 2), src.At(3, 2))
			}
		})
	}

	if err := Encode(&bytes.Buffer{}, src, Format("gif")); !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
		t.Errorf("Encode with unknown format error = %v", err)
	}
}

func TestDirNaming(t *testing.T) {
	tests := []struct {
		total   int
		index   int
		format  Format
		want    string
		pattern string
	}{
		{20, 1, FormatPNG, "frame_0001.png", "frame_%04d.png"},
		{20, 20, FormatBMP, "frame_0020.bmp", "frame_%04d.bmp"},
		{9999, 9999, FormatPNG, "frame_9999.png", "frame_%04d.png"},
		{12000, 7, FormatTIFF, "frame_00007.tiff", "frame_%05d.tiff"},
	}

	for _, tt := range tests {
		d := NewDir("frames", tt.format, tt.total)
		if got := d.Name(tt.index); got != tt.want {
			t.Errorf("Name(%d) with %d frames = %q, want %q", tt.index, tt.total, got, tt.want)
		}
		if got := d.Pattern(); got != filepath.Join("frames", tt.pattern) {
			t.Errorf("Pattern() = %q, want %q", got, filepath.Join("frames", tt.pattern))
		}
	}
}

func TestDirWriteAndList(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run", "frames")
	d := NewDir(dir, FormatPNG, 12)
	if err := d.Prepare(false); err != nil {
		t.Fatal(err)
	}

	img := testImage()
	// Out of order on purpose; List sorts numerically.
	for _, i := range []int{3, 1, 12, 2} {
		data, err := Bytes(img, FormatPNG)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := d.Write(i, data); err != nil {
			t.Fatalf("Write(%d) error: %v", i, err)
		}
	}
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(dir, "frame_0004.bmp"), []byte("x"), 0o644)

	got, err := d.List()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"frame_0001.png", "frame_0002.png", "frame_0003.png", "frame_0012.png"}
	if len(got) != len(want) {
		t.Fatalf("List() = %v, want %v", got, want)
	}
	for i := range want {
		if filepath.Base(got[i]) != want[i] {
			t.Errorf("List()[%d] = %s, want %s", i, filepath.Base(got[i]), want[i])
		}
	}

	if _, err := os.Stat(d.FramePath(1) + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}
}

func TestDirPrepareClean(t *testing.T) {
	dir := t.TempDir()
	d := NewDir(dir, FormatPNG, 3)
	for i := 1; i <= 3; i++ {
		if _, err := d.Write(i, []byte("stale")); err != nil {
			t.Fatal(err)
		}
	}
	keep := filepath.Join(dir, "keep.txt")
	os.WriteFile(keep, []byte("x"), 0o644)

	if err := d.Prepare(true); err != nil {
		t.Fatal(err)
	}
	frames, _ := d.List()
	if len(frames) != 0 {
		t.Errorf("Prepare(true) left %d frames", len(frames))
	}
	if _, err := os.Stat(keep); err != nil {
		t.Errorf("Prepare(true) removed unrelated file: %v", err)
	}
}

func TestDirPrepareDropsFramesBeyondTotal(t *testing.T) {
	dir := t.TempDir()
	previous := NewDir(dir, FormatPNG, 30)
	for i := 1; i <= 30; i++ {
		if _, err := previous.Write(i, []byte("old")); err != nil {
			t.Fatal(err)
		}
	}
	os.WriteFile(filepath.Join(dir, "frame_00005.png"), []byte("wide"), 0o644)

	d := NewDir(dir, FormatPNG, 20)
	if err := d.Prepare(false); err != nil {
		t.Fatal(err)
	}
	left, err := d.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 20 {
		t.Fatalf("Prepare(false) left %d frames, want 20", len(left))
	}
	if filepath.Base(left[19]) != "frame_0020.png" {
		t.Errorf("last frame = %s, want frame_0020.png", filepath.Base(left[19]))
	}
}

func TestDirFrames(t *testing.T) {
	dir := t.TempDir()
	for i := 1; i <= 5; i++ {
		NewDir(dir, FormatPNG, 5).Write(i, []byte("x"))
	}

	got, err := NewDir(dir, FormatPNG, 3).Frames()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || filepath.Base(got[2]) != "frame_0003.png" {
		t.Errorf("Frames() = %v, want frames 1..3", got)
	}

	os.Remove(filepath.Join(dir, "frame_0002.png"))
	if _, err := NewDir(dir, FormatPNG, 3).Frames(); !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
		t.Errorf("Frames() with a gap: err = %v, want INVALID_CONFIGURATION", err)
	}
	if _, err := NewDir(dir, FormatPNG, 0).Frames(); !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
		t.Errorf("Frames() with no total: err = %v", err)
	}
}

func TestDirWriteRejectsZeroIndex(t *testing.T) {
	d := NewDir(t.TempDir(), FormatPNG, 1)
	if _, err := d.Write(0, []byte("x")); err == nil {
		t.Error("Write(0) should fail")
	}
}

func TestListMissingDir(t *testing.T) {
	d := NewDir(filepath.Join(t.TempDir(), "missing"), FormatPNG, 1)
	got, err := d.List()
	if err != nil || len(got) != 0 {
		t.Errorf("List() on missing dir = %v, %v", got, err)
	}
}

func TestDetect(t *testing.T) {
	dir := t.TempDir()
	d := NewDir(dir, FormatBMP, 5)
	for i := 1; i <= 5; i++ {
		d.Write(i, []byte("x"))
	}
	NewDir(dir, FormatPNG, 1).Write(1, []byte("x"))

	f, n, err := Detect(dir)
	if err != nil {
		t.Fatal(err)
	}
	if f != FormatBMP || n != 5 {
		t.Errorf("Detect() = %s, %d, want bmp, 5", f, n)
	}

	if _, _, err := Detect(t.TempDir()); !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
		t.Errorf("Detect on empty dir error = %v", err)
	}
}
