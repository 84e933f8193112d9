package encode

import (
	"context"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"math"
	"os"
	"path/filepath"

	"github.com/matzehuels/chaosgame/pkg/errors"
	"github.com/matzehuels/chaosgame/pkg/render/sink"
)

// GIF assembles an animated GIF in-process from the frame files.
// Frames are quantised to the Plan 9 palette with Floyd-Steinberg dithering.
type GIF struct{}

// Name implements Encoder.
func (g *GIF) Name() string { return EncoderBuiltin }

// Delay returns the per-frame delay in hundredths of a second.
func Delay(frameRate int) int {
	if frameRate <= 0 {
		return 0
	}
	return max(1, int(math.Round(100/float64(frameRate))))
}

// Encode implements Encoder.
func (g *GIF) Encode(ctx context.Context, req Request) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if req.Target != TargetGIF {
		return errors.Invalid("the builtin encoder only produces gif, not %s", req.Target)
	}

	anim := &gif.GIF{LoopCount: 0}
	delay := Delay(req.FrameRate)
	for _, path := range req.Frames {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(errors.ErrCodeCanceled, err, "encoding canceled")
		}
		img, err := readFrame(path, req.Format)
		if err != nil {
			return errors.Wrap(errors.ErrCodeEncodingFailure, err, "read %s", filepath.Base(path))
		}
		anim.Image = append(anim.Image, paletted(img))
		anim.Delay = append(anim.Delay, delay)
	}

	tmp := req.Output + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return errors.Wrap(errors.ErrCodeEncodingFailure, err, "create %s", req.Output)
	}
	if err := gif.EncodeAll(f, anim); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrap(errors.ErrCodeEncodingFailure, err, "encode gif")
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrap(errors.ErrCodeEncodingFailure, err, "write %s", req.Output)
	}
	if err := os.Rename(tmp, req.Output); err != nil {
		os.Remove(tmp)
		return errors.Wrap(errors.ErrCodeEncodingFailure, err, "write %s", req.Output)
	}
	return nil
}

func readFrame(path string, format sink.Format) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return sink.Decode(f, format)
}

func paletted(img image.Image) *image.Paletted {
	b := img.Bounds()
	out := image.NewPaletted(b, palette.Plan9)
	draw.FloydSteinberg.Draw(out, b, img, b.Min)
	return out
}
