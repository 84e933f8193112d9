// Package sink writes rendered frames to disk.
//
// Frames are encoded as PNG (default), BMP or TIFF and stored in a single
// directory as frame_0001.png, frame_0002.png, ... so that external encoders
// can consume them with a printf-style input pattern.
package sink

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/matzehuels/chaosgame/pkg/errors"
)

// Format is a frame image format.
type Format string

// Supported frame formats.
const (
	FormatPNG  Format = "png"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

// Formats lists every supported frame format.
var Formats = []Format{FormatPNG, FormatBMP, FormatTIFF}

// ParseFormat parses a format name, case-insensitively. "tif" is accepted
// for TIFF and the empty string selects PNG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "", "png":
		return FormatPNG, nil
	case "bmp":
		return FormatBMP, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	}
	return "", errors.Invalid("unsupported frame format %q (supported: png, bmp, tiff)", s)
}

// Ext returns the file extension without the leading dot.
func (f Format) Ext() string { return string(f) }

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case FormatPNG:
		enc := png.Encoder{CompressionLevel: png.BestSpeed}
		return enc.Encode(w, img)
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	}
	return errors.Invalid("unsupported frame format %q", f)
}

// Bytes encodes img in the given format and returns the encoded data.
func Bytes(img image.Image, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads a frame written by Encode.
func Decode(r io.Reader, f Format) (image.Image, error) {
	switch f {
	case FormatPNG:
		return png.Decode(r)
	case FormatBMP:
		return bmp.Decode(r)
	case FormatTIFF:
		return tiff.Decode(r)
	}
	return nil, errors.Invalid("unsupported frame format %q", f)
}
