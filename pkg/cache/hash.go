package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...interface{}) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// RunKeyOpts holds every run option that changes the pixels of a frame.
// Frame rate, duration and output paths are deliberately absent: frame k
// is identical whatever the length of the run it belongs to.
type RunKeyOpts struct {
	Vertices        int     `json:"vertices"`
	Radius          float64 `json:"radius"`
	Rotation        float64 `json:"rotation"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	Seed            uint64  `json:"seed"`
	WarmUp          int     `json:"warm_up"`
	PointRadius     float64 `json:"point_radius"`
	HighlightRadius float64 `json:"highlight_radius"`
	LineWidth       float64 `json:"line_width"`
	Background      string  `json:"background"`
	Outline         string  `json:"outline"`
	Highlight       string  `json:"highlight"`
}

// Keyer derives cache keys.
type Keyer interface {
	// RunHash identifies the pixel-affecting options of a run.
	RunHash(opts RunKeyOpts) string

	// FrameKey addresses one encoded frame of a run.
	FrameKey(runHash string, index int, format string) string
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// RunHash implements Keyer.
func (DefaultKeyer) RunHash(opts RunKeyOpts) string {
	data, _ := json.Marshal(opts)
	return Hash(data)
}

// FrameKey implements Keyer.
func (DefaultKeyer) FrameKey(runHash string, index int, format string) string {
	return hashKey("frame", runHash, index, format)
}
