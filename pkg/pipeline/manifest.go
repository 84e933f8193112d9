package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/chaosgame/pkg/buildinfo"
	"github.com/matzehuels/chaosgame/pkg/errors"
)

// ManifestName is the run manifest file inside a run directory.
const ManifestName = "run.json"

// FramesDirName is the frames subdirectory of a run directory.
const FramesDirName = "frames"

// Manifest records how a run directory was produced, so frames can be
// re-encoded later without repeating the options.
type Manifest struct {
	RunID     string    `json:"run_id"`
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Polygon   string    `json:"polygon"`
	Rate      float64   `json:"rate"`
	Frames    int       `json:"frames"`
	Total     int       `json:"total_frames"`
	Format    string    `json:"format"`
	FrameRate int       `json:"frame_rate"`
	State     State     `json:"state"`
	Animation string    `json:"animation,omitempty"`
	Error     string    `json:"error,omitempty"`
	Options   Options   `json:"options"`
}

// WriteManifest stores m in runDir, replacing any previous manifest.
func WriteManifest(runDir string, m *Manifest) error {
	m.UpdatedAt = time.Now().UTC()
	if m.Version == "" {
		m.Version = buildinfo.Version
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode manifest")
	}
	path := filepath.Join(runDir, ManifestName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailure, err, "write manifest")
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrap(errors.ErrCodeRenderFailure, err, "write manifest")
	}
	return nil
}

// ReadManifest loads the manifest of runDir.
func ReadManifest(runDir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(runDir, ManifestName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Invalid("%s has no %s; not a run directory", runDir, ManifestName)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read manifest")
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "parse %s", ManifestName)
	}
	return &m, nil
}
