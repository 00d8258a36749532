// Package audio resolves playback sources, validates recordings, enforces
// the storage quota, and drives the external player process.
package audio

import (
	"embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/reveille-app/reveille/internal/model"
)

//go:embed assets/default_alarm.wav
var assetsFS embed.FS

const defaultAssetName = "default_alarm.wav"

// Source is a resolved playback target. Degraded means the requested file
// was unusable and the bundled default was substituted.
type Source struct {
	Path     string
	Degraded bool
}

// Pipeline maps a recording reference to something the player can open.
// Resolution never fails: the worst case is the bundled default sound.
type Pipeline struct {
	dataDir string
	log     *slog.Logger

	once      sync.Once
	assetPath string
	assetErr  error
}

func NewPipeline(dataDir string, log *slog.Logger) *Pipeline {
	return &Pipeline{dataDir: dataDir, log: log}
}

// Resolve maps ref to a playable file. The sentinel id and the empty string
// resolve to the bundled asset without being considered degraded; any other
// ref is tried as a file path (file:// prefix stripped) and falls back to
// the bundled asset with Degraded set when the file is missing, empty, or
// unreadable.
func (p *Pipeline) Resolve(ref string) Source {
	if ref == "" || ref == model.DefaultRecordingID {
		return Source{Path: p.defaultAsset()}
	}

	path := strings.TrimPrefix(ref, "file://")
	if err := usable(path); err != nil {
		p.log.Warn("audio source unusable, falling back to default", "ref", ref, "error", err)
		return Source{Path: p.defaultAsset(), Degraded: true}
	}
	return Source{Path: path}
}

func usable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%s is empty", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	return f.Close()
}

// defaultAsset materializes the embedded WAV into the data directory once
// and returns its path. If even that fails the embedded bytes cannot reach
// the player binary, so the path is returned anyway and playback will
// surface the error.
func (p *Pipeline) defaultAsset() string {
	p.once.Do(func() {
		p.assetPath = filepath.Join(p.dataDir, defaultAssetName)
		if err := usable(p.assetPath); err == nil {
			return
		}

		raw, err := assetsFS.ReadFile("assets/" + defaultAssetName)
		if err != nil {
			p.assetErr = err
			return
		}
		if err := os.MkdirAll(p.dataDir, 0750); err != nil {
			p.assetErr = err
			return
		}
		p.assetErr = os.WriteFile(p.assetPath, raw, 0644)
	})

	if p.assetErr != nil {
		p.log.Error("materialize default alarm sound", "error", p.assetErr)
	}
	return p.assetPath
}
