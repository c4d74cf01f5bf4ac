package corpus

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mikey/llm-style-responder/internal/core"
)

// MaxMessageSize caps how many bytes are read for a single message
const MaxMessageSize = 50 * 1024 * 1024

// LoadPaths reads every .eml message reachable from paths. A path may be a
// single file, a directory (walked recursively) or a .zip archive. Unreadable
// entries come back as RawMessage values with Err set so the builder can
// account for them; the returned error is reserved for a path that does not
// exist.
func LoadPaths(paths []string) ([]core.RawMessage, error) {
	var out []core.RawMessage
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}

		switch {
		case info.IsDir():
			out = append(out, loadDir(path)...)
		case isZip(path):
			out = append(out, loadZip(path)...)
		default:
			out = append(out, loadFile(path))
		}
	}
	return out, nil
}

func loadFile(path string) core.RawMessage {
	f, err := os.Open(path)
	if err != nil {
		return core.RawMessage{Filename: path, Err: err}
	}
	defer f.Close()

	data, err := readLimited(f)
	return core.RawMessage{Filename: path, Data: data, Err: err}
}

func loadDir(root string) []core.RawMessage {
	var out []core.RawMessage
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			out = append(out, core.RawMessage{Filename: path, Err: err})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !isEML(path) {
			return nil
		}
		out = append(out, loadFile(path))
		return nil
	})
	if err != nil {
		out = append(out, core.RawMessage{Filename: root, Err: err})
	}
	return out
}

func loadZip(path string) []core.RawMessage {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return []core.RawMessage{{Filename: path, Err: fmt.Errorf("failed to open archive: %w", err)}}
	}
	defer zr.Close()

	var out []core.RawMessage
	for _, entry := range zr.File {
		name := entry.Name
		if entry.FileInfo().IsDir() || !isEML(name) || strings.HasPrefix(name, "__MACOSX/") {
			continue
		}

		rc, err := entry.Open()
		if err != nil {
			out = append(out, core.RawMessage{Filename: name, Err: err})
			continue
		}
		data, err := readLimited(rc)
		rc.Close()
		out = append(out, core.RawMessage{Filename: name, Data: data, Err: err})
	}
	return out
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxMessageSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxMessageSize {
		return nil, fmt.Errorf("message exceeds %d bytes", MaxMessageSize)
	}
	return data, nil
}

func isEML(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".eml")
}

func isZip(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".zip")
}
