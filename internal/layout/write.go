// pattern: Imperative Shell

package layout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"aaosbuild/internal/outdir"
)

// FileName is the name of the layout file written under the Gradle build root.
const FileName = "layout.json"

const lockRetryDelay = 50 * time.Millisecond

// DefaultPath is <out-root>/aaos-apps-gradle-build/layout.json.
func DefaultPath(b *outdir.Builder) string {
	return filepath.Join(b.GradleRoot(), FileName)
}

// Write stores l at path while holding an exclusive lock on path+".lock",
// replacing the file atomically. It reports whether the content changed.
func Write(ctx context.Context, path string, l Layout) (bool, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, l); err != nil {
		return false, fmt.Errorf("encode layout: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, fmt.Errorf("create layout directory: %w", err)
	}

	fl := flock.New(path + ".lock")
	locked, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return false, fmt.Errorf("failed to acquire lock on %s", path)
	}
	defer func() { _ = fl.Unlock() }()

	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, buf.Bytes()) {
		return false, nil
	}

	tmp, err := os.CreateTemp(dir, FileName+".*")
	if err != nil {
		return false, fmt.Errorf("create temp layout: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return false, fmt.Errorf("write layout: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return false, fmt.Errorf("write layout: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return false, fmt.Errorf("replace layout: %w", err)
	}
	return true, nil
}

// Read loads a layout file written by Write.
func Read(path string) (Layout, error) {
	var l Layout
	data, err := os.ReadFile(path)
	if err != nil {
		return l, err
	}
	if err := json.Unmarshal(data, &l); err != nil {
		return l, fmt.Errorf("decode layout %s: %w", path, err)
	}
	return l, nil
}
