package render

import (
	"bytes"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
)

// PageWriter persists rendered page content. The parent directory exists
// when it is called.
type PageWriter func(path string, content []byte) error

// pageMode is the permission rendered pages end up with.
const pageMode os.FileMode = 0o644

// WriteFile replaces path with content atomically, so readers of an earlier
// build never observe a half-written page.
func WriteFile(path string, content []byte) error {
	if err := atomic.WriteFile(path, bytes.NewReader(content)); err != nil {
		return fmt.Errorf("write page: %w", err)
	}
	// atomic creates through a temp file, which is owner-only.
	if err := os.Chmod(path, pageMode); err != nil {
		return fmt.Errorf("set page permissions: %w", err)
	}
	return nil
}
