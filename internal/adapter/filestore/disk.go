// Package filestore saves listing images and returns the reference stored on
// the listing row.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"bikemarket/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var _ domain.FileStore = (*Disk)(nil)

// Disk writes images into a local directory. References have the form
// <prefix>/<name>, with prefix typically "/uploads".
type Disk struct {
	dir    string
	prefix string
	log    *zap.Logger
}

// NewDisk creates dir if needed.
func NewDisk(dir, prefix string, log *zap.Logger) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("filestore: create %s: %w", dir, err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Disk{dir: dir, prefix: strings.TrimSuffix(prefix, "/"), log: log}, nil
}

// Save writes data under a unique name derived from name.
func (d *Disk) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	file := uniqueName(name)
	if err := os.WriteFile(filepath.Join(d.dir, file), data, 0o644); err != nil {
		return "", fmt.Errorf("filestore: save %s: %w", file, err)
	}
	d.log.Debug("image saved", zap.String("file", file), zap.Int("bytes", len(data)))
	return d.prefix + "/" + file, nil
}

// Remove deletes the file behind ref. Unknown references are ignored.
func (d *Disk) Remove(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !strings.HasPrefix(ref, d.prefix+"/") {
		return nil
	}
	file := path.Base(ref)
	err := os.Remove(filepath.Join(d.dir, file))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("filestore: remove %s: %w", file, err)
	}
	return nil
}

// uniqueName keeps only the base name of the upload and prefixes a UUID so
// concurrent uploads of the same file never collide.
func uniqueName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if base == "." || base == "/" || base == ".." {
		base = "image"
	}
	return uuid.NewString() + "_" + base
}
