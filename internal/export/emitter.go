package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Emitter delivers an encoded file to the user.
type Emitter interface {
	Emit(ctx context.Context, f File) error
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(ctx context.Context, f File) error

func (fn EmitterFunc) Emit(ctx context.Context, f File) error { return fn(ctx, f) }

// DirEmitter writes each file into Dir, replacing any previous download of
// the same name.
type DirEmitter struct {
	Dir string

	// Written collects the paths of files emitted so far.
	Written []string
}

func (d *DirEmitter) Emit(ctx context.Context, f File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := d.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("export: create %s: %w", dir, err)
	}

	path := filepath.Join(dir, f.Name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, f.Data, 0o644); err != nil {
		return fmt.Errorf("export: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("export: rename %s: %w", path, err)
	}
	d.Written = append(d.Written, path)
	return nil
}
