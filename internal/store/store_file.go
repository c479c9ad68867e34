package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	yaml "gopkg.in/yaml.v3"
)

// FileStore keeps one YAML file per slot under Dir.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) *FileStore { return &FileStore{Dir: dir} }

func (f *FileStore) path(slot string) string { return filepath.Join(f.Dir, slot+".yaml") }

func (f *FileStore) Save(ctx context.Context, slot string, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	slot, err := NormalizeSlot(slot)
	if err != nil {
		return err
	}
	snap.Slot = slot
	raw, err := yaml.Marshal(toRecord(snap))
	if err != nil {
		return fmt.Errorf("encode save: %w", err)
	}
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return fmt.Errorf("create save dir: %w", err)
	}
	// 쓰다 죽어도 기존 파일이 깨지지 않도록 rename
	tmp, err := os.CreateTemp(f.Dir, "."+slot+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp save: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close save: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path(slot)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename save: %w", err)
	}
	return nil
}

func (f *FileStore) Load(ctx context.Context, slot string) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	slot, err := NormalizeSlot(slot)
	if err != nil {
		return Snapshot{}, err
	}
	raw, err := os.ReadFile(f.path(slot))
	if errors.Is(err, fs.ErrNotExist) {
		return Snapshot{}, fmt.Errorf("slot %s: %w", slot, ErrNotFound)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("read save: %w", err)
	}
	var rec record
	if err := yaml.Unmarshal(raw, &rec); err != nil {
		return Snapshot{}, fmt.Errorf("decode save %s: %w", slot, err)
	}
	return fromRecord(rec)
}

// Slots lists saved slot names.
func (f *FileStore) Slots(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(f.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".yaml" {
			continue
		}
		out = append(out, name[:len(name)-len(".yaml")])
	}
	return out, nil
}
