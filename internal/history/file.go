package history

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/lox/holdemtable/internal/fileutil"
	"github.com/lox/holdemtable/internal/phh"
)

// FilePublisher writes each hand as a PHH file under
// {dir}/{tableId}/{handNo}-{handId}.phh.
type FilePublisher struct {
	dir string
}

// NewFilePublisher returns a publisher rooted at dir.
func NewFilePublisher(dir string) *FilePublisher {
	return &FilePublisher{dir: dir}
}

// Path returns where rec is written.
func (p *FilePublisher) Path(rec HandRecord) string {
	return filepath.Join(p.dir, rec.TableID, fmt.Sprintf("%06d-%s.phh", rec.HandNo, rec.HandID))
}

func (p *FilePublisher) Publish(_ context.Context, rec HandRecord) error {
	data, err := phh.EncodeToBytes(ToPHH(rec))
	if err != nil {
		return fmt.Errorf("encode hand %s: %w", rec.HandID, err)
	}
	if err := fileutil.WriteFileAtomic(p.Path(rec), data, 0o644); err != nil {
		return fmt.Errorf("write hand %s: %w", rec.HandID, err)
	}
	return nil
}
