package publish

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"ui_forge_server/internal/types"
	"ui_forge_server/internal/utils"
)

// ErrNothingToPublish is returned for a nil or empty result.
var ErrNothingToPublish = errors.New("no generated HTML to publish")

// Publisher stores a generated page somewhere and returns its location.
type Publisher interface {
	Publish(ctx context.Context, result *types.GenerationResult) (string, error)
	Target() string
}

// DiskPublisher writes pages as <slug>.html under a directory.
type DiskPublisher struct {
	dir string
}

func NewDiskPublisher(dir string) *DiskPublisher {
	if dir == "" {
		dir = "tmp"
	}
	return &DiskPublisher{dir: dir}
}

func (d *DiskPublisher) Target() string { return "disk" }

// Publish overwrites any earlier page with the same name.
func (d *DiskPublisher) Publish(ctx context.Context, result *types.GenerationResult) (string, error) {
	if result == nil || result.HTML == "" {
		return "", ErrNothingToPublish
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export dir: %w", err)
	}
	filePath := filepath.Join(d.dir, utils.HTMLFileName(result.Name))
	if err := os.WriteFile(filePath, []byte(result.HTML), 0644); err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", filePath, err)
	}

	log.Printf("File saved: %s (result %s)", filePath, result.ID)
	return filePath, nil
}
