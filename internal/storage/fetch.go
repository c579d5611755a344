package storage

import (
	"context"
	"fmt"
	"path"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/inventory-intel/internal/ingest"
)

// snapshotFiles are the four tables a run consumes.
var snapshotFiles = []string{
	ingest.ProductsFile,
	ingest.InventoryFile,
	ingest.DemandFile,
	ingest.SalesFile,
}

// FetchSnapshot downloads the four snapshot CSVs under prefix into destDir.
// All four must exist remotely; a partial snapshot is refused so a run never
// starts over mixed table versions.
func FetchSnapshot(ctx context.Context, src ObjectStorage, prefix, destDir string) error {
	objects, err := src.ListObjects(ctx, prefix)
	if err != nil {
		return fmt.Errorf("failed to list snapshot objects: %w", err)
	}

	remote := make(map[string]string, len(objects))
	for _, obj := range objects {
		remote[path.Base(obj.Key)] = obj.Key
	}

	for _, name := range snapshotFiles {
		if _, ok := remote[name]; !ok {
			return fmt.Errorf("remote snapshot is missing %s under prefix %q", name, prefix)
		}
	}

	for _, name := range snapshotFiles {
		key := remote[name]
		dest := filepath.Join(destDir, name)
		if err := src.DownloadObject(ctx, key, dest); err != nil {
			return err
		}
		log.Info().Str("key", key).Str("dest", dest).Msg("snapshot file downloaded")
	}

	return nil
}
