package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/energy-data-etl/internal/domain"
)

// catalogueFiles are the BFE translation catalogues shipped alongside the
// facility registry. Later files overwrite earlier codes on collision.
var catalogueFiles = []string{
	"MainCategoryCatalogue.csv",
	"OrientationCatalogue.csv",
	"PlantCategoryCatalogue.csv",
	"SubCategoryCatalogue.csv",
}

// LoadCatalogues builds the code→label catalogue from the standard catalogue
// files in dir. A missing file is logged and skipped; an unreadable or
// unparseable one is fatal.
func LoadCatalogues(dir string, logger *slog.Logger) (domain.Catalogue, error) {
	catalogue := make(domain.Catalogue)

	for _, name := range catalogueFiles {
		path := filepath.Join(dir, name)
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				logger.Warn("catalogue file not found", "path", path)
				continue
			}
			return nil, fmt.Errorf("open catalogue %s: %w", path, err)
		}
		mergeErr := catalogue.Merge(f)
		f.Close()
		if mergeErr != nil {
			return nil, fmt.Errorf("parse catalogue %s: %w", path, mergeErr)
		}
	}

	logger.Info("loaded catalogue translations", "codes", len(catalogue))
	return catalogue, nil
}
