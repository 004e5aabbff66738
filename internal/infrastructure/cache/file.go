package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/biocatlab/enzymeset/internal/infrastructure/monitoring/logging"
	"github.com/biocatlab/enzymeset/pkg/errors"
)

// FileConfig locates the on-disk artifact directories.  An empty directory
// disables that artifact kind (every lookup misses).
type FileConfig struct {
	FeaturesDir    string `mapstructure:"features_dir" yaml:"features_dir" json:"features_dir"`
	AnnotationsDir string `mapstructure:"annotations_dir" yaml:"annotations_dir" json:"annotations_dir"`
}

// fileCache reads one JSON blob per protein, lazily at access time.  Blobs
// are written once by the upstream embedding jobs and never mutated, so no
// locking or invalidation is needed.
type fileCache struct {
	cfg FileConfig
	log logging.Logger
}

// NewFileCache constructs a file-backed SideCache.
func NewFileCache(cfg FileConfig, log logging.Logger) SideCache {
	if log == nil {
		log = logging.Default()
	}
	return &fileCache{cfg: cfg, log: log.Named("filecache")}
}

func (c *fileCache) readBlob(dir, uniprotID string) ([]byte, error) {
	if dir == "" {
		return nil, ErrMiss
	}
	data, err := os.ReadFile(filepath.Join(dir, uniprotID+".json"))
	if os.IsNotExist(err) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheUnavailable, "failed to read artifact file").
			WithDetail("uniprot_id=" + uniprotID)
	}
	return data, nil
}

func (c *fileCache) ProteinFeatures(_ context.Context, uniprotID string) (*FeatureBlob, error) {
	data, err := c.readBlob(c.cfg.FeaturesDir, uniprotID)
	if err != nil {
		return nil, err
	}
	var blob FeatureBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFeatureCorrupt, "failed to parse feature blob").
			WithDetail("uniprot_id=" + uniprotID)
	}
	return &blob, nil
}

func (c *fileCache) ResidueAnnotation(_ context.Context, uniprotID string) ([]float64, error) {
	data, err := c.readBlob(c.cfg.AnnotationsDir, uniprotID)
	if err != nil {
		return nil, err
	}
	var scores []float64
	if err := json.Unmarshal(data, &scores); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFeatureCorrupt, "failed to parse annotation blob").
			WithDetail("uniprot_id=" + uniprotID)
	}
	return scores, nil
}
