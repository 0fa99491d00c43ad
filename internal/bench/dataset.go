package bench

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"loom/internal/errs"
)

// Dataset is an ordered sequence of samples with unique IDs.
type Dataset struct {
	Version     string   `json:"version"`
	Created     string   `json:"created"`
	Source      string   `json:"source"`
	Description string   `json:"description"`
	Samples     []Sample `json:"samples"`
}

// LoadDataset reads a dataset JSON file.
func LoadDataset(path string) (*Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Wrap(errs.NotFound, err, "dataset %s", path)
		}
		return nil, errs.Wrap(errs.Internal, err, "read dataset %s", path)
	}
	var ds Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, errs.Wrap(errs.Parse, err, "parse dataset %s", path)
	}
	return &ds, nil
}

// Len returns the sample count.
func (d *Dataset) Len() int { return len(d.Samples) }
