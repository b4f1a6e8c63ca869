package forest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

// FormatVersion is bumped whenever the artifact layout changes.
const FormatVersion = 1

// Save writes the forest as JSON. The file is replaced atomically.
func (f *Forest) Save(path string) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create model directory: %w", err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write model: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move model into place: %w", err)
	}
	return nil
}

// Load reads a forest written by Save and checks that it is complete.
func Load(path string) (*Forest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}

	var f Forest
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode model %s: %w", path, err)
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("invalid model %s: %w", path, err)
	}
	return &f, nil
}

func (f *Forest) validate() error {
	if f.Version != FormatVersion {
		return fmt.Errorf("unsupported format version %d (want %d)", f.Version, FormatVersion)
	}
	nf := len(f.FeatureNames)
	if nf == 0 || len(f.TargetNames) == 0 {
		return fmt.Errorf("model has no feature or target names")
	}
	if len(f.FeatureRanges) != nf || len(f.Importances) != nf {
		return fmt.Errorf("%w: %d names, %d ranges, %d importances",
			ErrFeatureCount, nf, len(f.FeatureRanges), len(f.Importances))
	}
	if len(f.Trees) == 0 {
		return fmt.Errorf("model has no trees")
	}
	for i, t := range f.Trees {
		if err := checkNode(t, nf, len(f.TargetNames)); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}

func checkNode(n *Node, features, targets int) error {
	if n == nil {
		return fmt.Errorf("missing node")
	}
	if n.IsLeaf() {
		if n.Right != nil {
			return fmt.Errorf("node has a right child only")
		}
		if len(n.Value) != targets {
			return fmt.Errorf("leaf has %d values, want %d", len(n.Value), targets)
		}
		return nil
	}
	if n.Feature < 0 || n.Feature >= features {
		return fmt.Errorf("split on feature %d out of %d", n.Feature, features)
	}
	if err := checkNode(n.Left, features, targets); err != nil {
		return err
	}
	return checkNode(n.Right, features, targets)
}

// CheckFeatures reports an error unless the model was trained on exactly the
// given feature columns in the same order.
func (f *Forest) CheckFeatures(names []string) error {
	if len(names) != len(f.FeatureNames) {
		return fmt.Errorf("%w: model has %d features, want %d", ErrFeatureCount, len(f.FeatureNames), len(names))
	}
	if !slices.Equal(names, f.FeatureNames) {
		return fmt.Errorf("model features %v do not match %v", f.FeatureNames, names)
	}
	return nil
}
