// Package dataset loads ratings tables from files or from the embedded
// movie critics dataset.
//
// Supported file formats are JSON (.json) and YAML (.yaml, .yml). Both hold a
// single object of rater -> item -> rating:
//
//	Toby:
//	  Snakes on a Plane: 4.5
//	  Superman Returns: 4.0
package dataset

import (
	"context"
	_ "embed"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/okian/critics/internal/domain/ratings"
	"github.com/okian/critics/pkg/metrics"
)

// Source names reported in metrics and logs.
const (
	SourceEmbedded = "embedded"
	SourceFile     = "file"
)

// Format identifies a dataset encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

//go:embed critics.json
var criticsJSON []byte

// Critics returns a fresh copy of the embedded movie critics table.
func Critics() ratings.Table {
	t, err := Decode(FormatJSON, criticsJSON)
	if err != nil {
		panic(fmt.Sprintf("embedded critics dataset is invalid: %v", err))
	}
	return t
}

// Load reads the table stored at path. An empty path selects the embedded
// critics dataset.
func Load(ctx context.Context, path string) (ratings.Table, error) {
	if path == "" {
		t := Critics()
		metrics.RecordDatasetLoad(SourceEmbedded, nil)
		return t, nil
	}

	t, err := loadFile(ctx, path)
	metrics.RecordDatasetLoad(SourceFile, err)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func loadFile(ctx context.Context, path string) (ratings.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return Decode(format, b)
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: unsupported extension %q", ErrFormat, filepath.Ext(path))
	}
}

// Decode parses b in the given format and validates the result.
func Decode(format Format, b []byte) (ratings.Table, error) {
	var (
		t   ratings.Table
		err error
	)
	switch format {
	case FormatJSON:
		t, err = decodeJSON(b)
	case FormatYAML:
		t, err = decodeYAML(b)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrFormat, format)
	}
	if err != nil {
		return nil, err
	}
	if err := Validate(t); err != nil {
		return nil, err
	}
	return t, nil
}

func decodeJSON(b []byte) (ratings.Table, error) {
	var t ratings.Table
	if err := json.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	return t, nil
}

func decodeYAML(b []byte) (ratings.Table, error) {
	raw, err := yaml.Parser().Unmarshal(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}

	t := make(ratings.Table, len(raw))
	for rater, v := range raw {
		items, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: rater %q must map items to ratings", ErrFormat, rater)
		}
		row := make(map[string]float64, len(items))
		for item, rv := range items {
			f, ok := toFloat(rv)
			if !ok {
				return nil, fmt.Errorf("%w: rating %q/%q is not a number", ErrFormat, rater, item)
			}
			row[item] = f
		}
		t[rater] = row
	}
	return t, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// Validate rejects empty identifiers and non-finite ratings.
func Validate(t ratings.Table) error {
	for rater, items := range t {
		if strings.TrimSpace(rater) == "" {
			return fmt.Errorf("%w: empty rater id", ErrFormat)
		}
		for item, r := range items {
			if strings.TrimSpace(item) == "" {
				return fmt.Errorf("%w: empty item id for rater %q", ErrFormat, rater)
			}
			if math.IsNaN(r) || math.IsInf(r, 0) {
				return fmt.Errorf("%w: rating %q/%q is not finite", ErrFormat, rater, item)
			}
		}
	}
	return nil
}
