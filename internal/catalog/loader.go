// Package catalog загружает каталог и ведомости объёмов из JSON, YAML и таблиц (.xlsx/.xls/.csv).
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"catalog-matcher/internal/fileio"
	"catalog-matcher/internal/matching/model"
)

var ErrUnsupportedFormat = errors.New("unsupported catalog format")

// Load читает каталог с диска; формат определяется по расширению.
func Load(path string, cols Columns) ([]model.CatalogItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f, filepath.Base(path), cols)
}

// LoadBOQ - то же для ведомости.
func LoadBOQ(path string, cols BOQColumns) ([]model.BOQItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeBOQ(f, filepath.Base(path), cols)
}

func Decode(r io.Reader, filename string, cols Columns) ([]model.CatalogItem, error) {
	var items []model.CatalogItem
	switch ext := strings.ToLower(filepath.Ext(filename)); {
	case ext == ".json":
		if err := json.NewDecoder(r).Decode(&items); err != nil {
			return nil, fmt.Errorf("decode %s: %w", filename, err)
		}
	case ext == ".yaml" || ext == ".yml":
		if err := yaml.NewDecoder(r).Decode(&items); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode %s: %w", filename, err)
		}
	case fileio.Supported(filename):
		tbl, err := fileio.ReadTable(r, filename, cols.HeaderRow)
		if err != nil {
			return nil, err
		}
		return Items(tbl.Rows, cols), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}

	for i := range items {
		if items[i].Status == "" {
			items[i].Status = model.StatusActive
		}
		if err := items[i].Specifications.Validate(); err != nil {
			return nil, fmt.Errorf("item %q: %w", items[i].ID, err)
		}
	}
	return items, nil
}

func DecodeBOQ(r io.Reader, filename string, cols BOQColumns) ([]model.BOQItem, error) {
	var items []model.BOQItem
	switch ext := strings.ToLower(filepath.Ext(filename)); {
	case ext == ".json":
		if err := json.NewDecoder(r).Decode(&items); err != nil {
			return nil, fmt.Errorf("decode %s: %w", filename, err)
		}
	case ext == ".yaml" || ext == ".yml":
		if err := yaml.NewDecoder(r).Decode(&items); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode %s: %w", filename, err)
		}
	case fileio.Supported(filename):
		tbl, err := fileio.ReadTable(r, filename, cols.HeaderRow)
		if err != nil {
			return nil, err
		}
		return BOQItems(tbl.Rows, cols), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
	return items, nil
}
