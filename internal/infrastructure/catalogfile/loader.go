// Package catalogfile reads catalog seed files and watches them for edits.
package catalogfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/partsmarket/backend/internal/domain"
	"gopkg.in/yaml.v3"
)

// csvTagSeparator separates fitment tags inside the car_brands CSV column.
const csvTagSeparator = "|"

// document is the YAML/JSON layout: {products: [...]}. A bare list of
// products is accepted as well.
type document struct {
	Products []domain.Product `yaml:"products"`
}

type csvProduct struct {
	ID        string `csv:"id"`
	Title     string `csv:"title"`
	CarBrands string `csv:"car_brands"`
}

// Source implements domain.CatalogSource for a file on disk.
type Source struct {
	Path string
}

// FetchProducts loads the file.
func (s Source) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	return Load(s.Path)
}

// Load reads a catalog file. The format is chosen by extension:
// .yaml, .yml and .json are parsed as YAML, .csv with columns
// id,title,car_brands.
func Load(path string) ([]domain.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml", ".json":
		return parseYAML(data)
	case ".csv":
		return parseCSV(data)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, ext)
	}
}

func parseYAML(data []byte) ([]domain.Product, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(root.Content) == 0 {
		return []domain.Product{}, nil
	}

	node := root.Content[0]
	switch node.Kind {
	case yaml.SequenceNode:
		products := []domain.Product{}
		if err := node.Decode(&products); err != nil {
			return nil, fmt.Errorf("failed to decode products: %w", err)
		}
		return products, nil
	case yaml.MappingNode:
		var doc document
		if err := node.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode products: %w", err)
		}
		if doc.Products == nil {
			return []domain.Product{}, nil
		}
		return doc.Products, nil
	default:
		return nil, fmt.Errorf("failed to parse catalog: expected a list or a mapping at the top level")
	}
}

func parseCSV(data []byte) ([]domain.Product, error) {
	var rows []*csvProduct
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse catalog csv: %w", err)
	}

	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, domain.Product{
			ID:        strings.TrimSpace(row.ID),
			Title:     strings.TrimSpace(row.Title),
			CarBrands: splitCSVTags(row.CarBrands),
		})
	}
	return products, nil
}

// splitCSVTags splits the car_brands column. Blank entries are dropped so a
// blank column means no fitment data.
func splitCSVTags(column string) []string {
	tags := []string{}
	for _, tag := range strings.Split(column, csvTagSeparator) {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
