package pantry

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"MetricRecipes/internal/model"
)

// fileDoc is the layout of an ingredient data file:
//
//	ingredients:
//	  - name: Monthly Expenses
//	    values:
//	      "2015-02-28": 9349.45
//	      "2014-11-30": null
type fileDoc struct {
	Ingredients []model.Ingredient `yaml:"ingredients"`
}

// FileSource serves series from a YAML data file, read once at construction.
type FileSource struct {
	Path string
	data map[string]model.Series
}

// NewFileSource loads the data file at path.
func NewFileSource(path string) (*FileSource, error) {
	ings, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	data := make(map[string]model.Series, len(ings))
	for _, ing := range ings {
		data[ing.Name] = ing.Values
	}
	return &FileSource{Path: path, data: data}, nil
}

// LoadFile parses every ingredient in a YAML data file.
func LoadFile(path string) ([]model.Ingredient, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ingredient file: %w", err)
	}
	var doc fileDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse ingredient file: %w", err)
	}
	for i, ing := range doc.Ingredients {
		if ing.Name == "" {
			return nil, fmt.Errorf("parse ingredient file: entry %d has no name", i)
		}
		if ing.Values == nil {
			doc.Ingredients[i].Values = model.Series{}
		}
	}
	return doc.Ingredients, nil
}

func (f *FileSource) Name() string { return "file" }

func (f *FileSource) FetchSeries(_ context.Context, name string) (model.Series, error) {
	s, ok := f.data[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return s, nil
}
