package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/order-insights/internal/core/domain"
)

// categoriesFile is the on-disk tag vocabulary layout:
//
//	categories:
//	  Automation: [automation, subscription]
//	  DogExtra: [dog, treats]
type categoriesFile struct {
	Categories map[string][]string `yaml:"categories"`
}

// LoadCategories reads the category tag vocabulary from path. An empty path
// returns the compiled-in defaults; a present but broken file is an error so
// a typo never silently empties a category.
func LoadCategories(path string) (domain.CategoryConfig, error) {
	if path == "" {
		return domain.DefaultCategoryConfig(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read categories file: %w", err)
	}

	var file categoriesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse categories file: %w", err)
	}
	if len(file.Categories) == 0 {
		return nil, fmt.Errorf("categories file %s defines no categories", path)
	}

	config := make(domain.CategoryConfig, len(file.Categories))
	for name, tags := range file.Categories {
		if len(tags) == 0 {
			return nil, fmt.Errorf("category %q has an empty tag vocabulary", name)
		}
		config[domain.Category(name)] = tags
	}
	return config, nil
}
