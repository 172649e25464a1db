package blinds

import (
	"fmt"
	"os"

	"github.com/toondeboer/pokerkit/go/internal/models"
	"gopkg.in/yaml.v3"
)

type levelsFile struct {
	Levels []models.BlindLevel `yaml:"levels"`
}

// LoadLevelsFile reads a blind schedule from a YAML file of the form
//
//	levels:
//	  - small: 5
//	    big: 10
func LoadLevelsFile(path string) ([]models.BlindLevel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read blinds file: %w", err)
	}

	var file levelsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse blinds file: %w", err)
	}
	if err := validate(file.Levels); err != nil {
		return nil, err
	}
	return file.Levels, nil
}
