package config

import (
	"fmt"
	"os"

	"aiInsider/domain"

	"gopkg.in/yaml.v3"
)

// Landing is the experiments and scoring document served to the landing page.
type Landing struct {
	Experiments domain.ExperimentConfig `yaml:"experiments"`
	Scoring     domain.ScoringRules     `yaml:"scoring"`
}

// LoadLanding reads and decodes the landing document at path.
func LoadLanding(path string) (Landing, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Landing{}, fmt.Errorf("read landing config: %w", err)
	}
	return ParseLanding(raw)
}

func ParseLanding(raw []byte) (Landing, error) {
	var doc Landing
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Landing{}, fmt.Errorf("parse landing config: %w", err)
	}

	if doc.Experiments == nil {
		doc.Experiments = domain.ExperimentConfig{}
	}
	for name, exp := range doc.Experiments {
		exp.Name = name
		doc.Experiments[name] = exp
	}
	return doc, nil
}
