// Package rubric holds the weighted assessment templates interviews are
// graded against. Templates are YAML documents loaded once at startup and
// immutable afterwards, so a single Store is safe to share across all
// concurrent interviews.
package rubric

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ai-interviewer/backend/pkg/logger"
)

// ErrTemplateNotFound means no rubric exists for the requested template name.
// There is no safe default rubric, so callers must treat this as fatal.
var ErrTemplateNotFound = errors.New("assessment template not found")

// ScoreLevel describes one point on the 1-5 scale of a dimension.
type ScoreLevel struct {
	Score       int    `yaml:"score"`
	Label       string `yaml:"label"`
	Description string `yaml:"description"`
}

// Dimension is a single named axis of evaluation.
type Dimension struct {
	Name        string       `yaml:"dimension_name"`
	Description string       `yaml:"description"`
	Weight      float64      `yaml:"weight"`
	ScoreLevels []ScoreLevel `yaml:"score_levels"`
	Keywords    []string     `yaml:"keywords"`
}

// LevelDescription returns the criteria text for a given score, or "" when
// the level is not defined.
func (d *Dimension) LevelDescription(score int) string {
	for _, lvl := range d.ScoreLevels {
		if lvl.Score == score {
			return lvl.Description
		}
	}
	return ""
}

// Rubric is a complete named assessment template.
type Rubric struct {
	TemplateName string      `yaml:"template_name"`
	Version      string      `yaml:"version"`
	Dimensions   []Dimension `yaml:"dimensions"`
}

// DimensionNames returns the dimension names in template order.
func (r *Rubric) DimensionNames() []string {
	names := make([]string, 0, len(r.Dimensions))
	for _, d := range r.Dimensions {
		names = append(names, d.Name)
	}
	return names
}

// DimensionByName looks a dimension up by its exact name.
func (r *Rubric) DimensionByName(name string) (*Dimension, bool) {
	for i := range r.Dimensions {
		if r.Dimensions[i].Name == name {
			return &r.Dimensions[i], true
		}
	}
	return nil, false
}

func (r *Rubric) validate() error {
	if r.TemplateName == "" {
		return errors.New("template_name is required")
	}
	if len(r.Dimensions) == 0 {
		return errors.New("at least one dimension is required")
	}
	for _, d := range r.Dimensions {
		if d.Name == "" {
			return errors.New("dimension_name is required")
		}
		if d.Weight < 0 || d.Weight > 1 {
			return fmt.Errorf("dimension %q: weight %v outside [0,1]", d.Name, d.Weight)
		}
		if len(d.ScoreLevels) != 5 {
			return fmt.Errorf("dimension %q: expected 5 score levels, got %d", d.Name, len(d.ScoreLevels))
		}
	}
	return nil
}

// Store is an immutable lookup of rubrics by template name.
type Store struct {
	rubrics map[string]*Rubric
}

// templateSuffix matches the file naming of assessment templates, e.g.
// backend-engineer-assessment.yaml for template "backend-engineer".
const templateSuffix = "-assessment.yaml"

// LoadDir reads every assessment template in dir. Files that do not carry
// the template suffix are ignored; a malformed template fails the load.
func LoadDir(dir string) (*Store, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read rubric dir: %w", err)
	}

	store := &Store{rubrics: make(map[string]*Rubric)}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), templateSuffix) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read rubric %s: %w", entry.Name(), err)
		}

		var r Rubric
		if err := yaml.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("failed to parse rubric %s: %w", entry.Name(), err)
		}
		if err := r.validate(); err != nil {
			return nil, fmt.Errorf("invalid rubric %s: %w", entry.Name(), err)
		}

		store.rubrics[r.TemplateName] = &r

		logger.Info("Assessment template loaded",
			zap.String("template", r.TemplateName),
			zap.String("version", r.Version),
			zap.Int("dimensions", len(r.Dimensions)),
		)
	}

	if len(store.rubrics) == 0 {
		return nil, fmt.Errorf("no assessment templates found in %s", dir)
	}

	return store, nil
}

// NewStore builds a store from in-memory rubrics. Used by tests and by
// callers that assemble templates programmatically.
func NewStore(rubrics ...*Rubric) *Store {
	store := &Store{rubrics: make(map[string]*Rubric, len(rubrics))}
	for _, r := range rubrics {
		store.rubrics[r.TemplateName] = r
	}
	return store
}

// Get resolves a template name.
func (s *Store) Get(templateName string) (*Rubric, error) {
	r, ok := s.rubrics[templateName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, templateName)
	}
	return r, nil
}

// TemplateNames lists every loaded template.
func (s *Store) TemplateNames() []string {
	names := make([]string, 0, len(s.rubrics))
	for name := range s.rubrics {
		names = append(names, name)
	}
	return names
}
