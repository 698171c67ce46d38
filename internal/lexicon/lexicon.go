// Package lexicon loads the keyword and sentiment dictionaries used to tag
// guest reviews with quality dimensions.
package lexicon

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// DefaultName is the lexicon used when none is configured.
const DefaultName = "hotel-zh"

// Lexicon maps quality dimensions to trigger keywords and carries the
// positive/negative word lists used for sentiment scoring.
type Lexicon struct {
	Name              string      `yaml:"name"`
	Version           int         `yaml:"version"`
	Description       string      `yaml:"description"`
	CommentColumns    []string    `yaml:"comment_columns"`
	ManualColumns     []string    `yaml:"manual_columns"`
	ScoreColumns      []string    `yaml:"score_columns"`
	DateColumns       []string    `yaml:"date_columns"`
	Dimensions        []Dimension `yaml:"dimensions"`
	Positive          []string    `yaml:"positive"`
	Negative          []string    `yaml:"negative"`
	DefaultSuggestion string      `yaml:"default_suggestion"`
}

// Dimension is a named quality aspect such as location or breakfast.
type Dimension struct {
	Name       string   `yaml:"name"`
	Keywords   []string `yaml:"keywords"`
	Suggestion string   `yaml:"suggestion"`
}

// LoadBuiltin loads a built-in lexicon by name.
func LoadBuiltin(name string) (*Lexicon, error) {
	data, err := builtinFS.ReadFile("builtin/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("lexicon.LoadBuiltin: unknown lexicon %q: %w", name, err)
	}
	lx, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("lexicon.LoadBuiltin: parse %q: %w", name, err)
	}
	return lx, nil
}

// Load reads a lexicon from a YAML file.
func Load(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lexicon.Load: %w", err)
	}
	lx, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("lexicon.Load: parse %s: %w", filepath.Base(path), err)
	}
	return lx, nil
}

// Resolve treats ref as a file path when it names a YAML file and as a
// built-in lexicon name otherwise. An empty ref selects DefaultName.
func Resolve(ref string) (*Lexicon, error) {
	if ref == "" {
		return LoadBuiltin(DefaultName)
	}
	ext := strings.ToLower(filepath.Ext(ref))
	if ext == ".yaml" || ext == ".yml" {
		return Load(ref)
	}
	return LoadBuiltin(ref)
}

// List returns the names of all built-in lexicons.
func List() ([]string, error) {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n := e.Name()
		if strings.HasSuffix(n, ".yaml") {
			names = append(names, strings.TrimSuffix(n, ".yaml"))
		}
	}
	return names, nil
}

// Suggestion returns the improvement advice for a dimension, falling back to
// the lexicon's default.
func (l *Lexicon) Suggestion(dimension string) string {
	for _, d := range l.Dimensions {
		if d.Name == dimension && d.Suggestion != "" {
			return d.Suggestion
		}
	}
	return l.DefaultSuggestion
}

// Validate reports structural problems: unnamed or duplicate dimensions and
// dimensions without keywords.
func (l *Lexicon) Validate() error {
	if len(l.Dimensions) == 0 {
		return fmt.Errorf("lexicon %q defines no dimensions", l.Name)
	}
	seen := make(map[string]bool, len(l.Dimensions))
	for i, d := range l.Dimensions {
		if strings.TrimSpace(d.Name) == "" {
			return fmt.Errorf("dimensions[%d]: name required", i)
		}
		if seen[d.Name] {
			return fmt.Errorf("dimensions[%d]: duplicate dimension %q", i, d.Name)
		}
		seen[d.Name] = true
		if len(d.Keywords) == 0 {
			return fmt.Errorf("dimensions[%d] %q: no keywords", i, d.Name)
		}
	}
	return nil
}

func parse(data []byte) (*Lexicon, error) {
	var l Lexicon
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, err
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	if l.DefaultSuggestion == "" {
		l.DefaultSuggestion = "请补充优化建议。"
	}
	return &l, nil
}
