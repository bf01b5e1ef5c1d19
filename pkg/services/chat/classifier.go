package chat

import (
	_ "embed"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed patterns.yaml
var defaultPatterns []byte

// Verdict is the outcome of classifying one visitor message.
type Verdict struct {
	Abusive   bool
	PatternID string
}

// Classifier decides whether a message is answered by the model at all.
type Classifier interface {
	Classify(message string) Verdict
}

type Pattern struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
	Regex       string `yaml:"regex"`

	compiled *regexp.Regexp
}

type patternFile struct {
	Patterns []Pattern `yaml:"patterns"`
}

// DenylistClassifier flags messages matching any of a list of prompt-injection
// patterns. It keeps casual misuse away from the paid model; it is not a
// security boundary.
type DenylistClassifier struct {
	patterns []Pattern
}

// NewDefaultClassifier loads the embedded pattern list.
func NewDefaultClassifier() (*DenylistClassifier, error) {
	return ParseClassifier(defaultPatterns)
}

// ParseClassifier builds a classifier from a YAML pattern document.
func ParseClassifier(data []byte) (*DenylistClassifier, error) {
	var file patternFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pattern file: %w", err)
	}
	for i := range file.Patterns {
		p := &file.Patterns[i]
		re, err := regexp.Compile("(?i)" + p.Regex)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern %s: %w", p.ID, err)
		}
		p.compiled = re
	}
	return &DenylistClassifier{patterns: file.Patterns}, nil
}

func (c *DenylistClassifier) Classify(message string) Verdict {
	for _, p := range c.patterns {
		if p.compiled.MatchString(message) {
			return Verdict{Abusive: true, PatternID: p.ID}
		}
	}
	return Verdict{}
}

// Len is the number of loaded patterns.
func (c *DenylistClassifier) Len() int {
	return len(c.patterns)
}
