package prompt

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Template names used by the conversational flows.
const (
	TemplateQuestionGenerator = "mrs_question_generator"
	TemplateResponseAnalyzer  = "mrs_response_analyzer"
	TemplateScoreCalculator   = "mrs_score_calculator"
	TemplateIntentClassifier  = "intent_classifier"
	TemplateKnowledgeQuery    = "knowledge_query"
	TemplateEmotionalSupport  = "emotional_support"
)

// ErrTemplateNotFound is returned when a named template asset is missing or
// malformed. It indicates a deployment misconfiguration, not a user error.
var ErrTemplateNotFound = errors.New("prompt template not found")

//go:embed templates/*.yaml
var templatesFS embed.FS

// Renderer substitutes variables into a named prompt template.
type Renderer interface {
	Render(name string, vars map[string]any) (string, error)
}

// Store loads prompt templates from YAML assets and caches them. Each asset
// holds a single top-level key whose value carries a "template" field; the
// assets are human-edited and treated as external configuration.
type Store struct {
	fsys fs.FS

	mu        sync.RWMutex
	templates map[string]string
}

// NewStore returns a store backed by the embedded template assets.
func NewStore() *Store {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		// The embed directive guarantees the directory exists.
		panic(err)
	}
	return NewStoreFromFS(sub)
}

// NewStoreFromFS returns a store reading "<name>.yaml" files from fsys.
func NewStoreFromFS(fsys fs.FS) *Store {
	return &Store{
		fsys:      fsys,
		templates: make(map[string]string),
	}
}

type templateBlock struct {
	Description string `yaml:"description"`
	Template    string `yaml:"template"`
}

// Load returns the raw template text for name.
func (s *Store) Load(name string) (string, error) {
	s.mu.RLock()
	tpl, ok := s.templates[name]
	s.mu.RUnlock()
	if ok {
		return tpl, nil
	}

	data, err := fs.ReadFile(s.fsys, name+".yaml")
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}

	var doc map[string]templateBlock
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrTemplateNotFound, name, err)
	}
	if len(doc) != 1 {
		return "", fmt.Errorf("%w: %s: expected a single top-level key", ErrTemplateNotFound, name)
	}
	for _, block := range doc {
		tpl = block.Template
	}
	if strings.TrimSpace(tpl) == "" {
		return "", fmt.Errorf("%w: %s: empty template body", ErrTemplateNotFound, name)
	}

	s.mu.Lock()
	s.templates[name] = tpl
	s.mu.Unlock()
	return tpl, nil
}

// Render loads the named template and replaces every {key} placeholder with
// its value. String values are substituted verbatim; everything else is
// JSON-encoded first.
func (s *Store) Render(name string, vars map[string]any) (string, error) {
	tpl, err := s.Load(name)
	if err != nil {
		return "", err
	}
	for key, value := range vars {
		text, ok := value.(string)
		if !ok {
			encoded, err := json.Marshal(value)
			if err != nil {
				return "", fmt.Errorf("render %s: encode %s: %w", name, key, err)
			}
			text = string(encoded)
		}
		tpl = strings.ReplaceAll(tpl, "{"+key+"}", text)
	}
	return tpl, nil
}
