package templates

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// #region store

// Store is the immutable, ordered set of response templates. The position of
// a template is its action index.
type Store struct {
	templates []Template
	byAct     map[string]int
}

// NewStore builds a store. Actions must be unique and non-empty.
func NewStore(tmpls []Template) (*Store, error) {
	if len(tmpls) == 0 {
		return nil, errors.New("template set is empty")
	}
	s := &Store{
		templates: make([]Template, len(tmpls)),
		byAct:     make(map[string]int, len(tmpls)),
	}
	for i, t := range tmpls {
		if t.Act == "" {
			return nil, fmt.Errorf("template %d: empty action", i)
		}
		if _, dup := s.byAct[t.Act]; dup {
			return nil, fmt.Errorf("template %d: duplicate action %q", i, t.Act)
		}
		if t.slots == nil {
			t = NewTemplate(t.Act, t.Text, t.Default)
		}
		s.templates[i] = t
		s.byAct[t.Act] = i
	}
	return s, nil
}

// Len returns the number of templates (== number of actions).
func (s *Store) Len() int {
	return len(s.templates)
}

// Actions returns the action labels in index order.
func (s *Store) Actions() []string {
	acts := make([]string, len(s.templates))
	for i, t := range s.templates {
		acts[i] = t.Act
	}
	return acts
}

// Index returns the position of act.
func (s *Store) Index(act string) (int, bool) {
	i, ok := s.byAct[act]
	return i, ok
}

// At returns the template at position i. Callers check bounds.
func (s *Store) At(i int) Template {
	return s.templates[i]
}

// #endregion store

// #region load

type yamlTemplate struct {
	Act     string `yaml:"act"`
	Text    string `yaml:"text"`
	Default string `yaml:"default"`
}

// Load reads a template set. Files ending in .yaml/.yml hold a list of
// {act, text, default} entries; anything else is tab-separated
// "act<TAB>text[<TAB>default]" lines.
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open templates %s: %w", path, err)
	}
	defer f.Close()

	var tmpls []Template
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		tmpls, err = parseYAML(f)
	default:
		tmpls, err = parseTSV(f)
	}
	if err != nil {
		return nil, fmt.Errorf("parse templates %s: %w", path, err)
	}

	s, err := NewStore(tmpls)
	if err != nil {
		return nil, fmt.Errorf("templates %s: %w", path, err)
	}
	return s, nil
}

func parseYAML(r io.Reader) ([]Template, error) {
	var entries []yamlTemplate
	if err := yaml.NewDecoder(r).Decode(&entries); err != nil {
		return nil, err
	}
	tmpls := make([]Template, len(entries))
	for i, e := range entries {
		tmpls[i] = NewTemplate(e.Act, e.Text, e.Default)
	}
	return tmpls, nil
}

func parseTSV(r io.Reader) ([]Template, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var tmpls []Template
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) == 0 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if len(rec) < 2 {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: expected act<TAB>text", line)
		}
		var def string
		if len(rec) > 2 {
			def = strings.TrimSpace(rec[2])
		}
		tmpls = append(tmpls, NewTemplate(strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1]), def))
	}
	return tmpls, nil
}

// #endregion load
