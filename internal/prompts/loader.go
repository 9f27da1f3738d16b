// Package prompts holds the embedded extraction prompt templates and the
// builder that assembles framework-aware pass prompts from them.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"sync"
)

//go:embed *.json
var templateFiles embed.FS

// ExtractionFile is the template set used by every extraction pass
const ExtractionFile = "extraction.json"

// templateSet is one parsed template file: key to template text
type templateSet struct {
	file    string
	entries map[string]string
}

func (s *templateSet) lookup(key string) (string, error) {
	text, ok := s.entries[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, s.file)
	}
	return text, nil
}

func (s *templateSet) keys() []string {
	out := make([]string, 0, len(s.entries))
	for k := range s.entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// parsed template sets by file name; files are embedded so a set never changes
var sets sync.Map

func loadSet(file string) (*templateSet, error) {
	if s, ok := sets.Load(file); ok {
		return s.(*templateSet), nil
	}
	raw, err := templateFiles.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", file, err)
	}
	set := &templateSet{file: file}
	if err := json.Unmarshal(raw, &set.entries); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", file, err)
	}
	actual, _ := sets.LoadOrStore(file, set)
	return actual.(*templateSet), nil
}

func resetSets() {
	sets.Clear()
}

// Get returns the template stored under key in file
func Get(file, key string) (string, error) {
	set, err := loadSet(file)
	if err != nil {
		return "", err
	}
	return set.lookup(key)
}

// MustGet is Get for templates the builder cannot work without
func MustGet(file, key string) string {
	text, err := Get(file, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return text
}

// List returns the template keys of file in order
func List(file string) ([]string, error) {
	set, err := loadSet(file)
	if err != nil {
		return nil, err
	}
	return set.keys(), nil
}

// Version labels the extraction template set; it is stored with every session
// and captured response.
func Version() string {
	v, err := Get(ExtractionFile, "version")
	if err != nil {
		return "unknown"
	}
	return v
}

var placeholder = regexp.MustCompile(`\{\{\.([A-Za-z0-9_]+)\}\}`)

// Format fills {{.Name}} placeholders from values. Placeholders without a value
// are left in place.
func Format(template string, values map[string]string) string {
	return placeholder.ReplaceAllStringFunc(template, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		if v, ok := values[name]; ok {
			return v
		}
		return m
	})
}
