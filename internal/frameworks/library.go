// Package frameworks resolves reference competency frameworks for a role and industry.
package frameworks

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/jonathan/career-extractor/internal/types"
	"gopkg.in/yaml.v3"
)

//go:embed frameworks.yaml
var embeddedFrameworks []byte

// Library is a read-only set of competency frameworks
type Library struct {
	frameworks []types.CompetencyFramework
}

type libraryFile struct {
	Frameworks []types.CompetencyFramework `yaml:"frameworks"`
}

var (
	defaultOnce    sync.Once
	defaultLibrary *Library
	defaultErr     error
)

// Default returns the library compiled into the binary
func Default() (*Library, error) {
	defaultOnce.Do(func() {
		defaultLibrary, defaultErr = ParseLibrary(embeddedFrameworks, "embedded")
	})
	return defaultLibrary, defaultErr
}

// MustDefault is like Default but panics if the embedded library is invalid
func MustDefault() *Library {
	lib, err := Default()
	if err != nil {
		panic(err)
	}
	return lib
}

// LoadLibrary reads a framework library from a YAML file
func LoadLibrary(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Source: path, Message: "read failed", Cause: err}
	}
	return ParseLibrary(data, path)
}

// ParseLibrary decodes and validates a YAML framework library
func ParseLibrary(data []byte, source string) (*Library, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &LoadError{Source: source, Message: "payload is empty"}
	}
	var file libraryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &LoadError{Source: source, Message: "decode failed", Cause: err}
	}
	for i, fw := range file.Frameworks {
		if strings.TrimSpace(fw.Role) == "" {
			return nil, &LoadError{Source: source, Message: fmt.Sprintf("framework %d has no role", i)}
		}
		for _, b := range fw.ManagementBenchmarks {
			if b.Min > b.Max {
				return nil, &LoadError{Source: source, Message: fmt.Sprintf("%s: benchmark %s has min > max", fw.Role, b.Aspect)}
			}
		}
	}
	return &Library{frameworks: file.Frameworks}, nil
}

// List returns a copy of the frameworks in the library
func (l *Library) List() []types.CompetencyFramework {
	out := make([]types.CompetencyFramework, len(l.frameworks))
	copy(out, l.frameworks)
	return out
}

// Len returns the number of frameworks
func (l *Library) Len() int {
	return len(l.frameworks)
}
