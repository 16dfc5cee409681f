package script

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	swerrors "github.com/mrz1836/stepwire/internal/errors"
	"github.com/mrz1836/stepwire/internal/step"
)

// FileSteps is the YAML structure of a step file.
type FileSteps struct {
	Steps []FileStep `yaml:"steps"`
}

// FileStep is one step definition in a step file.
type FileStep struct {
	Pattern string      `yaml:"pattern"`
	Params  []FileParam `yaml:"params,omitempty"`
	// Timeout is the budget in milliseconds. Zero uses the registry
	// default; negative is unbounded.
	Timeout int    `yaml:"timeout,omitempty"`
	Body    string `yaml:"body"`

	location step.Location
}

// Location returns the file and line the step was declared at.
func (s FileStep) Location() step.Location {
	return s.location
}

// FileParam declares one step argument.
type FileParam struct {
	Type      string `yaml:"type"`
	Format    string `yaml:"format,omitempty"`
	Delimiter string `yaml:"delimiter,omitempty"`
	Transform string `yaml:"transform,omitempty"`
	Optional  bool   `yaml:"optional,omitempty"`
}

// Loader reads step files.
type Loader struct {
	basePath string
}

// NewLoader creates a loader. Relative paths are resolved against basePath.
func NewLoader(basePath string) *Loader {
	return &Loader{basePath: basePath}
}

// Files expands paths into step files. A directory contributes every .yaml
// and .yml file below it; other paths may be glob patterns. The result is
// sorted and free of duplicates.
func (l *Loader) Files(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, p := range paths {
		resolved := l.resolvePath(p)
		info, err := os.Stat(resolved)
		if err == nil && info.IsDir() {
			walkErr := filepath.WalkDir(resolved, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() && isStepFile(path) {
					add(path)
				}
				return nil
			})
			if walkErr != nil {
				return nil, swerrors.ConfigWrap(walkErr, "read step directory %s", resolved)
			}
			continue
		}

		matches, err := filepath.Glob(resolved)
		if err != nil {
			return nil, swerrors.ConfigWrap(err, "step path %q", p)
		}
		if len(matches) == 0 {
			return nil, swerrors.Configf("step path %q matches no files", p)
		}
		for _, m := range matches {
			add(m)
		}
	}

	sort.Strings(files)
	return files, nil
}

// LoadFile parses one step file. Each step records the line it starts on.
func (l *Loader) LoadFile(path string) ([]FileStep, error) {
	resolved := l.resolvePath(path)

	data, err := os.ReadFile(resolved) //nolint:gosec // Path comes from user config
	if err != nil {
		return nil, swerrors.ConfigWrap(err, "read step file %s", resolved)
	}
	return Parse(resolved, data)
}

// Parse decodes step file content. file is used for locations only.
func Parse(file string, data []byte) ([]FileStep, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, swerrors.ConfigWrap(err, "parse step file %s", file)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	seq, err := stepsNode(file, root.Content[0])
	if err != nil || seq == nil {
		return nil, err
	}

	steps := make([]FileStep, 0, len(seq.Content))
	for i, item := range seq.Content {
		var s FileStep
		if err := item.Decode(&s); err != nil {
			return nil, swerrors.ConfigWrap(err, "step %d in %s", i+1, file)
		}
		s.location = step.Location{File: file, Line: item.Line}
		if strings.TrimSpace(s.Pattern) == "" {
			return nil, swerrors.Configf("step at %s has no pattern", s.location)
		}
		if strings.TrimSpace(s.Body) == "" {
			return nil, swerrors.Configf("step at %s has no body", s.location)
		}
		steps = append(steps, s)
	}
	return steps, nil
}

// stepsNode locates the sequence under the top-level "steps" key.
func stepsNode(file string, doc *yaml.Node) (*yaml.Node, error) {
	if doc.Kind != yaml.MappingNode {
		return nil, swerrors.Configf("step file %s must be a mapping with a steps list", file)
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value != "steps" {
			continue
		}
		seq := doc.Content[i+1]
		if seq.Kind != yaml.SequenceNode {
			return nil, swerrors.Configf("steps in %s must be a list (line %d)", file, seq.Line)
		}
		return seq, nil
	}
	return nil, nil
}

// resolvePath resolves a path, supporting both absolute and relative paths.
func (l *Loader) resolvePath(path string) string {
	if filepath.IsAbs(path) || l.basePath == "" {
		return path
	}
	return filepath.Join(l.basePath, path)
}

func isStepFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// String summarizes the step for logs.
func (s FileStep) String() string {
	return fmt.Sprintf("%s (%s)", s.Pattern, s.location)
}
