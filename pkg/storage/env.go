package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// varPattern matches {{VAR_NAME}} or {{env:VAR_NAME}}
var varPattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// LoadEnvironment reads environments/<name>.yaml (or .yml) under baseDir.
func LoadEnvironment(baseDir, name string) (*Environment, error) {
	var data []byte
	var err error
	for _, ext := range []string{".yaml", ".yml"} {
		path, perr := ConfinePath(filepath.Join(environmentsDir, name+ext), baseDir)
		if perr != nil {
			return nil, perr
		}
		data, err = os.ReadFile(path)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read environment %q: %w", name, err)
	}

	vars := make(map[string]string)
	if err := yaml.Unmarshal(data, &vars); err != nil {
		return nil, fmt.Errorf("failed to parse environment %q: %w", name, err)
	}
	for key, value := range vars {
		vars[key] = resolveEnvRefs(value)
	}

	return &Environment{Name: name, Variables: vars}, nil
}

// SaveEnvironment writes env to environments/<name>.yaml under baseDir.
func SaveEnvironment(baseDir string, env *Environment) error {
	path, err := ConfinePath(filepath.Join(environmentsDir, env.Name+".yaml"), baseDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := yaml.Marshal(env.Variables)
	if err != nil {
		return fmt.Errorf("failed to marshal environment: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ListEnvironments returns the environment names found under baseDir, sorted.
func ListEnvironments(baseDir string) ([]string, error) {
	return listYAML(GetEnvironmentsDir(baseDir))
}

// Substitute replaces {{VAR}} with the environment's value and {{env:VAR}}
// with the process environment. Unknown names are left in place.
func (e *Environment) Substitute(text string) string {
	var vars map[string]string
	if e != nil {
		vars = e.Variables
	}
	return varPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := strings.TrimSpace(match[2 : len(match)-2])
		if sysVar, ok := strings.CutPrefix(name, "env:"); ok {
			if val := os.Getenv(sysVar); val != "" {
				return val
			}
			return match
		}
		if val, ok := vars[name]; ok {
			return val
		}
		return match
	})
}

// Unresolved lists the {{VAR}} names still present in text.
func Unresolved(text string) []string {
	seen := make(map[string]bool)
	for _, m := range varPattern.FindAllStringSubmatch(text, -1) {
		seen[strings.TrimSpace(m[1])] = true
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Apply returns a copy of req with the environment substituted into the path,
// headers, query values and string leaves of the body.
func (e *Environment) Apply(req *Request) *Request {
	applied := &Request{
		Name:        req.Name,
		Description: req.Description,
		Method:      req.Method,
		Path:        e.Substitute(req.Path),
		Headers:     make(map[string]string, len(req.Headers)),
		Query:       make(map[string]string, len(req.Query)),
		Body:        e.substituteBody(req.Body),
	}
	for k, v := range req.Headers {
		applied.Headers[k] = e.Substitute(v)
	}
	for k, v := range req.Query {
		applied.Query[k] = e.Substitute(v)
	}
	return applied
}

func (e *Environment) substituteBody(body any) any {
	switch t := body.(type) {
	case string:
		return e.Substitute(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, v := range t {
			out[k] = e.substituteBody(v)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, v := range t {
			out[i] = e.substituteBody(v)
		}
		return out
	default:
		return body
	}
}

func resolveEnvRefs(text string) string {
	return varPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := strings.TrimSpace(match[2 : len(match)-2])
		if sysVar, ok := strings.CutPrefix(name, "env:"); ok {
			if val := os.Getenv(sysVar); val != "" {
				return val
			}
		}
		return match
	})
}
