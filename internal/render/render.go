// Package render substitutes {name} placeholders in file content.
package render

import (
	"sort"
	"strings"
)

// Renderer replaces {name} placeholders with values from a fixed variable
// set. Placeholders without a matching variable are left as they are.
type Renderer struct {
	replacer *strings.Replacer
	empty    bool
}

// New builds a Renderer for vars.
func New(vars map[string]string) *Renderer {
	if len(vars) == 0 {
		return &Renderer{empty: true}
	}

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names)*2)
	for _, name := range names {
		pairs = append(pairs, "{"+name+"}", vars[name])
	}

	return &Renderer{replacer: strings.NewReplacer(pairs...)}
}

// Render substitutes placeholders in content.
func (r *Renderer) Render(content string) string {
	if r.empty {
		return content
	}
	return r.replacer.Replace(content)
}

// Render is a one-off substitution.
func Render(content string, vars map[string]string) string {
	return New(vars).Render(content)
}

// Placeholders lists the distinct placeholder names in content, in order of
// first appearance. A name is any run of letters, digits, '_', '-' or '.'.
func Placeholders(content string) []string {
	names := []string{}
	seen := make(map[string]bool)

	for {
		start := strings.IndexByte(content, '{')
		if start < 0 {
			return names
		}
		content = content[start+1:]

		end := strings.IndexByte(content, '}')
		if end < 0 {
			return names
		}

		name := content[:end]
		if isName(name) {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
			content = content[end+1:]
		}
	}
}

func isName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_', r == '-', r == '.':
		default:
			return false
		}
	}
	return true
}
