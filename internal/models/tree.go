package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// EntryKind tells a subdirectory apart from a file list.
type EntryKind int

const (
	DirEntry EntryKind = iota
	FileListEntry
)

// Entry is one named node of a structure tree. A DirEntry carries Children,
// a FileListEntry carries Files. Never both.
type Entry struct {
	Name     string
	Kind     EntryKind
	Children Tree
	Files    []string
}

// Tree is an ordered mapping from path segment to Entry. Document key order
// is preserved through decoding and encoding.
type Tree []Entry

// NewDir builds a directory entry.
func NewDir(name string, children ...Entry) Entry {
	return Entry{Name: name, Kind: DirEntry, Children: Tree(children)}
}

// NewFileList builds a file-list entry.
func NewFileList(name string, files ...string) Entry {
	return Entry{Name: name, Kind: FileListEntry, Files: files}
}

// TreeError reports a structure node that is neither a mapping nor a list of
// file names.
type TreeError struct {
	Path   string
	Reason string
}

func (e *TreeError) Error() string {
	if e.Path == "" {
		return "structure: " + e.Reason
	}
	return fmt.Sprintf("structure.%s: %s", e.Path, e.Reason)
}

func (e *TreeError) Is(target error) bool {
	return target == ErrParse
}

// Lookup resolves a slash-delimited path.
func (t Tree) Lookup(path string) (*Entry, bool) {
	parts := strings.Split(path, "/")
	current := t
	var found *Entry

	for i, part := range parts {
		idx := current.index(part)
		if idx < 0 {
			return nil, false
		}
		found = &current[idx]
		if i < len(parts)-1 {
			if found.Kind != DirEntry {
				return nil, false
			}
			current = found.Children
		}
	}

	return found, found != nil
}

// Has reports whether a slash-delimited path names a node in the tree.
func (t Tree) Has(path string) bool {
	_, ok := t.Lookup(path)
	return ok
}

// TopLevel lists the names of the top-level entries.
func (t Tree) TopLevel() []string {
	names := make([]string, 0, len(t))
	for _, e := range t {
		names = append(names, e.Name)
	}
	return names
}

// FilesAt returns the files stored at path. For a directory node it returns
// the files of its list-valued children only, one level deep.
func (t Tree) FilesAt(path string) []string {
	entry, ok := t.Lookup(path)
	if !ok {
		return []string{}
	}

	if entry.Kind == FileListEntry {
		return append([]string{}, entry.Files...)
	}

	files := []string{}
	for _, child := range entry.Children {
		if child.Kind == FileListEntry {
			files = append(files, child.Files...)
		}
	}
	return files
}

// Directories enumerates every node path, parents before children.
func (t Tree) Directories() []string {
	dirs := []string{}
	t.walk("", func(path string, e *Entry) {
		dirs = append(dirs, path)
	})
	return dirs
}

// FilesByDirectory maps every file-list path to its files.
func (t Tree) FilesByDirectory() map[string][]string {
	files := make(map[string][]string)
	t.walk("", func(path string, e *Entry) {
		if e.Kind == FileListEntry {
			files[path] = append([]string{}, e.Files...)
		}
	})
	return files
}

// Clone returns a deep copy.
func (t Tree) Clone() Tree {
	if t == nil {
		return nil
	}
	out := make(Tree, len(t))
	for i, e := range t {
		out[i] = Entry{Name: e.Name, Kind: e.Kind}
		if e.Files != nil {
			out[i].Files = append([]string{}, e.Files...)
		}
		out[i].Children = e.Children.Clone()
	}
	return out
}

func (t Tree) walk(prefix string, fn func(path string, e *Entry)) {
	for i := range t {
		e := &t[i]
		path := e.Name
		if prefix != "" {
			path = prefix + "/" + e.Name
		}
		fn(path, e)
		if e.Kind == DirEntry {
			e.Children.walk(path, fn)
		}
	}
}

func (t Tree) index(name string) int {
	for i, e := range t {
		if e.Name == name {
			return i
		}
	}
	return -1
}

// set keeps the position of the first occurrence and the value of the last.
func (t Tree) set(e Entry) Tree {
	if idx := t.index(e.Name); idx >= 0 {
		t[idx] = e
		return t
	}
	return append(t, e)
}

// ToMap converts the tree to plain nested maps and string slices.
func (t Tree) ToMap() map[string]any {
	out := make(map[string]any, len(t))
	for _, e := range t {
		if e.Kind == FileListEntry {
			files := make([]any, len(e.Files))
			for i, f := range e.Files {
				files[i] = f
			}
			out[e.Name] = files
		} else {
			out[e.Name] = e.Children.ToMap()
		}
	}
	return out
}

// MarshalJSON writes entries in tree order.
func (t Tree) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, e := range t {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		var value []byte
		if e.Kind == FileListEntry {
			files := e.Files
			if files == nil {
				files = []string{}
			}
			value, err = json.Marshal(files)
		} else {
			value, err = e.Children.MarshalJSON()
		}
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object while keeping key order.
func (t *Tree) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return &TreeError{Reason: "must be an object"}
	}

	tree, err := decodeObject(dec, "")
	if err != nil {
		return err
	}
	*t = tree
	return nil
}

// decodeObject reads members up to and including the closing brace.
func decodeObject(dec *json.Decoder, path string) (Tree, error) {
	var tree Tree

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, &TreeError{Path: path, Reason: "expected a key"}
		}

		entry, err := decodeEntry(dec, name, joinTreePath(path, name))
		if err != nil {
			return nil, err
		}
		tree = tree.set(entry)
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return tree, nil
}

func decodeEntry(dec *json.Decoder, name, path string) (Entry, error) {
	tok, err := dec.Token()
	if err != nil {
		return Entry{}, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return Entry{}, &TreeError{Path: path, Reason: "must be an object or a list of file names"}
	}

	switch delim {
	case '{':
		children, err := decodeObject(dec, path)
		if err != nil {
			return Entry{}, err
		}
		return Entry{Name: name, Kind: DirEntry, Children: children}, nil

	case '[':
		var files []string
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return Entry{}, err
			}
			file, ok := tok.(string)
			if !ok {
				return Entry{}, &TreeError{
					Path:   fmt.Sprintf("%s[%d]", path, len(files)),
					Reason: "file names must be strings",
				}
			}
			files = append(files, file)
		}
		if _, err := dec.Token(); err != nil {
			return Entry{}, err
		}
		return Entry{Name: name, Kind: FileListEntry, Files: files}, nil
	}

	return Entry{}, &TreeError{Path: path, Reason: "must be an object or a list of file names"}
}

// MarshalYAML emits an ordered mapping node.
func (t Tree) MarshalYAML() (interface{}, error) {
	return t.yamlNode(), nil
}

func (t Tree) yamlNode() *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

	for _, e := range t {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Name}

		var value *yaml.Node
		if e.Kind == FileListEntry {
			value = &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
			for _, f := range e.Files {
				value.Content = append(value.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f})
			}
		} else {
			value = e.Children.yamlNode()
		}

		node.Content = append(node.Content, key, value)
	}

	return node
}

// UnmarshalYAML decodes a mapping node while keeping key order.
func (t *Tree) UnmarshalYAML(value *yaml.Node) error {
	tree, err := decodeYAMLMapping(value, "")
	if err != nil {
		return err
	}
	*t = tree
	return nil
}

func decodeYAMLMapping(node *yaml.Node, path string) (Tree, error) {
	node = resolveAlias(node)
	if node.Kind != yaml.MappingNode {
		return nil, &TreeError{Path: path, Reason: "must be an object"}
	}

	var tree Tree
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := resolveAlias(node.Content[i]).Value
		childPath := joinTreePath(path, name)
		value := resolveAlias(node.Content[i+1])

		switch value.Kind {
		case yaml.MappingNode:
			children, err := decodeYAMLMapping(value, childPath)
			if err != nil {
				return nil, err
			}
			tree = tree.set(Entry{Name: name, Kind: DirEntry, Children: children})

		case yaml.SequenceNode:
			var files []string
			for j, item := range value.Content {
				item = resolveAlias(item)
				if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
					return nil, &TreeError{
						Path:   fmt.Sprintf("%s[%d]", childPath, j),
						Reason: "file names must be strings",
					}
				}
				files = append(files, item.Value)
			}
			tree = tree.set(Entry{Name: name, Kind: FileListEntry, Files: files})

		default:
			return nil, &TreeError{Path: childPath, Reason: "must be an object or a list of file names"}
		}
	}

	return tree, nil
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

func joinTreePath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
