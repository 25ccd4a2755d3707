package filesystem

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrMalformedFrontmatter is returned when a document's metadata block
// cannot be parsed.
var ErrMalformedFrontmatter = errors.New("malformed frontmatter")

type frontmatterFormat int

const (
	formatNone frontmatterFormat = iota
	formatYAML
	formatTOML
)

const (
	yamlDelim = "---"
	tomlDelim = "+++"
)

// frontmatter is a parsed metadata block plus the body that follows it.
// YAML blocks are kept as a node tree so that unrelated keys, their order
// and comments survive a rewrite.
type frontmatter struct {
	format frontmatterFormat
	yaml   *yaml.Node // mapping node, formatYAML only
	toml   map[string]any
	body   string
}

// parseFrontmatter splits content into its metadata block and body.
// Expected formats:
//
//	---          +++
//	<YAML>       <TOML>
//	---          +++
//	<body>       <body>
//
// Content without a leading delimiter has no metadata.
func parseFrontmatter(content string) (*frontmatter, error) {
	lines := strings.SplitAfter(content, "\n")
	if len(lines) == 0 {
		return &frontmatter{body: content}, nil
	}

	var format frontmatterFormat
	var delim string
	switch strings.TrimRight(lines[0], " \t\r\n") {
	case yamlDelim:
		format, delim = formatYAML, yamlDelim
	case tomlDelim:
		format, delim = formatTOML, tomlDelim
	default:
		return &frontmatter{body: content}, nil
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], " \t\r\n") == delim {
			end = i
			break
		}
	}
	if end < 0 {
		// An unterminated delimiter is a thematic break, not metadata.
		return &frontmatter{body: content}, nil
	}

	raw := strings.Join(lines[1:end], "")
	fm := &frontmatter{format: format, body: strings.Join(lines[end+1:], "")}

	switch format {
	case formatYAML:
		var doc yaml.Node
		if err := yaml.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedFrontmatter, err)
		}
		switch {
		case doc.Kind == 0:
			fm.yaml = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		case doc.Kind == yaml.DocumentNode && len(doc.Content) == 1 && doc.Content[0].Kind == yaml.MappingNode:
			fm.yaml = doc.Content[0]
		default:
			return nil, fmt.Errorf("%w: not a mapping", ErrMalformedFrontmatter)
		}
	case formatTOML:
		fm.toml = make(map[string]any)
		if err := toml.Unmarshal([]byte(raw), &fm.toml); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedFrontmatter, err)
		}
	}
	return fm, nil
}

// get returns the decoded value of key.
func (fm *frontmatter) get(key string) (any, bool, error) {
	switch fm.format {
	case formatYAML:
		i := fm.yamlIndex(key)
		if i < 0 {
			return nil, false, nil
		}
		node := fm.yaml.Content[i+1]
		if link, ok := flowLink(node); ok {
			return link, true, nil
		}
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, false, fmt.Errorf("%w: %s: %v", ErrMalformedFrontmatter, key, err)
		}
		return v, true, nil
	case formatTOML:
		v, ok := fm.toml[key]
		return v, ok, nil
	default:
		return nil, false, nil
	}
}

// set stores a string value under key, creating a YAML block when the
// document has none.
func (fm *frontmatter) set(key, value string) {
	switch fm.format {
	case formatTOML:
		fm.toml[key] = value
		return
	case formatNone:
		fm.format = formatYAML
		fm.yaml = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	}

	scalar := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value, Style: yaml.DoubleQuotedStyle}
	if i := fm.yamlIndex(key); i >= 0 {
		fm.yaml.Content[i+1] = scalar
		return
	}
	fm.yaml.Content = append(fm.yaml.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		scalar,
	)
}

// remove deletes key and reports whether it was present.
func (fm *frontmatter) remove(key string) bool {
	switch fm.format {
	case formatYAML:
		i := fm.yamlIndex(key)
		if i < 0 {
			return false
		}
		fm.yaml.Content = append(fm.yaml.Content[:i], fm.yaml.Content[i+2:]...)
		return true
	case formatTOML:
		if _, ok := fm.toml[key]; !ok {
			return false
		}
		delete(fm.toml, key)
		return true
	default:
		return false
	}
}

// rename moves the value of from to to, replacing any existing to.
func (fm *frontmatter) rename(from, to string) bool {
	switch fm.format {
	case formatYAML:
		i := fm.yamlIndex(from)
		if i < 0 {
			return false
		}
		if j := fm.yamlIndex(to); j >= 0 {
			fm.yaml.Content = append(fm.yaml.Content[:j], fm.yaml.Content[j+2:]...)
			i = fm.yamlIndex(from)
		}
		fm.yaml.Content[i].Value = to
		return true
	case formatTOML:
		v, ok := fm.toml[from]
		if !ok {
			return false
		}
		delete(fm.toml, from)
		fm.toml[to] = v
		return true
	default:
		return false
	}
}

// render serializes the block and body back into document content. An
// emptied block is dropped.
func (fm *frontmatter) render() (string, error) {
	var buf bytes.Buffer
	switch fm.format {
	case formatYAML:
		if len(fm.yaml.Content) == 0 {
			return fm.body, nil
		}
		buf.WriteString(yamlDelim + "\n")
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(fm.yaml); err != nil {
			return "", fmt.Errorf("encode yaml frontmatter: %w", err)
		}
		if err := enc.Close(); err != nil {
			return "", fmt.Errorf("encode yaml frontmatter: %w", err)
		}
		buf.WriteString(yamlDelim + "\n")
	case formatTOML:
		if len(fm.toml) == 0 {
			return fm.body, nil
		}
		data, err := toml.Marshal(fm.toml)
		if err != nil {
			return "", fmt.Errorf("encode toml frontmatter: %w", err)
		}
		buf.WriteString(tomlDelim + "\n")
		buf.Write(data)
		buf.WriteString(tomlDelim + "\n")
	}
	buf.WriteString(fm.body)
	return buf.String(), nil
}

func (fm *frontmatter) yamlIndex(key string) int {
	for i := 0; i+1 < len(fm.yaml.Content); i += 2 {
		if fm.yaml.Content[i].Value == key {
			return i
		}
	}
	return -1
}

// flowLink recognizes an unquoted [[target]] value, which YAML reads as a
// list holding a one-element list, and returns it as link text.
func flowLink(node *yaml.Node) (string, bool) {
	if node.Kind != yaml.SequenceNode || node.Style != yaml.FlowStyle || len(node.Content) != 1 {
		return "", false
	}
	inner := node.Content[0]
	if inner.Kind != yaml.SequenceNode || len(inner.Content) != 1 || inner.Content[0].Kind != yaml.ScalarNode {
		return "", false
	}
	return "[[" + inner.Content[0].Value + "]]", true
}
