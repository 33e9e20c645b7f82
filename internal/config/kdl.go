package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// kdlFileName is the KDL config file flatintern looks for in a project
// root, mirroring the teacher's .lci.kdl convention.
const kdlFileName = ".flatintern.kdl"

// LoadKDL loads projectRoot/.flatintern.kdl. It returns (nil, nil) when the
// file does not exist, letting callers fall back to Default or LoadTOML.
func LoadKDL(projectRoot string) (*Config, error) {
	path := filepath.Join(projectRoot, kdlFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	doc, err := kdl.Parse(strings.NewReader(string(content)))
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "max_line_count":
			if v, ok := firstIntArg(n); ok {
				cfg.MaxLineCount = v
			}
		case "max_cell_count":
			if v, ok := firstIntArg(n); ok {
				cfg.MaxCellCount = v
			}
		case "read_buffer_size":
			if v, ok := firstIntArg(n); ok {
				cfg.ReadBufferSize = v
			}
		case "include":
			cfg.Include = collectStringArgs(n)
		case "exclude":
			cfg.Exclude = collectStringArgs(n)
		}
	}

	return &cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}
