package tui

import (
	"fmt"
	"sort"

	"github.com/robert-malhotra/go-nwb/hdf5"
)

// NodeKind distinguishes tree entries.
type NodeKind int

const (
	GroupNode NodeKind = iota
	DatasetNode
)

// Node is one entry in the container tree. Children are loaded once, when the
// tree is built, so navigation never touches the file.
type Node struct {
	Name     string
	Path     string
	Kind     NodeKind
	Shape    []uint64
	Attrs    []string // "name = value" lines, sorted by name
	Children []*Node

	expanded bool
}

const maxTreeDepth = 20

// BuildTree walks the container and returns its tree. Unreadable members
// become leaf nodes so the rest of the file stays browsable.
func BuildTree(f *hdf5.File) (*Node, error) {
	root := f.Root()
	node, err := buildGroup(root, "/", 0)
	if err != nil {
		return nil, err
	}
	node.expanded = true
	return node, nil
}

func buildGroup(g *hdf5.Group, name string, depth int) (*Node, error) {
	node := &Node{
		Name:  name,
		Path:  g.Path(),
		Kind:  GroupNode,
		Attrs: formatAttrs(g.Attrs(), func(n string) (interface{}, error) { return g.Attr(n).Value() }),
	}
	if depth >= maxTreeDepth {
		return node, nil
	}

	members, err := g.Members()
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", g.Path(), err)
	}
	for _, member := range members {
		if sub, err := g.OpenGroup(member); err == nil {
			child, err := buildGroup(sub, member, depth+1)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)
			continue
		}
		if ds, err := g.OpenDataset(member); err == nil {
			node.Children = append(node.Children, &Node{
				Name:  member,
				Path:  ds.Path(),
				Kind:  DatasetNode,
				Shape: ds.Shape(),
				Attrs: formatAttrs(ds.Attrs(), func(n string) (interface{}, error) { return ds.Attr(n).Value() }),
			})
			continue
		}
		node.Children = append(node.Children, &Node{
			Name: member + " (unreadable)",
			Kind: DatasetNode,
		})
	}
	return node, nil
}

func formatAttrs(names []string, value func(string) (interface{}, error)) []string {
	lines := make([]string, 0, len(names))
	for _, name := range names {
		v, err := value(name)
		if err != nil {
			lines = append(lines, fmt.Sprintf("%s = <unreadable: %v>", name, err))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s = %v", name, v))
	}
	sort.Strings(lines)
	return lines
}

// flatten returns the visible nodes in display order with their depths.
func flatten(root *Node) []row {
	var rows []row
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		rows = append(rows, row{node: n, depth: depth})
		if n.expanded {
			for _, c := range n.Children {
				walk(c, depth+1)
			}
		}
	}
	walk(root, 0)
	return rows
}

type row struct {
	node  *Node
	depth int
}
