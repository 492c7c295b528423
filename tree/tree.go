// Package tree builds a browsable tree of localization files from a game
// directory, a single file, or a zip/jar archive.
//
// Directories and archives without any localization file below them are
// pruned. Archive members appear as nodes whose Location points into the
// archive.
package tree

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/minios-linux/mclocalizer/codec"
	"github.com/minios-linux/mclocalizer/source"
)

// Node is a directory, archive, archive folder or localization file.
type Node struct {
	Name     string
	Loc      source.Location
	File     bool
	Children []*Node
}

// IsLocalizationFile reports whether the node is a file with a supported
// extension.
func (n *Node) IsLocalizationFile() bool {
	return n.File && codec.IsLocalizationFile(n.Name)
}

// Walk calls fn for n and every descendant, depth first.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Files returns every localization file at or below n.
func (n *Node) Files() []*Node {
	var out []*Node
	n.Walk(func(c *Node) {
		if c.IsLocalizationFile() {
			out = append(out, c)
		}
	})
	return out
}

// Child returns the direct child with the given name, compared
// case-insensitively.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// MatchesLanguage reports whether a file name is the localization file of
// lang: "{lang}.json" or "{lang}.snbt" exactly, or any name ending in
// "{lang}.lang". Comparison ignores case.
func MatchesLanguage(name, lang string) bool {
	lower := strings.ToLower(name)
	lang = strings.ToLower(lang)
	return lower == lang+".json" ||
		lower == lang+".snbt" ||
		strings.HasSuffix(lower, lang+".lang")
}

// ---------------------------------------------------------------------------
// Scanning
// ---------------------------------------------------------------------------

// Scan builds the tree rooted at path.
func Scan(root string) (*Node, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	switch {
	case info.IsDir():
		n, err := scanDir(root)
		if err != nil {
			return nil, err
		}
		if n == nil {
			n = &Node{Name: filepath.Base(root), Loc: source.Location{Path: root}}
		}
		return n, nil
	case source.IsArchive(root):
		n, err := scanArchive(root)
		if err != nil {
			return nil, err
		}
		if n == nil {
			n = &Node{Name: filepath.Base(root), Loc: source.Location{Path: root}}
		}
		return n, nil
	default:
		return &Node{Name: filepath.Base(root), Loc: source.Location{Path: root}, File: true}, nil
	}
}

func scanDir(dir string) (*Node, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	n := &Node{Name: filepath.Base(dir), Loc: source.Location{Path: dir}}
	for _, e := range entries {
		p := filepath.Join(dir, e.Name())
		var child *Node
		switch {
		case e.IsDir():
			child, err = scanDir(p)
		case source.IsArchive(p):
			child, err = scanArchive(p)
		case codec.IsLocalizationFile(e.Name()):
			child = &Node{Name: e.Name(), Loc: source.Location{Path: p}, File: true}
		}
		if err != nil {
			return nil, err
		}
		if child != nil {
			n.Children = append(n.Children, child)
		}
	}

	if len(n.Children) == 0 {
		return nil, nil
	}
	return n, nil
}

// scanArchive lists the localization members of an archive. Unreadable
// archives are skipped rather than failing the whole scan.
func scanArchive(archive string) (*Node, error) {
	members, err := source.ListMembers(archive)
	if err != nil {
		return nil, nil
	}
	return FromMembers(archive, members), nil
}

// FromMembers builds the subtree of an archive from its member names. Only
// localization members are kept. It returns nil when there are none.
func FromMembers(archive string, members []string) *Node {
	root := &Node{Name: filepath.Base(archive), Loc: source.Location{Path: archive}}
	dirs := map[string]*Node{"": root}

	var dirFor func(prefix string) *Node
	dirFor = func(prefix string) *Node {
		if d, ok := dirs[prefix]; ok {
			return d
		}
		parent := dirFor(parentOf(prefix))
		d := &Node{
			Name: path.Base(prefix),
			Loc:  source.Location{Container: archive, Member: prefix + "/"},
		}
		parent.Children = append(parent.Children, d)
		dirs[prefix] = d
		return d
	}

	sorted := append([]string(nil), members...)
	sort.Strings(sorted)
	for _, m := range sorted {
		if strings.HasSuffix(m, "/") || !codec.IsLocalizationFile(m) {
			continue
		}
		parent := dirFor(parentOf(m))
		parent.Children = append(parent.Children, &Node{
			Name: path.Base(m),
			Loc:  source.Location{Container: archive, Member: m},
			File: true,
		})
	}

	if len(root.Children) == 0 {
		return nil
	}
	return root
}

func parentOf(member string) string {
	dir := path.Dir(member)
	if dir == "." {
		return ""
	}
	return dir
}

// ---------------------------------------------------------------------------
// Candidates
// ---------------------------------------------------------------------------

// Candidates returns the nodes below root that hold a file of lang directly
// or a folder named lang. The search does not descend into a node once it
// qualifies. A root that is itself a matching file is returned alone.
func Candidates(root *Node, lang string) []*Node {
	if root.File {
		if MatchesLanguage(root.Name, lang) {
			return []*Node{root}
		}
		return nil
	}

	var out []*Node
	var visit func(n *Node)
	visit = func(n *Node) {
		if qualifies(n, lang) {
			out = append(out, n)
			return
		}
		for _, c := range n.Children {
			if !c.File {
				visit(c)
			}
		}
	}
	visit(root)
	return out
}

func qualifies(n *Node, lang string) bool {
	for _, c := range n.Children {
		if c.IsLocalizationFile() && MatchesLanguage(c.Name, lang) {
			return true
		}
		if !c.File && strings.EqualFold(c.Name, lang) {
			return true
		}
	}
	return false
}
