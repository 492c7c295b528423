// Package source gives uniform read access to localization text stored in
// plain files or as members of zip and jar archives.
//
// Archives are opened and closed on every read; nothing is held open between
// calls. Within one translation job, Cache avoids reading the same member
// twice.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/klauspost/compress/zip"
)

var (
	// ErrContainerNotFound is returned when a plain file or archive is
	// missing or cannot be opened as an archive.
	ErrContainerNotFound = errors.New("container not found")
	// ErrMemberNotFound is returned when an archive has no member with the
	// requested name.
	ErrMemberNotFound = errors.New("member not found")
)

// MemberSeparator joins an archive path and a member name in textual
// locations, e.g. "mods/example.jar!assets/example/lang/en_us.json".
const MemberSeparator = "!"

// Location identifies a piece of localization text. Either Path is set, or
// both Container and Member are.
type Location struct {
	Path      string
	Container string
	Member    string
}

// Validate checks that exactly one addressing mode is used.
func (l Location) Validate() error {
	switch {
	case l.Path != "" && (l.Container != "" || l.Member != ""):
		return fmt.Errorf("location %q: both path and archive member set", l)
	case l.Path == "" && (l.Container == "" || l.Member == ""):
		return fmt.Errorf("location %q: need a path or an archive and a member", l)
	}
	return nil
}

// InArchive reports whether the location names an archive member.
func (l Location) InArchive() bool {
	return l.Container != ""
}

// Name returns the file name used for format detection.
func (l Location) Name() string {
	if l.InArchive() {
		return l.Member
	}
	return l.Path
}

func (l Location) String() string {
	if l.InArchive() {
		return l.Container + MemberSeparator + l.Member
	}
	return l.Path
}

// ParseLocation parses "file" or "archive.jar!member/path".
func ParseLocation(s string) (Location, error) {
	container, member, ok := strings.Cut(s, MemberSeparator)
	var loc Location
	if ok {
		loc = Location{Container: container, Member: strings.TrimPrefix(member, "/")}
	} else {
		loc = Location{Path: s}
	}
	return loc, loc.Validate()
}

// Source reads one piece of localization text.
type Source interface {
	// ReadText returns the full text.
	ReadText(ctx context.Context) (string, error)
	// Key identifies the text for caching.
	Key() string
}

// ForLocation returns the Source variant for loc: a plain file, a jar member
// (case-insensitive fallback) or a zip member (exact match only).
func ForLocation(loc Location) (Source, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	switch {
	case !loc.InArchive():
		return PlainFile{Path: loc.Path}, nil
	case strings.EqualFold(filepath.Ext(loc.Container), ".jar"):
		return JarMember{Archive: loc.Container, Member: loc.Member}, nil
	default:
		return ZipMember{Archive: loc.Container, Member: loc.Member}, nil
	}
}

// ---------------------------------------------------------------------------
// Variants
// ---------------------------------------------------------------------------

// PlainFile is a file on disk.
type PlainFile struct {
	Path string
}

func (p PlainFile) Key() string { return p.Path }

func (p PlainFile) ReadText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(p.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrContainerNotFound, p.Path)
		}
		return "", fmt.Errorf("reading %s: %w", p.Path, err)
	}
	return string(data), nil
}

// ZipMember is a member of a zip archive, matched by exact name.
type ZipMember struct {
	Archive string
	Member  string
}

func (z ZipMember) Key() string { return z.Archive + MemberSeparator + z.Member }

func (z ZipMember) ReadText(ctx context.Context) (string, error) {
	return readMember(ctx, z.Archive, z.Member, false)
}

// JarMember is a member of a jar archive. An exact name match is preferred;
// otherwise the first case-insensitive match is used.
type JarMember struct {
	Archive string
	Member  string
}

func (j JarMember) Key() string { return j.Archive + MemberSeparator + j.Member }

func (j JarMember) ReadText(ctx context.Context) (string, error) {
	return readMember(ctx, j.Archive, j.Member, true)
}

func readMember(ctx context.Context, archive, member string, foldCase bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	r, err := openArchive(archive)
	if err != nil {
		return "", err
	}
	defer r.Close()

	f := findMember(r.File, member, foldCase)
	if f == nil {
		return "", fmt.Errorf("%w: %s in %s", ErrMemberNotFound, member, archive)
	}

	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("opening %s in %s: %w", member, archive, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("reading %s in %s: %w", member, archive, err)
	}
	return string(data), nil
}

func openArchive(path string) (*zip.ReadCloser, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrContainerNotFound, path, err)
	}
	return r, nil
}

func findMember(files []*zip.File, name string, foldCase bool) *zip.File {
	for _, f := range files {
		if f.Name == name {
			return f
		}
	}
	if !foldCase {
		return nil
	}
	for _, f := range files {
		if strings.EqualFold(f.Name, name) {
			return f
		}
	}
	return nil
}

// ListMembers returns the names of all regular members of an archive,
// sorted.
func ListMembers(archive string) ([]string, error) {
	r, err := openArchive(archive)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names, nil
}

// IsArchive reports whether path has a zip or jar extension.
func IsArchive(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip", ".jar":
		return true
	}
	return false
}

// ---------------------------------------------------------------------------
// Cache
// ---------------------------------------------------------------------------

// Cache memoizes text by source key for the lifetime of one job. It is safe
// for concurrent use.
type Cache struct {
	mu    sync.Mutex
	texts map[string]string
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{texts: make(map[string]string)}
}

// Read returns cached text for src or reads and caches it. Errors are not
// cached.
func (c *Cache) Read(ctx context.Context, src Source) (string, error) {
	key := src.Key()

	c.mu.Lock()
	text, ok := c.texts[key]
	c.mu.Unlock()
	if ok {
		return text, nil
	}

	text, err := src.ReadText(ctx)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.texts[key] = text
	c.mu.Unlock()
	return text, nil
}

// Len returns the number of cached texts.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.texts)
}
