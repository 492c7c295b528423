// Package resourcepack decides where translated files go and writes them,
// either into the MinecraftLocalizer resource pack zip or as plain files
// inside the game directory.
package resourcepack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/minios-linux/mclocalizer/codec"
	"github.com/minios-linux/mclocalizer/content"
	"github.com/minios-linux/mclocalizer/source"
)

// DefaultPackName is the resource pack file created under resourcepacks/.
const DefaultPackName = "MinecraftLocalizer.zip"

// MetaMember is the pack metadata member written once per pack.
const MetaMember = "pack.mcmeta"

// ErrNoLocaleSegment is returned in patchouli mode when the target path has
// no locale folder to replace.
var ErrNoLocaleSegment = errors.New("no locale segment in path")

var localeSegmentRe = regexp.MustCompile(`(?i)^[a-z]{2}_[a-z]{2}$`)

// ---------------------------------------------------------------------------
// Modes
// ---------------------------------------------------------------------------

// Mode selects the save layout.
type Mode string

const (
	ModeMods           Mode = "mods"
	ModeQuests         Mode = "quests"
	ModeBetterQuesting Mode = "betterquesting"
	ModePatchouli      Mode = "patchouli"
	ModeFile           Mode = "file"
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeMods, ModeQuests, ModeBetterQuesting, ModePatchouli, ModeFile}

// ParseMode parses a mode name case-insensitively.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if strings.EqualFold(s, string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mode %q (want one of %s)", s, modeList())
}

func modeList() string {
	names := make([]string, len(Modes))
	for i, m := range Modes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

// ---------------------------------------------------------------------------
// Destinations
// ---------------------------------------------------------------------------

// Destination is where one translated target is written. Exactly one of
// PackMember and Path is set.
type Destination struct {
	// PackMember is the member name inside the resource pack.
	PackMember string
	// Path is a plain file path.
	Path string
	// Format is the output format, taken from the target's extension.
	Format content.Format
	// PreserveComments keeps lang header comments.
	PreserveComments bool
}

func (d Destination) String() string {
	if d.PackMember != "" {
		return d.PackMember
	}
	return d.Path
}

// Resolve maps a source-language target to its output location for lang.
//
//	mods            pack: dir(member)/{lang}{ext}
//	betterquesting  pack: assets/betterquesting/lang/{lang}{ext}, comments kept
//	patchouli       pack: member with its first xx_yy segment replaced by lang
//	quests          file: kubejs/assets/kubejs/lang/{lang}.json for JSON,
//	                      config/ftbquests/quests/lang/{lang}.{ext} otherwise
//	file            file: next to the source, {lang}{ext}
//
// Every quest file maps to the single {lang} file of its format, wherever it
// was found.
func Resolve(mode Mode, gameDir string, target source.Location, lang string) (Destination, error) {
	if err := target.Validate(); err != nil {
		return Destination{}, err
	}
	format, err := codec.DetectFormat(target.Name())
	if err != nil {
		return Destination{}, err
	}
	ext := format.Ext()
	member := memberPath(gameDir, target)

	switch mode {
	case ModeMods:
		return Destination{PackMember: joinMember(path.Dir(member), lang+ext), Format: format}, nil

	case ModeBetterQuesting:
		return Destination{
			PackMember:       "assets/betterquesting/lang/" + lang + ext,
			Format:           format,
			PreserveComments: true,
		}, nil

	case ModePatchouli:
		parts := strings.Split(member, "/")
		for i, p := range parts {
			if localeSegmentRe.MatchString(p) {
				parts[i] = lang
				return Destination{PackMember: strings.Join(parts, "/"), Format: format}, nil
			}
		}
		return Destination{}, fmt.Errorf("%w: %s", ErrNoLocaleSegment, member)

	case ModeQuests:
		base := filepath.Join(gameDir, "config", "ftbquests", "quests", "lang")
		if format == content.FormatJSON {
			base = filepath.Join(gameDir, "kubejs", "assets", "kubejs", "lang")
		}
		return Destination{Path: filepath.Join(base, lang+ext), Format: format}, nil

	case ModeFile:
		if target.InArchive() {
			return Resolve(ModeMods, gameDir, target, lang)
		}
		return Destination{Path: filepath.Join(filepath.Dir(target.Path), lang+ext), Format: format}, nil
	}

	return Destination{}, fmt.Errorf("unknown mode %q", mode)
}

// ScanRoots returns the directories searched for source files in mode.
// ModeFile has none; its paths come from the user.
func ScanRoots(mode Mode, gameDir string) []string {
	switch mode {
	case ModeMods, ModePatchouli:
		return []string{filepath.Join(gameDir, "mods")}
	case ModeQuests:
		return []string{
			filepath.Join(gameDir, "kubejs", "assets", "kubejs", "lang"),
			filepath.Join(gameDir, "config", "ftbquests", "quests", "lang"),
		}
	case ModeBetterQuesting:
		return []string{filepath.Join(gameDir, "resources", "betterquesting", "lang")}
	}
	return nil
}

// Accepts reports whether a candidate found while scanning belongs to mode.
// Patchouli books live under assets/<mod>/patchouli_books/ and are only
// translated in patchouli mode; every other mode skips them.
func Accepts(mode Mode, loc source.Location) bool {
	book := strings.Contains("/"+filepath.ToSlash(loc.Name())+"/", "/patchouli_books/")
	if mode == ModePatchouli {
		return book
	}
	return !book
}

// memberPath returns the slash-separated path used for layout decisions:
// the archive member, or the file path relative to the game directory.
func memberPath(gameDir string, target source.Location) string {
	if target.InArchive() {
		return strings.TrimPrefix(target.Member, "/")
	}
	if gameDir != "" {
		if rel, err := filepath.Rel(gameDir, target.Path); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(target.Path)
}

func joinMember(dir, name string) string {
	if dir == "." || dir == "" || dir == "/" {
		return name
	}
	return dir + "/" + name
}

// ---------------------------------------------------------------------------
// Writer
// ---------------------------------------------------------------------------

// Writer saves translated documents for one game directory and language.
// It is safe for concurrent use.
type Writer struct {
	GameDir  string
	PackName string
	Lang     string
	Mode     Mode
	// Options controls encoding; PreserveComments is overridden per
	// destination.
	Options codec.Options

	mu sync.Mutex
}

// NewWriter returns a writer with the default pack name and codec options.
func NewWriter(gameDir, lang string, mode Mode) *Writer {
	return &Writer{
		GameDir:  gameDir,
		PackName: DefaultPackName,
		Lang:     lang,
		Mode:     mode,
		Options:  codec.DefaultOptions(),
	}
}

// PackPath returns the resource pack zip path.
func (w *Writer) PackPath() string {
	name := w.PackName
	if name == "" {
		name = DefaultPackName
	}
	return filepath.Join(w.GameDir, "resourcepacks", name)
}

// Save encodes doc and writes it to the destination of target. It returns
// a description of where the document went.
func (w *Writer) Save(ctx context.Context, target source.Location, doc *content.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dest, err := Resolve(w.Mode, w.GameDir, target, w.Lang)
	if err != nil {
		return "", err
	}

	opts := w.Options
	opts.PreserveComments = dest.PreserveComments
	text, err := codec.Encode(doc, dest.Format, opts)
	if err != nil {
		return "", fmt.Errorf("encoding %s: %w", dest, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if dest.Path != "" {
		if err := writeFileAtomic(dest.Path, []byte(text)); err != nil {
			return "", err
		}
		return dest.Path, nil
	}

	if err := w.writeMember(dest.PackMember, []byte(text)); err != nil {
		return "", err
	}
	return w.PackPath() + source.MemberSeparator + dest.PackMember, nil
}

// writeMember rewrites the pack with member replaced. pack.mcmeta is added
// when the pack does not have one yet.
func (w *Writer) writeMember(member string, data []byte) error {
	packPath := w.PackPath()
	dir := filepath.Dir(packPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".mclocalizer-*.zip")
	if err != nil {
		return fmt.Errorf("creating temp pack: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	zw := zip.NewWriter(tmp)
	hasMeta, err := copyExisting(zw, packPath, member)
	if err != nil {
		tmp.Close()
		return err
	}

	if err := writeEntry(zw, member, data); err != nil {
		tmp.Close()
		return err
	}
	if !hasMeta && member != MetaMember {
		meta, err := PackMeta(w.Lang)
		if err != nil {
			tmp.Close()
			return err
		}
		if err := writeEntry(zw, MetaMember, meta); err != nil {
			tmp.Close()
			return err
		}
	}

	if err := zw.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("finishing %s: %w", packPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp pack: %w", err)
	}
	if err := os.Rename(tmpName, packPath); err != nil {
		return fmt.Errorf("replacing %s: %w", packPath, err)
	}
	return nil
}

// copyExisting copies every member of the current pack except skip. A
// missing pack is not an error.
func copyExisting(zw *zip.Writer, packPath, skip string) (hasMeta bool, err error) {
	r, err := zip.OpenReader(packPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("opening %s: %w", packPath, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name == MetaMember {
			hasMeta = true
		}
		if f.Name == skip {
			continue
		}
		if err := copyEntry(zw, f); err != nil {
			return false, fmt.Errorf("copying %s from %s: %w", f.Name, packPath, err)
		}
	}
	return hasMeta, nil
}

func copyEntry(zw *zip.Writer, f *zip.File) error {
	hdr := f.FileHeader
	out, err := zw.CreateHeader(&hdr)
	if err != nil {
		return err
	}
	if f.FileInfo().IsDir() {
		return nil
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	_, err = io.Copy(out, rc)
	return err
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	out, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("adding %s: %w", name, err)
	}
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".mclocalizer-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// pack.mcmeta
// ---------------------------------------------------------------------------

type packMeta struct {
	Pack packInfo `json:"pack"`
}

type packInfo struct {
	PackFormat       int    `json:"pack_format"`
	SupportedFormats []int  `json:"supported_formats"`
	Description      string `json:"description"`
}

// PackMeta renders the pack.mcmeta content for a pack translating into lang.
func PackMeta(lang string) ([]byte, error) {
	meta := packMeta{Pack: packInfo{
		PackFormat:       8,
		SupportedFormats: []int{8, 9999},
		Description:      fmt.Sprintf("§eLocalization for [%s]", lang),
	}}
	data, err := json.MarshalIndent(meta, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", MetaMember, err)
	}
	return append(data, '\n'), nil
}
