// Package codec selects a localization codec by file extension and converts
// between file text and content documents.
package codec

import (
	"fmt"
	"path"
	"strings"

	"github.com/minios-linux/mclocalizer/content"
	"github.com/minios-linux/mclocalizer/jsonfile"
	"github.com/minios-linux/mclocalizer/langfile"
	"github.com/minios-linux/mclocalizer/snbt"
)

// Options tunes encoding.
type Options struct {
	// PreserveComments writes lang header comments above the entries.
	PreserveComments bool
	// SNBT filters entries written to .snbt files.
	SNBT snbt.Policy
}

// DefaultOptions drops comments and applies the default SNBT policy.
func DefaultOptions() Options {
	return Options{SNBT: snbt.DefaultPolicy()}
}

// DetectFormat returns the format for a file name, matching the extension
// case-insensitively. Archive member names ("assets/x/lang/en_us.json") work
// as well as file system paths.
func DetectFormat(name string) (content.Format, error) {
	switch strings.ToLower(path.Ext(strings.ReplaceAll(name, `\`, "/"))) {
	case ".lang":
		return content.FormatLang, nil
	case ".json":
		return content.FormatJSON, nil
	case ".snbt":
		return content.FormatSNBT, nil
	}
	return 0, fmt.Errorf("%w: %s", content.ErrUnsupportedFormat, name)
}

// IsLocalizationFile reports whether name has a supported extension.
func IsLocalizationFile(name string) bool {
	_, err := DetectFormat(name)
	return err == nil
}

// Decode parses text in the given format.
func Decode(text string, format content.Format) (*content.Document, error) {
	switch format {
	case content.FormatLang:
		return langfile.Parse([]byte(text))
	case content.FormatJSON:
		return jsonfile.Parse([]byte(text))
	case content.FormatSNBT:
		return snbt.Parse(text)
	}
	return nil, fmt.Errorf("%w: %v", content.ErrUnsupportedFormat, format)
}

// Encode renders doc in the given format.
func Encode(doc *content.Document, format content.Format, opts Options) (string, error) {
	switch format {
	case content.FormatLang:
		return string(langfile.Marshal(doc, opts.PreserveComments)), nil
	case content.FormatJSON:
		data, err := jsonfile.Marshal(doc)
		if err != nil {
			return "", err
		}
		return string(data), nil
	case content.FormatSNBT:
		return snbt.Format(doc, opts.SNBT), nil
	}
	return "", fmt.Errorf("%w: %v", content.ErrUnsupportedFormat, format)
}

// WriteFile encodes doc in format and writes it to path, creating parent
// directories.
func WriteFile(path string, doc *content.Document, format content.Format, opts Options) error {
	switch format {
	case content.FormatLang:
		return langfile.WriteFile(path, doc, opts.PreserveComments)
	case content.FormatJSON:
		return jsonfile.WriteFile(path, doc)
	case content.FormatSNBT:
		return snbt.WriteFile(path, doc, opts.SNBT)
	}
	return fmt.Errorf("%w: %v", content.ErrUnsupportedFormat, format)
}

// DecodeNamed detects the format from name and decodes text.
func DecodeNamed(name, text string) (*content.Document, content.Format, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, 0, err
	}
	doc, err := Decode(text, format)
	if err != nil {
		return nil, format, fmt.Errorf("decoding %s: %w", name, err)
	}
	return doc, format, nil
}
