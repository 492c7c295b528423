// Package mclocale handles Minecraft locale codes ("en_us", "ru_ru",
// "pt_br") and their display metadata.
//
// Minecraft writes locales in lower case with an underscore. Names are
// derived from CLDR data through golang.org/x/text, so no table has to be
// kept in sync here.
package mclocale

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Default is the source locale of nearly every mod.
const Default = "en_us"

var codeRe = regexp.MustCompile(`^[a-z]{2,3}_[a-z0-9]{2,3}$`)

// Common lists the locales offered by interactive prompts.
var Common = []string{
	"ru_ru", "uk_ua", "de_de", "fr_fr", "es_es", "es_mx", "pt_br", "pt_pt",
	"it_it", "pl_pl", "cs_cz", "tr_tr", "nl_nl", "sv_se", "fi_fi", "hu_hu",
	"ja_jp", "ko_kr", "zh_cn", "zh_tw", "vi_vn", "th_th", "id_id", "ar_sa",
}

// Meta describes a locale for display.
type Meta struct {
	Code   string
	Name   string // English name
	Native string // name in the language itself
	Flag   string // regional indicator pair, empty when unknown
}

// Normalize converts "pt-BR", " PT_br " and similar spellings to the
// Minecraft form "pt_br".
func Normalize(code string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(code), "-", "_"))
}

// Valid reports whether code is a well-formed Minecraft locale after
// normalization.
func Valid(code string) bool {
	return codeRe.MatchString(Normalize(code))
}

// Validate returns an error naming code when it is not Valid.
func Validate(code string) error {
	if !Valid(code) {
		return fmt.Errorf("invalid Minecraft locale %q (expected form like en_us)", code)
	}
	return nil
}

// Tag returns the BCP 47 tag for a Minecraft locale.
func Tag(code string) (language.Tag, error) {
	return language.Parse(strings.ReplaceAll(Normalize(code), "_", "-"))
}

// Resolve returns display metadata for code. Unknown codes yield the code
// itself as name.
func Resolve(code string) Meta {
	norm := Normalize(code)
	m := Meta{Code: norm, Name: norm, Native: norm}

	tag, err := Tag(norm)
	if err != nil {
		return m
	}
	if name := display.English.Tags().Name(tag); name != "" {
		m.Name = name
	}
	if native := display.Self.Name(tag); native != "" {
		m.Native = native
	}
	if _, region, _ := strings.Cut(norm, "_"); len(region) == 2 {
		m.Flag = flag(region)
	}
	return m
}

// DisplayName returns the English name of code, e.g. "Russian (Russia)".
func DisplayName(code string) string {
	return Resolve(code).Name
}

func flag(region string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(region) {
		if r < 'A' || r > 'Z' {
			return ""
		}
		b.WriteRune(0x1F1E6 + r - 'A')
	}
	return b.String()
}
