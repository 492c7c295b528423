package translate

import (
	"errors"
	"fmt"

	"github.com/minios-linux/mclocalizer/tree"
)

// ErrSourceLanguageFileMissing is reported for a selected node that holds no
// file of the source language.
var ErrSourceLanguageFileMissing = errors.New("source language file missing")

// Pair is a selected node and one source-language file resolved from it.
type Pair struct {
	Source *tree.Node
	Target *tree.Node
}

// ResolveTargets returns the source-language files of node:
//
//  1. direct children named {lang}.json, {lang}.snbt or ending in {lang}.lang;
//  2. otherwise every localization file below the child folder named after
//     sourceLang (patchouli books keep en_us/ folders);
//  3. otherwise node itself when it is such a file.
//
// When none apply the error wraps ErrSourceLanguageFileMissing.
func ResolveTargets(node *tree.Node, sourceLang string) ([]*tree.Node, error) {
	var targets []*tree.Node
	for _, c := range node.Children {
		if c.IsLocalizationFile() && tree.MatchesLanguage(c.Name, sourceLang) {
			targets = append(targets, c)
		}
	}

	if len(targets) == 0 {
		if dir := node.Child(sourceLang); dir != nil && !dir.File {
			targets = append(targets, dir.Files()...)
		}
	}

	if len(targets) == 0 && node.IsLocalizationFile() && tree.MatchesLanguage(node.Name, sourceLang) {
		targets = append(targets, node)
	}

	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: no %s file in %s", ErrSourceLanguageFileMissing, sourceLang, node.Loc)
	}
	return targets, nil
}

// CollectPairs resolves targets for every node. Nodes without targets are
// returned as errors and skipped.
func CollectPairs(nodes []*tree.Node, sourceLang string) ([]Pair, []error) {
	var (
		pairs []Pair
		errs  []error
	)
	for _, n := range nodes {
		targets, err := ResolveTargets(n, sourceLang)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, t := range targets {
			pairs = append(pairs, Pair{Source: n, Target: t})
		}
	}
	return pairs, errs
}
