// Package clean canonicalizes the free-text categorical fields of the
// incident dataset (sex, country, fatal, type, species).
//
// Every operation rewrites one column in place and returns a Result with the
// number of cells it altered. Missing cells never match a keyword or literal,
// and non-text cells in a text field are treated as a non-match.
package clean

import (
	"strings"

	"github.com/KaramelBytes/incidentclean-cli/internal/dataset"
	"github.com/KaramelBytes/incidentclean-cli/internal/logger"
)

// Hit records how many cells one rule, word or literal touched.
type Hit struct {
	Match   string `json:"match"`
	Replace string `json:"replace,omitempty"`
	Count   int    `json:"count"`
}

// Result summarizes one column operation.
type Result struct {
	Column string `json:"column"`
	// Changed counts cells whose value differs from the value before the call.
	Changed int `json:"changed"`
	// Blanked counts cells set to missing by noise words, literals or the
	// valid-value filter.
	Blanked int   `json:"blanked"`
	Hits    []Hit `json:"hits,omitempty"`
}

// ReplaceByKeyword applies rules in order. Every text cell containing a rule's
// keyword (case-insensitive) is overwritten with the replacement; later rules
// see cells rewritten by earlier ones.
func ReplaceByKeyword(ds *dataset.Dataset, column string, rules RuleSet) (Result, error) {
	res := Result{Column: column}
	orig, err := ds.Column(column)
	if err != nil {
		return res, err
	}
	cells := clone(orig)
	res.Hits = applyRules(column, cells, rules)
	if res.Changed, err = commit(ds, column, orig, cells); err != nil {
		return res, err
	}
	return res, nil
}

// BlankOutByKeyword sets to missing every text cell containing one of words
// (case-insensitive).
func BlankOutByKeyword(ds *dataset.Dataset, column string, words []string) (Result, error) {
	res := Result{Column: column}
	orig, err := ds.Column(column)
	if err != nil {
		return res, err
	}
	cells := clone(orig)
	res.Hits, res.Blanked = blankOut(column, cells, words)
	if res.Changed, err = commit(ds, column, orig, cells); err != nil {
		return res, err
	}
	return res, nil
}

// ReplaceLiterals overwrites every cell exactly equal to one of lits with to.
// See Literals.Match for the equality rules.
func ReplaceLiterals(ds *dataset.Dataset, column string, lits Literals, to dataset.Value) (Result, error) {
	res := Result{Column: column}
	orig, err := ds.Column(column)
	if err != nil {
		return res, err
	}
	cells := clone(orig)
	counts := make([]int, len(lits))
	for i, v := range cells {
		if k, ok := lits.Match(v); ok {
			counts[k]++
			cells[i] = to
		}
	}
	for k, n := range counts {
		if n == 0 {
			continue
		}
		res.Hits = append(res.Hits, Hit{Match: lits[k].String(), Replace: to.String(), Count: n})
		logger.Debug("literal replaced", "column", column, "literal", lits[k].String(), "count", n)
		if to.IsMissing() {
			res.Blanked += n
		}
	}
	if res.Changed, err = commit(ds, column, orig, cells); err != nil {
		return res, err
	}
	return res, nil
}

func applyRules(column string, cells []dataset.Value, rules RuleSet) []Hit {
	f := newFolder()
	folded := make([]string, len(cells))
	for i, v := range cells {
		if s, ok := v.Text(); ok {
			folded[i] = f.fold(s)
		}
	}
	var hits []Hit
	for _, r := range rules {
		keyword := f.fold(r.Match)
		repl, replFolded := dataset.Text(r.Replace), f.fold(r.Replace)
		n := 0
		for i, v := range cells {
			if !v.IsText() || !strings.Contains(folded[i], keyword) {
				continue
			}
			cells[i], folded[i] = repl, replFolded
			n++
		}
		if n > 0 {
			logger.Info("values replaced", "column", column, "keyword", r.Match, "replacement", r.Replace, "count", n)
			hits = append(hits, Hit{Match: r.Match, Replace: r.Replace, Count: n})
		}
	}
	return hits
}

func blankOut(column string, cells []dataset.Value, words []string) ([]Hit, int) {
	f := newFolder()
	var hits []Hit
	total := 0
	for _, w := range words {
		keyword := f.fold(w)
		n := 0
		for i, v := range cells {
			if s, ok := v.Text(); ok && f.contains(s, keyword) {
				cells[i] = dataset.Missing
				n++
			}
		}
		if n > 0 {
			logger.Info("values blanked", "column", column, "keyword", w, "count", n)
			hits = append(hits, Hit{Match: w, Count: n})
			total += n
		}
	}
	return hits, total
}

func clone(vs []dataset.Value) []dataset.Value {
	out := make([]dataset.Value, len(vs))
	copy(out, vs)
	return out
}

// commit writes cells back to the column and counts cells that differ from orig.
func commit(ds *dataset.Dataset, column string, orig, cells []dataset.Value) (int, error) {
	changed := 0
	err := ds.UpdateColumn(column, func(i int, _ dataset.Value) dataset.Value {
		if !orig[i].Equal(cells[i]) {
			changed++
		}
		return cells[i]
	})
	return changed, err
}
