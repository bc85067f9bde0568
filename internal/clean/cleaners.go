package clean

import (
	"strings"

	"github.com/KaramelBytes/incidentclean-cli/internal/dataset"
	"github.com/KaramelBytes/incidentclean-cli/internal/logger"
)

// Cleaner runs the field cleaners with one vocabulary.
type Cleaner struct {
	vocab  Vocabulary
	labels map[string]struct{}
}

// New returns a Cleaner for v. v is copied; later changes to the caller's
// slices do not affect the Cleaner.
func New(v Vocabulary) *Cleaner {
	v = v.clone()
	labels := make(map[string]struct{}, len(v.SpeciesRules))
	for _, l := range v.SpeciesRules.Labels() {
		labels[l] = struct{}{}
	}
	return &Cleaner{vocab: v, labels: labels}
}

// Vocabulary returns a copy of the cleaner's vocabulary.
func (c *Cleaner) Vocabulary() Vocabulary { return c.vocab.clone() }

// CleanSex trims and lowercases, applies the sex substitutions, and sets
// anything outside the valid set to missing. A cell counts as changed when
// its trimmed, lowercased original differs from the result.
func (c *Cleaner) CleanSex(ds *dataset.Dataset) (Result, error) {
	column := c.vocab.Columns.Sex
	res := Result{Column: column}
	orig, err := ds.Column(column)
	if err != nil {
		return res, err
	}
	lower := lowerCaser()
	valid := make(map[string]struct{}, len(c.vocab.SexValid))
	for _, s := range c.vocab.SexValid {
		valid[s] = struct{}{}
	}
	subs := make([]int, len(c.vocab.SexSubstitutions))
	cells := make([]dataset.Value, len(orig))
	keys := make([]dataset.Value, len(orig))
	for i, v := range orig {
		s, ok := v.Text()
		if !ok {
			keys[i] = v
			cells[i] = dataset.Missing
			if !v.IsMissing() {
				res.Blanked++
			}
			continue
		}
		s = lower.String(strings.TrimSpace(s))
		keys[i] = dataset.Text(s)
		for k, sub := range c.vocab.SexSubstitutions {
			if s == sub.From {
				s = sub.To
				subs[k]++
				break
			}
		}
		if _, ok := valid[s]; !ok {
			cells[i] = dataset.Missing
			res.Blanked++
			continue
		}
		cells[i] = dataset.Text(s)
	}
	for k, n := range subs {
		if n > 0 {
			sub := c.vocab.SexSubstitutions[k]
			res.Hits = append(res.Hits, Hit{Match: sub.From, Replace: sub.To, Count: n})
		}
	}
	if _, err := commit(ds, column, orig, cells); err != nil {
		return res, err
	}
	for i := range keys {
		if !keys[i].Equal(cells[i]) {
			res.Changed++
		}
	}
	logChanged(res)
	return res, nil
}

// CleanCountry uppercases and trims text cells. Other cells are left as is.
func (c *Cleaner) CleanCountry(ds *dataset.Dataset) (Result, error) {
	column := c.vocab.Columns.Country
	res := Result{Column: column}
	orig, err := ds.Column(column)
	if err != nil {
		return res, err
	}
	upper := upperCaser()
	cells := clone(orig)
	for i, v := range cells {
		if s, ok := v.Text(); ok {
			cells[i] = dataset.Text(strings.TrimSpace(upper.String(s)))
		}
	}
	if res.Changed, err = commit(ds, column, orig, cells); err != nil {
		return res, err
	}
	logChanged(res)
	return res, nil
}

// CleanFatal sets the fatal noise literals to missing.
func (c *Cleaner) CleanFatal(ds *dataset.Dataset) (Result, error) {
	res, err := ReplaceLiterals(ds, c.vocab.Columns.Fatal, c.vocab.FatalNoise, dataset.Missing)
	if err != nil {
		return res, err
	}
	logChanged(res)
	return res, nil
}

// CleanType sets the type noise literals to missing.
func (c *Cleaner) CleanType(ds *dataset.Dataset) (Result, error) {
	res, err := ReplaceLiterals(ds, c.vocab.Columns.Type, c.vocab.TypeNoise, dataset.Missing)
	if err != nil {
		return res, err
	}
	logChanged(res)
	return res, nil
}

// CleanSpecies blanks out noise entries, lowercases the rest, then applies
// the species rules in order.
//
// Cells already holding one of the rule labels are not lowercased, so that a
// second run leaves the column unchanged even for labels that no rule keyword
// matches ("Scyliorhinus canicula").
func (c *Cleaner) CleanSpecies(ds *dataset.Dataset) (Result, error) {
	column := c.vocab.Columns.Species
	res := Result{Column: column}
	orig, err := ds.Column(column)
	if err != nil {
		return res, err
	}
	cells := clone(orig)
	blankHits, blanked := blankOut(column, cells, c.vocab.SpeciesNoise)
	lower := lowerCaser()
	for i, v := range cells {
		s, ok := v.Text()
		if !ok {
			continue
		}
		if _, label := c.labels[s]; !label {
			cells[i] = dataset.Text(lower.String(s))
		}
	}
	res.Blanked = blanked
	res.Hits = append(blankHits, applyRules(column, cells, c.vocab.SpeciesRules)...)
	if res.Changed, err = commit(ds, column, orig, cells); err != nil {
		return res, err
	}
	logChanged(res)
	return res, nil
}

func logChanged(res Result) {
	logger.Info("column cleaned", "column", res.Column, "changed", res.Changed, "blanked", res.Blanked)
}

func (v Vocabulary) clone() Vocabulary {
	out := v
	out.SexSubstitutions = append([]Substitution(nil), v.SexSubstitutions...)
	out.SexValid = append([]string(nil), v.SexValid...)
	out.FatalNoise = append(Literals(nil), v.FatalNoise...)
	out.TypeNoise = append(Literals(nil), v.TypeNoise...)
	out.SpeciesNoise = append([]string(nil), v.SpeciesNoise...)
	out.SpeciesRules = append(RuleSet(nil), v.SpeciesRules...)
	return out
}
