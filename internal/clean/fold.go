package clean

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// folder compares text without regard to case. A Caser keeps state between
// calls, so each operation builds its own folder.
type folder struct {
	c cases.Caser
}

func newFolder() *folder {
	return &folder{c: cases.Fold()}
}

func (f *folder) fold(s string) string {
	return f.c.String(s)
}

// contains reports whether s holds the already-folded keyword.
func (f *folder) contains(s, keyword string) bool {
	return strings.Contains(f.fold(s), keyword)
}

func lowerCaser() cases.Caser {
	return cases.Lower(language.Und)
}

func upperCaser() cases.Caser {
	return cases.Upper(language.Und)
}
