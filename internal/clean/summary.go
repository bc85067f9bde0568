package clean

import (
	"fmt"

	"github.com/KaramelBytes/incidentclean-cli/internal/dataset"
	"github.com/KaramelBytes/incidentclean-cli/internal/logger"
)

// Fatality counts outcomes in a cleaned fatal column.
type Fatality struct {
	Fatal    int `json:"fatal"`
	Survived int `json:"survived"`
}

func (f Fatality) String() string {
	return fmt.Sprintf("Count of 'fatal': %d, Count of survivals: %d", f.Fatal, f.Survived)
}

// Gender counts victims by sex in a cleaned sex column.
type Gender struct {
	Female int `json:"female"`
	Male   int `json:"male"`
}

func (g Gender) String() string {
	return fmt.Sprintf("Count of females attacked: %d, Count of males attacked: %d", g.Female, g.Male)
}

// FatalitySummary counts "Y" and "N" in column. Other values are ignored.
func FatalitySummary(ds *dataset.Dataset, column string) (Fatality, error) {
	var f Fatality
	err := countText(ds, column, map[string]*int{"Y": &f.Fatal, "N": &f.Survived})
	return f, err
}

// GenderSummary counts "f" and "m" in column and logs the totals. The
// dataset is not modified.
func GenderSummary(ds *dataset.Dataset, column string) (Gender, error) {
	var g Gender
	if err := countText(ds, column, map[string]*int{"f": &g.Female, "m": &g.Male}); err != nil {
		return g, err
	}
	logger.Info("gender summary", "column", column, "female", g.Female, "male", g.Male)
	return g, nil
}

func countText(ds *dataset.Dataset, column string, into map[string]*int) error {
	vals, err := ds.Column(column)
	if err != nil {
		return err
	}
	for _, v := range vals {
		if s, ok := v.Text(); ok {
			if n, ok := into[s]; ok {
				*n++
			}
		}
	}
	return nil
}
