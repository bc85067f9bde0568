package clean

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/KaramelBytes/incidentclean-cli/internal/dataset"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Columns names the categorical columns after normalization.
type Columns struct {
	Sex     string `yaml:"sex" json:"sex" validate:"required"`
	Country string `yaml:"country" json:"country" validate:"required"`
	Fatal   string `yaml:"fatal" json:"fatal" validate:"required"`
	Type    string `yaml:"type" json:"type" validate:"required"`
	Species string `yaml:"species" json:"species" validate:"required"`
}

// Substitution rewrites an exact (already normalized) value.
type Substitution struct {
	From string `yaml:"from" json:"from" validate:"required"`
	To   string `yaml:"to" json:"to" validate:"required"`
}

// Vocabulary bundles the configuration of all five cleaners. Values are
// copied in and never shared; DefaultVocabulary returns a fresh one per call.
type Vocabulary struct {
	Columns          Columns        `yaml:"columns" json:"columns"`
	SexSubstitutions []Substitution `yaml:"sex_substitutions" json:"sex_substitutions" validate:"dive"`
	SexValid         []string       `yaml:"sex_valid" json:"sex_valid" validate:"min=1,dive,required"`
	FatalNoise       Literals       `yaml:"fatal_noise" json:"-"`
	TypeNoise        Literals       `yaml:"type_noise" json:"-"`
	SpeciesNoise     []string       `yaml:"species_noise" json:"species_noise" validate:"dive,required"`
	SpeciesRules     RuleSet        `yaml:"species_rules" json:"species_rules" validate:"dive"`
}

var validate = validator.New()

// Validate checks required fields and that no noise word or keyword is empty.
func (v Vocabulary) Validate() error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed '%s'", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid vocabulary: %s: %w", strings.Join(msgs, "; "), err)
		}
		return fmt.Errorf("invalid vocabulary: %w", err)
	}
	return nil
}

// LoadVocabulary reads a YAML rules file over the defaults. Keys present in
// the file replace the default value wholesale; absent keys keep it.
func LoadVocabulary(path string) (Vocabulary, error) {
	v := DefaultVocabulary()
	b, err := os.ReadFile(path)
	if err != nil {
		return v, fmt.Errorf("read rules file: %w", err)
	}
	if err := yaml.Unmarshal(b, &v); err != nil {
		return v, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	if err := v.Validate(); err != nil {
		return v, err
	}
	return v, nil
}

// DefaultVocabulary returns the built-in incident vocabulary.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Columns: Columns{
			Sex:     "sex",
			Country: "country",
			Fatal:   "fatal",
			Type:    "type",
			Species: "species",
		},
		SexSubstitutions: []Substitution{
			{From: "male", To: "m"},
			{From: "female", To: "f"},
			{From: "femal", To: "f"},
		},
		SexValid: []string{"m", "f"},
		FatalNoise: Literals{
			dataset.Text("M"),
			dataset.Text("F"),
			dataset.Text("n"),
			dataset.Text("Nq"),
			dataset.Text("UNKNOWN"),
			dataset.Number(2017),
			dataset.Text("Y x 2"),
			dataset.Text(" N"),
			dataset.Text("N "),
			dataset.Text("y"),
		},
		TypeNoise: Literals{
			dataset.Text("Questionable"),
			dataset.Text("Unconfirmed"),
			dataset.Text("Invalid"),
			dataset.Text("nan"),
			dataset.Text("?"),
			dataset.Text("Unverified"),
			dataset.Text("Under investigation"),
			dataset.Text("Watercraft"),
			dataset.Text("Sea Disaster"),
			dataset.Text("Boat"),
		},
		SpeciesNoise: []string{
			"Invalid",
			"Questionable",
			"not confirmed",
			"unconfirmed",
			"not authenticated",
			"no shark",
			"shark involvement not confirmed",
			"shark involvement prior to death",
		},
		SpeciesRules: defaultSpeciesRules(),
	}
}

func defaultSpeciesRules() RuleSet {
	return RuleSet{
		{"angel", "Angel"},
		{"banjo", "Banjo"},
		{"barracuda", "Barracuda (not shark)"},
		{"basking", "Basking"},
		{"black finned", "Blackfin"},
		{"black-tipped", "Black-tipped"},
		{"blackfin", "Blackfin"},
		{"blacktip", "Blacktip"},
		{"blind", "Blind"},
		{"blined", "Blind"},
		{"blue", "Blue"},
		{"bonita", "Bonita"},
		{"broadnose", "Broadnose"},
		{"bronze whaler", "Bronze whaler"},
		{"brown", "Brown"},
		{"bu.ll", "Bull"},
		{"bull", "Bull"},
		{"captive", "Captive"},
		{"carpet", "Carpet"},
		{"catshark", "Scyliorhinus canicula"},
		{"cocktail", "Cocktail"},
		{"cookiecutter", "Cookiecutter"},
		{"copper", "Copper"},
		{"cow", "Cow"},
		{"dog shark", "Dog shark"},
		{"dogfish", "Scyliorhinus canicula"},
		{"dusky", "Dusky"},
		{"epaulette", "Epaulette"},
		{"gaffed", "Gaffed"},
		{"galapagos", "Galapagos"},
		{"gill", "Gill"},
		{"goblin", "Goblin"},
		{"gray nurse", "Grey nurse"},
		{"gray shark", "Grey colored"},
		{"grey colored", "Grey colored"},
		{"grey-colored", "Grey colored"},
		{"ground", "Ground"},
		{"gummy", "Gummy"},
		{"hammerhead", "Hammerhead"},
		{"horn", "Horn"},
		{"juvenile", "Juvenile"},
		{"lemon", "Lemon"},
		{"leopard", "Leopard"},
		{"mako", "Mako"},
		{"nurse", "Nurse"},
		{"porbeagle", "Porbeagle"},
		{"port jackson", "Port jackson"},
		{"raggedtooth", "Raggedtooth"},
		{"red", "Red"},
		{"reef", "Reef"},
		{"salmon", "Salmon"},
		{"sand", "Sand"},
		{"sandbar", "Sandbar"},
		{"sevengill", "Sevengill"},
		{"shovelnose", "Shovelnose"},
		{"silky", "Silky"},
		{"silvertip", "Silvertip"},
		{"smooth hound", "Smooth-hound"},
		{"smoothhound", "Smooth-hound"},
		{"smooth-hound", "Smooth-hound"},
		{"spear-eye", "Spear-eye"},
		{"spinner", "Spinner"},
		{"spotted dogfish", "Spotted dogfish"},
		{"spurdog", "Spurdog"},
		{"stingray", "Stingray (not shark)"},
		{"tawney nurse", "Tawney nurse"},
		{"thresher", "Thresher"},
		{"tiger", "Tiger"},
		{"tope", "Tope"},
		{"wfite", "White"},
		{"whaler", "Whaler"},
		{"while shark", "Whaler"},
		{"whiptail", "Whiptail"},
		{"white", "White"},
		{"wobbegong", "Wobbegong"},
		{"zambesi", "Zambezi"},
		{"zambezi", "Zambezi"},
	}
}
