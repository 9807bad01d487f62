// Package prompt holds the fixed conversational surface of the workflow:
// per-field questions, hand-off lines, and the greeting/fallback texts.
package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	statex "github.com/arpitverma/loanflow/agent/state"
)

//go:embed template/catalog.yaml
var catalogRaw []byte

// Catalog is the loaded prompt set.
type Catalog struct {
	Greeting    string `yaml:"greeting"`
	Decline     string `yaml:"decline"`
	Fallback    string `yaml:"fallback"`
	LetterReady string `yaml:"letter_ready"`

	Sales StageBlock `yaml:"sales"`
	KYC   StageBlock `yaml:"kyc"`
}

// StageBlock carries one checklist stage's questions and hand-off line.
type StageBlock struct {
	Handoff   string            `yaml:"handoff"`
	Questions map[string]string `yaml:"questions"`
}

// Question returns the designated question for a checklist field.
func (b StageBlock) Question(field statex.Field) (string, bool) {
	q, ok := b.Questions[string(field)]
	return q, ok
}

// Load parses the embedded catalog and verifies that every checklist field
// has a question, so a missing prompt fails at startup instead of mid
// conversation.
func Load() (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(catalogRaw, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse prompt catalog: %w", err)
	}

	for _, text := range []struct {
		name  string
		value string
	}{
		{"greeting", c.Greeting},
		{"decline", c.Decline},
		{"fallback", c.Fallback},
		{"letter_ready", c.LetterReady},
		{"sales.handoff", c.Sales.Handoff},
		{"kyc.handoff", c.KYC.Handoff},
	} {
		if strings.TrimSpace(text.value) == "" {
			return Catalog{}, fmt.Errorf("prompt catalog is missing %q", text.name)
		}
	}

	for _, f := range statex.SalesChecklist {
		if _, ok := c.Sales.Question(f); !ok {
			return Catalog{}, fmt.Errorf("prompt catalog is missing sales question for %q", f)
		}
	}
	for _, f := range statex.KYCChecklist {
		if _, ok := c.KYC.Question(f); !ok {
			return Catalog{}, fmt.Errorf("prompt catalog is missing kyc question for %q", f)
		}
	}

	return c, nil
}

// MustLoad panics on a malformed embedded catalog.
func MustLoad() Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}
