package models

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidDecision   = errors.New("invalid decision")
	ErrInvalidChannel    = errors.New("invalid channel")
	ErrDuplicateScenario = errors.New("duplicate scenario id")
	ErrUnknownCharacter  = errors.New("unknown character")
	ErrEmptyCatalog      = errors.New("catalog has no scenarios")
)

//go:embed catalog/scenarios.yaml
var scenariosYAML []byte

//go:embed catalog/characters.yaml
var charactersYAML []byte

//go:embed catalog/training.yaml
var trainingYAML []byte

// Catalog is the static content the game is played with.
type Catalog struct {
	Scenarios  []Scenario
	Characters map[string]Character
	Training   []TrainingMaterial
}

// DefaultCatalog loads the catalog compiled into the binary.
func DefaultCatalog() (*Catalog, error) {
	return loadCatalog(scenariosYAML, charactersYAML, trainingYAML)
}

// LoadCatalogFile loads the built-in catalog but replaces its scenarios with
// the ones in path. An empty path returns the built-in catalog.
func LoadCatalogFile(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	return loadCatalog(data, charactersYAML, trainingYAML)
}

func loadCatalog(scenarioData, characterData, trainingData []byte) (*Catalog, error) {
	var characters []Character
	if err := yaml.Unmarshal(characterData, &characters); err != nil {
		return nil, fmt.Errorf("parse characters: %w", err)
	}
	var scenarios []Scenario
	dec := yaml.NewDecoder(bytes.NewReader(scenarioData))
	dec.KnownFields(true)
	if err := dec.Decode(&scenarios); err != nil {
		return nil, fmt.Errorf("parse scenarios: %w", err)
	}
	var training []TrainingMaterial
	if err := yaml.Unmarshal(trainingData, &training); err != nil {
		return nil, fmt.Errorf("parse training materials: %w", err)
	}

	c := &Catalog{
		Scenarios:  scenarios,
		Characters: make(map[string]Character, len(characters)),
		Training:   training,
	}
	for _, ch := range characters {
		c.Characters[ch.ID] = ch
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that scenario ids are unique and every scenario is playable.
func (c *Catalog) Validate() error {
	if len(c.Scenarios) == 0 {
		return ErrEmptyCatalog
	}
	seen := make(map[int]bool, len(c.Scenarios))
	for _, s := range c.Scenarios {
		if seen[s.ID] {
			return fmt.Errorf("%w: %d", ErrDuplicateScenario, s.ID)
		}
		seen[s.ID] = true
		if s.CorrectChoice == DecisionNone {
			return fmt.Errorf("scenario %d: %w: missing correct_choice", s.ID, ErrInvalidDecision)
		}
		if s.Channel == 0 {
			return fmt.Errorf("scenario %d: %w: missing channel", s.ID, ErrInvalidChannel)
		}
		if _, ok := c.Characters[s.CharacterID]; !ok {
			return fmt.Errorf("scenario %d: %w: %q", s.ID, ErrUnknownCharacter, s.CharacterID)
		}
	}
	return nil
}

// Character returns the character for id, or a placeholder if unknown.
func (c *Catalog) Character(id string) Character {
	if ch, ok := c.Characters[id]; ok {
		return ch
	}
	return Character{ID: id, Name: id, Role: "Unknown"}
}

// Mentor is the guide character who narrates the briefing and debrief.
func (c *Catalog) Mentor() Character {
	return c.Character("agentNova")
}

// Shuffle returns a uniformly random permutation of scenarios. The input is
// left untouched.
func Shuffle(rng *rand.Rand, scenarios []Scenario) []Scenario {
	out := make([]Scenario, len(scenarios))
	copy(out, scenarios)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
