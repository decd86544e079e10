package models

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}
	if len(c.Scenarios) != 12 {
		t.Errorf("Expected 12 scenarios, got %d", len(c.Scenarios))
	}
	if len(c.Training) == 0 {
		t.Errorf("Expected training materials")
	}
	if c.Mentor().Name != "Agent Nova" {
		t.Errorf("Expected mentor Agent Nova, got %q", c.Mentor().Name)
	}
	for _, s := range c.Scenarios {
		if s.Feedback.Correct == "" || s.Feedback.Incorrect == "" || s.Feedback.Tip == "" {
			t.Errorf("Scenario %d has incomplete feedback", s.ID)
		}
	}
}

func TestScenarioYAML(t *testing.T) {
	in := `
- id: 7
  character_id: jamieIT
  channel: Social Media
  title: Test
  content: Body
  correct_choice: verify
  attack_type: Pretexting
  feedback:
    correct: yes
    incorrect: no
    tip: tip
`
	var scenarios []Scenario
	if err := yaml.Unmarshal([]byte(in), &scenarios); err != nil {
		t.Fatalf("Failed to unmarshal scenarios: %v", err)
	}
	if len(scenarios) != 1 {
		t.Fatalf("Expected 1 scenario, got %d", len(scenarios))
	}
	s := scenarios[0]
	if s.Channel != SocialMedia {
		t.Errorf("Expected channel %v, got %v", SocialMedia, s.Channel)
	}
	if s.CorrectChoice != Verify {
		t.Errorf("Expected correct choice verify, got %v", s.CorrectChoice)
	}

	out, err := yaml.Marshal(s)
	if err != nil {
		t.Fatalf("Failed to marshal scenario: %v", err)
	}
	if !strings.Contains(string(out), "correct_choice: verify") {
		t.Errorf("Expected decision to marshal as text, got:\n%s", out)
	}
}

func TestCatalogRejectsBadContent(t *testing.T) {
	dup := `
- {id: 1, character_id: jamieIT, channel: Email, correct_choice: trust}
- {id: 1, character_id: jamieIT, channel: Email, correct_choice: report}
`
	if _, err := loadCatalog([]byte(dup), charactersYAML, trainingYAML); !errors.Is(err, ErrDuplicateScenario) {
		t.Errorf("Expected ErrDuplicateScenario, got %v", err)
	}

	badChoice := `- {id: 1, character_id: jamieIT, channel: Email, correct_choice: ignore}`
	if _, err := loadCatalog([]byte(badChoice), charactersYAML, trainingYAML); !errors.Is(err, ErrInvalidDecision) {
		t.Errorf("Expected ErrInvalidDecision, got %v", err)
	}

	badChannel := `- {id: 1, character_id: jamieIT, channel: Fax, correct_choice: trust}`
	if _, err := loadCatalog([]byte(badChannel), charactersYAML, trainingYAML); !errors.Is(err, ErrInvalidChannel) {
		t.Errorf("Expected ErrInvalidChannel, got %v", err)
	}

	unknown := `- {id: 1, character_id: nobody, channel: Email, correct_choice: trust}`
	if _, err := loadCatalog([]byte(unknown), charactersYAML, trainingYAML); !errors.Is(err, ErrUnknownCharacter) {
		t.Errorf("Expected ErrUnknownCharacter, got %v", err)
	}

	if _, err := loadCatalog([]byte("[]"), charactersYAML, trainingYAML); !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("Expected ErrEmptyCatalog, got %v", err)
	}
}

func TestLoadCatalogFile(t *testing.T) {
	c, err := LoadCatalogFile("")
	if err != nil || len(c.Scenarios) != 12 {
		t.Fatalf("Expected the built-in catalog for an empty path, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	custom := `- {id: 40, character_id: jamieIT, channel: Email, title: Custom, correct_choice: verify}`
	if err := os.WriteFile(path, []byte(custom), 0o644); err != nil {
		t.Fatalf("Failed to write scenarios: %v", err)
	}
	c, err = LoadCatalogFile(path)
	if err != nil {
		t.Fatalf("Failed to load custom catalog: %v", err)
	}
	if len(c.Scenarios) != 1 || c.Scenarios[0].Title != "Custom" {
		t.Errorf("Expected the custom scenario, got %+v", c.Scenarios)
	}
	if len(c.Training) == 0 || c.Mentor().Name != "Agent Nova" {
		t.Errorf("Expected built-in characters and training to be kept")
	}

	if _, err := LoadCatalogFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("Expected an error for a missing file")
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	c, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}
	original := append([]Scenario(nil), c.Scenarios...)
	shuffled := Shuffle(rand.New(rand.NewSource(42)), c.Scenarios)

	if len(shuffled) != len(original) {
		t.Fatalf("Expected %d scenarios, got %d", len(original), len(shuffled))
	}
	seen := map[int]int{}
	for _, s := range shuffled {
		seen[s.ID]++
	}
	for _, s := range original {
		if seen[s.ID] != 1 {
			t.Errorf("Scenario %d appears %d times after shuffle", s.ID, seen[s.ID])
		}
	}
	for i := range original {
		if c.Scenarios[i].ID != original[i].ID {
			t.Fatalf("Shuffle modified its input at index %d", i)
		}
	}
}

func TestCertificationFor(t *testing.T) {
	cases := []struct {
		score int
		level string
	}{
		{-150, "Trainee"},
		{0, "Trainee"},
		{399, "Trainee"},
		{400, "Analyst"},
		{800, "Defender"},
		{1100, "Guardian"},
		{1200, "Guardian"},
	}
	for _, tc := range cases {
		if got := CertificationFor(tc.score).Level; got != tc.level {
			t.Errorf("CertificationFor(%d) = %s, want %s", tc.score, got, tc.level)
		}
	}
	if EarnsCertificate(119) || !EarnsCertificate(120) {
		t.Errorf("Certificate threshold should be 120")
	}
}

func TestParseDecision(t *testing.T) {
	for _, d := range Decisions {
		got, err := ParseDecision(d.String())
		if err != nil || got != d {
			t.Errorf("ParseDecision(%q) = %v, %v", d.String(), got, err)
		}
	}
	if _, err := ParseDecision("maybe"); !errors.Is(err, ErrInvalidDecision) {
		t.Errorf("Expected ErrInvalidDecision, got %v", err)
	}
}
