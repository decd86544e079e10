package models

import (
	"fmt"
	"time"
)

// Decision is the player's response to a scenario.
type Decision uint8

const (
	// DecisionNone marks a round where nothing has been chosen yet.
	DecisionNone Decision = iota
	Trust
	Verify
	Report
)

// Decisions lists the choices a player can make, in display order.
var Decisions = []Decision{Trust, Verify, Report}

func (d Decision) String() string {
	switch d {
	case DecisionNone:
		return ""
	case Trust:
		return "trust"
	case Verify:
		return "verify"
	case Report:
		return "report"
	}
	return fmt.Sprintf("Decision(%d)", uint8(d))
}

// ParseDecision maps "trust", "verify" or "report" to a Decision.
func ParseDecision(s string) (Decision, error) {
	switch s {
	case "trust":
		return Trust, nil
	case "verify":
		return Verify, nil
	case "report":
		return Report, nil
	}
	return DecisionNone, fmt.Errorf("%w: %q", ErrInvalidDecision, s)
}

func (d Decision) MarshalText() ([]byte, error) {
	if d == DecisionNone {
		return nil, fmt.Errorf("%w: none", ErrInvalidDecision)
	}
	return []byte(d.String()), nil
}

func (d *Decision) UnmarshalText(b []byte) error {
	v, err := ParseDecision(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Channel is the medium a scenario arrives through.
type Channel uint8

const (
	Email Channel = iota + 1
	Chat
	SMS
	Phone
	Physical
	SocialMedia
)

func (c Channel) String() string {
	switch c {
	case Email:
		return "Email"
	case Chat:
		return "Chat"
	case SMS:
		return "SMS"
	case Phone:
		return "Phone"
	case Physical:
		return "Physical"
	case SocialMedia:
		return "Social Media"
	}
	return fmt.Sprintf("Channel(%d)", uint8(c))
}

// ParseChannel accepts the catalog spelling of a channel.
func ParseChannel(s string) (Channel, error) {
	switch s {
	case "Email":
		return Email, nil
	case "Chat":
		return Chat, nil
	case "SMS":
		return SMS, nil
	case "Phone":
		return Phone, nil
	case "Physical":
		return Physical, nil
	case "Social Media":
		return SocialMedia, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidChannel, s)
}

func (c Channel) MarshalText() ([]byte, error) {
	if _, err := ParseChannel(c.String()); err != nil {
		return nil, err
	}
	return []byte(c.String()), nil
}

func (c *Channel) UnmarshalText(b []byte) error {
	v, err := ParseChannel(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Feedback is the text shown once a scenario has been answered.
type Feedback struct {
	Correct   string `yaml:"correct" json:"correct"`
	Incorrect string `yaml:"incorrect" json:"incorrect"`
	Tip       string `yaml:"tip" json:"tip"`
}

// Scenario is one social-engineering prompt with a single correct response.
type Scenario struct {
	ID            int      `yaml:"id" json:"id"`
	CharacterID   string   `yaml:"character_id" json:"characterId"`
	Channel       Channel  `yaml:"channel" json:"channel"`
	Title         string   `yaml:"title" json:"title"`
	Content       string   `yaml:"content" json:"content"`
	CorrectChoice Decision `yaml:"correct_choice" json:"correctChoice"`
	AttackType    string   `yaml:"attack_type" json:"attackType"`
	Feedback      Feedback `yaml:"feedback" json:"feedback"`
}

// Character is someone the player meets in a scenario.
type Character struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
	Role string `yaml:"role" json:"role"`
}

// Mistake records an incorrect decision together with its scenario.
type Mistake struct {
	Scenario Scenario `yaml:"scenario" json:"scenario"`
	Choice   Decision `yaml:"choice" json:"choice"`
}

// TrainingMaterial is a study card for the training room.
type TrainingMaterial struct {
	ID          string   `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Example     string   `yaml:"example" json:"example"`
	Tip         string   `yaml:"tip" json:"tip"`
	Identifiers []string `yaml:"identifiers" json:"identifiers"`
}

// LeaderboardEntry is one finished playthrough.
type LeaderboardEntry struct {
	ID        string    `yaml:"id" json:"id"`
	UserID    string    `yaml:"user_id" json:"userId"`
	Username  string    `yaml:"username" json:"username"`
	Score     int       `yaml:"score" json:"score"`
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
}
