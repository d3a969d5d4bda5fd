package store

import (
	"fmt"
	"slices"
)

// Person is a participant record. ID is assigned once at creation; Name is
// the lookup key inside the People table and may change.
type Person struct {
	ID          string
	Name        string
	Description string
	Role        string
	SpeakerID   string
	Quotes      []string
}

// Field names accepted by AddData.
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldRole        = "role"
	FieldSpeakerID   = "speaker_id"
)

// AddData overwrites every recognised attribute present in fields.
// Unknown keys are ignored.
func (p *Person) AddData(fields map[string]string) {
	for key, value := range fields {
		switch key {
		case FieldName:
			p.Name = value
		case FieldDescription:
			p.Description = value
		case FieldRole:
			p.Role = value
		case FieldSpeakerID:
			p.SpeakerID = value
		}
	}
}

// AddQuote appends text without de-duplication.
func (p *Person) AddQuote(text string) {
	p.Quotes = append(p.Quotes, text)
}

// Merge folds other into p: scalar fields are taken from other only where p
// is empty, and quotes missing from p are appended in order. The receiver is
// returned; other is left untouched.
func (p *Person) Merge(other *Person) *Person {
	if other == nil {
		return p
	}
	if p.Name == "" {
		p.Name = other.Name
	}
	if p.Description == "" {
		p.Description = other.Description
	}
	if p.Role == "" {
		p.Role = other.Role
	}
	if p.SpeakerID == "" {
		p.SpeakerID = other.SpeakerID
	}
	for _, q := range other.Quotes {
		if !slices.Contains(p.Quotes, q) {
			p.Quotes = append(p.Quotes, q)
		}
	}
	return p
}

func (p *Person) String() string {
	return p.View().String()
}

// PersonView is the serialised form of a Person.
type PersonView struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Role        string   `json:"role"`
	SpeakerID   string   `json:"speaker_id"`
	Quotes      []string `json:"quotes"`
}

func (v PersonView) String() string {
	return fmt.Sprintf("Person(name='%s', description='%s', role='%s', quotes=%d)",
		v.Name, v.Description, v.Role, len(v.Quotes))
}

// View returns a detached copy safe to marshal while the table keeps changing.
func (p *Person) View() PersonView {
	quotes := make([]string, len(p.Quotes))
	copy(quotes, p.Quotes)
	return PersonView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Role:        p.Role,
		SpeakerID:   p.SpeakerID,
		Quotes:      quotes,
	}
}
