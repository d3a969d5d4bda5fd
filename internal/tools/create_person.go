package tools

import (
	"context"
	"fmt"

	"github.com/cortexai/roster/internal/store"
)

type CreatePersonArgs struct {
	Name        string `json:"name" jsonschema_description:"The person's name"`
	Description string `json:"description,omitempty" jsonschema_description:"A description of the person"`
	Role        string `json:"role,omitempty" jsonschema_description:"The person's role"`
	SpeakerID   string `json:"speaker_id,omitempty" jsonschema_description:"The person's speaker ID"`
}

// CreatePersonTool inserts a new person keyed by name.
func CreatePersonTool() Tool {
	return New(CreatePerson, "Create a new Person object in the context.", HandleCreatePerson)
}

// HandleCreatePerson stores a new person. A person already registered under
// the same name is replaced.
func HandleCreatePerson(_ context.Context, st *store.Context, args CreatePersonArgs) (*Result, error) {
	if err := requireStore(st, CreatePerson); err != nil {
		return nil, err
	}

	p := st.People().Insert(&store.Person{
		Name:        args.Name,
		Description: args.Description,
		Role:        args.Role,
		SpeakerID:   args.SpeakerID,
	})
	record(st, CreatePerson, fmt.Sprintf("Created person: %s", p.Name), nil)
	return succeeded(p), nil
}
