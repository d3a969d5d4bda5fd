package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/cortexai/roster/internal/store"
)

// UpdatePersonArgs uses pointers so an absent field is distinguishable from
// an empty one. Only quote is additive; every other field overwrites.
type UpdatePersonArgs struct {
	PersonName  string  `json:"person_name" jsonschema_description:"The name of the person to update"`
	Name        *string `json:"name,omitempty" jsonschema_description:"Updated name"`
	Description *string `json:"description,omitempty" jsonschema_description:"Updated description"`
	Role        *string `json:"role,omitempty" jsonschema_description:"Updated role"`
	SpeakerID   *string `json:"speaker_id,omitempty" jsonschema_description:"Updated speaker ID"`
	Quote       *string `json:"quote,omitempty" jsonschema_description:"A quote to add to the person"`
}

// fields returns the scalar updates to apply. A name equal to the current
// one is not an update.
func (a UpdatePersonArgs) fields() map[string]string {
	out := make(map[string]string)
	if a.Name != nil && *a.Name != a.PersonName {
		out[store.FieldName] = *a.Name
	}
	if a.Description != nil {
		out[store.FieldDescription] = *a.Description
	}
	if a.Role != nil {
		out[store.FieldRole] = *a.Role
	}
	if a.SpeakerID != nil {
		out[store.FieldSpeakerID] = *a.SpeakerID
	}
	return out
}

func UpdatePersonTool() Tool {
	return New(UpdatePerson, "Update a Person's data or add a quote.", HandleUpdatePerson)
}

// HandleUpdatePerson applies a partial update. A rename re-keys the person
// table in the same locked step as the field writes.
func HandleUpdatePerson(_ context.Context, st *store.Context, args UpdatePersonArgs) (*Result, error) {
	if err := requireStore(st, UpdatePerson); err != nil {
		return nil, err
	}

	people := st.People()
	if !people.Has(args.PersonName) {
		return notFound(args.PersonName), nil
	}

	fields := args.fields()
	if len(fields) == 0 && args.Quote == nil {
		return &Result{
			Status:     StatusNoChange,
			PersonName: args.PersonName,
			Message:    fmt.Sprintf("No updates provided for %s", args.PersonName),
		}, nil
	}

	p, err := people.Modify(args.PersonName, func(p *store.Person) {
		p.AddData(fields)
		if args.Quote != nil {
			p.AddQuote(*args.Quote)
		}
	})
	if errors.Is(err, store.ErrNotFound) {
		return notFound(args.PersonName), nil
	}
	if err != nil {
		return nil, err
	}

	record(st, UpdatePerson, fmt.Sprintf("Updated person: %s", p.Name), nil)
	return succeeded(p), nil
}

func notFound(name string) *Result {
	return &Result{
		Status:     StatusNotFound,
		PersonName: name,
		Message:    fmt.Sprintf("Person '%s' not found. Cannot update.", name),
	}
}
