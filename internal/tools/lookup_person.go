package tools

import (
	"context"
	"fmt"

	"github.com/cortexai/roster/internal/store"
)

type LookupPersonArgs struct {
	Keyword string `json:"keyword" jsonschema_description:"The name or keyword to search for"`
}

func LookupPersonTool() Tool {
	return New(LookupPerson, "Find a person by name or keyword in description.", HandleLookupPerson)
}

// HandleLookupPerson matches keyword case-insensitively against name,
// description and role. Matches are ordered by name.
func HandleLookupPerson(_ context.Context, st *store.Context, args LookupPersonArgs) (*Result, error) {
	if err := requireStore(st, LookupPerson); err != nil {
		return nil, err
	}

	found := st.People().Search(args.Keyword)
	matches := make([]Match, 0, len(found))
	for _, v := range found {
		matches = append(matches, Match{Name: v.Name, Role: v.Role, Description: v.Description})
	}

	record(st, LookupPerson, fmt.Sprintf("Found %d match(es) for '%s'", len(matches), args.Keyword),
		map[string]any{store.KeySearchKeyword: args.Keyword})

	if len(matches) == 0 {
		return &Result{
			Status:  StatusNoMatches,
			Message: fmt.Sprintf("No people found matching '%s'", args.Keyword),
			Results: matches,
		}, nil
	}
	return &Result{Status: StatusSuccess, Results: matches, Count: len(matches)}, nil
}
