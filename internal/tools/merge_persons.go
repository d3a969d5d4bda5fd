package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/cortexai/roster/internal/store"
)

type MergePersonsArgs struct {
	SourceName string `json:"source_name" jsonschema_description:"The name of the source person"`
	TargetName string `json:"target_name" jsonschema_description:"The name of the target person to merge into"`
}

func MergePersonsTool() Tool {
	return New(MergePersons, "Merge two Person objects, combining their data.", HandleMergePersons)
}

// HandleMergePersons folds source into target and deletes source. A merge of
// a name into itself is rejected before either name is looked up.
func HandleMergePersons(_ context.Context, st *store.Context, args MergePersonsArgs) (*Result, error) {
	if err := requireStore(st, MergePersons); err != nil {
		return nil, err
	}

	if args.SourceName == args.TargetName {
		return &Result{
			Status:     StatusSelfMerge,
			PersonName: args.SourceName,
			Message:    fmt.Sprintf("Cannot merge person '%s' into themself.", args.SourceName),
		}, nil
	}

	people := st.People()
	for _, side := range []struct{ label, name string }{
		{"Source", args.SourceName},
		{"Target", args.TargetName},
	} {
		if !people.Has(side.name) {
			return &Result{
				Status:     StatusNotFound,
				PersonName: side.name,
				Message:    fmt.Sprintf("%s person '%s' not found. Cannot merge.", side.label, side.name),
			}, nil
		}
	}

	target, err := people.Merge(args.SourceName, args.TargetName)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return &Result{Status: StatusNotFound, Message: err.Error()}, nil
	case err != nil:
		return nil, err
	}

	record(st, MergePersons, fmt.Sprintf("Merged '%s' into '%s'", args.SourceName, args.TargetName),
		map[string]any{
			store.KeyMergedFrom: args.SourceName,
			store.KeyMergedTo:   args.TargetName,
		})

	res := succeeded(target)
	res.MergedPersonName = target.Name
	return res, nil
}
