package tools

import (
	"encoding/json"

	"github.com/cortexai/roster/internal/store"
)

// Status distinguishes a successful call from the domain outcomes a handler
// reports as data rather than as an error.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusNoChange  Status = "no_change"
	StatusNoMatches Status = "no_matches"
	StatusNotFound  Status = "not_found"
	StatusSelfMerge Status = "self_merge"
)

// Match is one lookup_person hit.
type Match struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	Description string `json:"description"`
}

// Result is the structured value a handler returns to the model.
type Result struct {
	Status           Status            `json:"status"`
	Message          string            `json:"message,omitempty"`
	PersonName       string            `json:"person_name,omitempty"`
	MergedPersonName string            `json:"merged_person_name,omitempty"`
	Details          string            `json:"details,omitempty"`
	Person           *store.PersonView `json:"person,omitempty"`
	Results          []Match           `json:"-"`
	Count            int               `json:"count,omitempty"`
}

// MarshalJSON emits results whenever the slice is non-nil, so a lookup
// with no matches still carries an empty list.
func (r Result) MarshalJSON() ([]byte, error) {
	type plain Result
	out := struct {
		plain
		Results *[]Match `json:"results,omitempty"`
	}{plain: plain(r)}
	if r.Results != nil {
		out.Results = &r.Results
	}
	return json.Marshal(out)
}

func (r *Result) UnmarshalJSON(b []byte) error {
	type plain Result
	var in struct {
		plain
		Results []Match `json:"results"`
	}
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*r = Result(in.plain)
	r.Results = in.Results
	return nil
}

// OK reports whether the call changed or found something.
func (r *Result) OK() bool {
	return r != nil && r.Status == StatusSuccess
}

func succeeded(p store.PersonView) *Result {
	return &Result{
		Status:     StatusSuccess,
		PersonName: p.Name,
		Details:    p.String(),
		Person:     &p,
	}
}

func record(st *store.Context, op Name, summary string, extra map[string]any) {
	values := map[string]any{
		store.KeyLastOperation:     string(op),
		store.KeyLastResultSummary: summary,
	}
	for k, v := range extra {
		values[k] = v
	}
	st.Update(values)
}
