// Package prompts holds the system prompts a session can start with,
// keyed by stable name.
package prompts

import "sort"

type Name string

const Default Name = "default_prompt"

// Fallback is used when a name is not registered.
const Fallback = "You are a helpful assistant."

const defaultPrompt = `You are a helpful assistant managing information about people.
Use the available tools to create, update, look up, or merge person records based on the user's request.
Available tools:
- create_person: create a new person record. Requires a name.
- update_person: change an existing person's details or add a quote. Requires the person's current name.
- lookup_person: find people by name or keyword. Requires a search term.
- merge_persons: combine two person records into one. Requires the source and target names.

Call a tool when the request needs one; otherwise answer naturally.`

var registry = map[Name]string{
	Default: defaultPrompt,
}

// Get returns the prompt registered under name, or Fallback.
func Get(name Name) string {
	if p, ok := registry[name]; ok {
		return p
	}
	return Fallback
}

// Lookup reports whether name is registered.
func Lookup(name Name) (string, bool) {
	p, ok := registry[name]
	return p, ok
}

func Names() []Name {
	out := make([]Name, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
