package ingest

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/cortexai/roster/internal/store"
)

// RoleHint assigns Role when an extracted name contains Contains.
type RoleHint struct {
	Contains string
	Role     string
}

// Rules drive name and role extraction. Patterns and fallback roles are
// keyed by speaker id.
type Rules struct {
	NamePatterns  map[string]*regexp.Regexp
	RoleHints     []RoleHint
	FallbackRoles map[string]string
}

// DefaultRules recognise the participants of the bundled traffic-stop
// transcript.
func DefaultRules() Rules {
	return Rules{
		NamePatterns: map[string]*regexp.Regexp{
			"S1": regexp.MustCompile(`(?i)Officer Johnson`),
			"S2": regexp.MustCompile(`(?i)Robert Chen`),
			"S4": regexp.MustCompile(`(?i)Sergeant Martinez`),
		},
		RoleHints: []RoleHint{
			{Contains: "Officer", Role: "Police Officer"},
			{Contains: "Sergeant", Role: "Police Sergeant"},
			{Contains: "Chen", Role: "Civilian Driver"},
		},
		FallbackRoles: map[string]string{
			"S2": "Civilian Driver",
			"S3": "Witness",
		},
	}
}

// InitialName is the name a speaker has until a name is extracted.
func InitialName(speakerID string) string {
	if len(speakerID) > 1 {
		return "Speaker " + speakerID[1:]
	}
	return "Speaker " + speakerID
}

// BuildStore creates a store whose people table holds one person per
// speaker, keyed by the final extracted name. A nil or empty transcript
// yields an empty store.
func BuildStore(t *Transcript, rules Rules) *store.Context {
	if t == nil || len(t.Segments) == 0 {
		log.Warn().Msg("transcript is empty or has no segments")
		return store.New(nil)
	}

	st := store.New(map[string]any{
		"metadata": t.Metadata,
		"language": t.Language,
		"segments": len(t.Segments),
	})

	bySpeaker := make(map[string]*store.Person)
	var order []string
	for _, seg := range t.Segments {
		if seg.Speaker == "" {
			continue
		}
		p, ok := bySpeaker[seg.Speaker]
		if !ok {
			p = &store.Person{Name: InitialName(seg.Speaker), SpeakerID: seg.Speaker}
			bySpeaker[seg.Speaker] = p
			order = append(order, seg.Speaker)
			log.Debug().Str("speaker_id", seg.Speaker).Str("name", p.Name).Msg("identified speaker")
		}
		p.AddQuote(seg.Text)
		rules.apply(p, seg)
	}

	people := st.People()
	for _, id := range order {
		people.Insert(bySpeaker[id])
	}
	st.Set(store.KeyTranscriptProcessed, true)
	st.Set(store.KeyTranscriptMetadata, t.Metadata)

	log.Info().
		Int("segments", len(t.Segments)).
		Int("people", people.Len()).
		Msg("transcript ingested")
	return st
}

// apply updates p from one of its segments. A name found in the text
// replaces the current name and resets the role from the hints; otherwise
// an empty role takes the speaker's fallback.
func (r Rules) apply(p *store.Person, seg Segment) {
	if re, ok := r.NamePatterns[seg.Speaker]; ok {
		if name := re.FindString(seg.Text); name != "" {
			if name != p.Name {
				log.Debug().Str("speaker_id", seg.Speaker).Str("name", name).Msg("extracted speaker name")
				p.Name = name
				if role := r.roleFor(name); role != "" {
					p.Role = role
				}
			}
			return
		}
	}
	if p.Role == "" {
		p.Role = r.FallbackRoles[seg.Speaker]
	}
}

func (r Rules) roleFor(name string) string {
	for _, h := range r.RoleHints {
		if strings.Contains(name, h.Contains) {
			return h.Role
		}
	}
	return ""
}
