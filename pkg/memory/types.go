// Package memory implements a per-part episodic memory.  Every feature
// operation performed on a tracked part (sketch, extrude, fillet, ...) is
// embedded into a vector and stored as a point in that part's collection,
// so later requests can recall either the most relevant or the full
// chronological history of the part.
package memory

import (
	"encoding/json"
	"fmt"
)

// Standard payload field names.  Everything beyond these is an
// extension field supplied by the caller.
const (
	fieldFeatureType = "feature_type"
	fieldLabel       = "label"
	fieldUserIntent  = "user_intent"
	fieldParameters  = "parameters"
	fieldTimestamp   = "timestamp"
	fieldDescription = "description"
)

// timestampLayout is a fixed-width UTC encoding so that plain string
// comparison orders payloads chronologically.
const timestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// Payload is the structured metadata stored alongside each point.  The
// schema is open ended: extension fields ride in Extra and, by explicit
// merge policy, overwrite a standard field of the same name when the
// payload is flattened for storage.
type Payload struct {
	FeatureType string
	Label       string
	UserIntent  string
	Parameters  map[string]any
	Timestamp   string
	Description string
	Extra       map[string]any
}

// Map flattens the payload for storage or transport.  Standard fields go
// in first, extension fields last so that a same-named extension wins.
func (p Payload) Map() map[string]any {
	out := map[string]any{
		fieldFeatureType: p.FeatureType,
		fieldLabel:       p.Label,
		fieldUserIntent:  p.UserIntent,
		fieldParameters:  p.Parameters,
		fieldTimestamp:   p.Timestamp,
		fieldDescription: p.Description,
	}
	for k, v := range p.Extra {
		out[k] = v
	}
	return out
}

// payloadFromMap rebuilds a Payload from a stored map, tolerating missing
// or oddly typed fields.  Anything that is not a well-formed standard
// field lands in Extra.
func payloadFromMap(raw map[string]any) Payload {
	p := Payload{}

	for k, v := range raw {
		switch k {
		case fieldFeatureType:
			if s, ok := v.(string); ok {
				p.FeatureType = s
				continue
			}
		case fieldLabel:
			if s, ok := v.(string); ok {
				p.Label = s
				continue
			}
		case fieldUserIntent:
			if s, ok := v.(string); ok {
				p.UserIntent = s
				continue
			}
		case fieldTimestamp:
			if s, ok := v.(string); ok {
				p.Timestamp = s
				continue
			}
		case fieldDescription:
			if s, ok := v.(string); ok {
				p.Description = s
				continue
			}
		case fieldParameters:
			if m, ok := v.(map[string]any); ok {
				p.Parameters = m
				continue
			}
		}

		if p.Extra == nil {
			p.Extra = map[string]any{}
		}
		p.Extra[k] = v
	}

	return p
}

// renderParams produces the canonical textual form of a parameter set.
// JSON marshaling sorts map keys, so the rendering is deterministic.
func renderParams(params map[string]any) string {
	if len(params) == 0 {
		return "{}"
	}

	b, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%v", params)
	}

	return string(b)
}
