package memory

import "testing"

func TestPayloadMerge(t *testing.T) {
	t.Run("ExtraOverridesStandardField", func(t *testing.T) {
		p := Payload{
			FeatureType: "extrude",
			Label:       "Boss",
			Extra:       map[string]any{"label": "Renamed", "operator": "jane"},
		}

		m := p.Map()

		if m["label"] != "Renamed" {
			t.Fatalf("Expected extension field to win, got %v", m["label"])
		}
		if m["feature_type"] != "extrude" {
			t.Fatalf("Expected standard field to survive, got %v", m["feature_type"])
		}
		if m["operator"] != "jane" {
			t.Fatalf("Expected extension field to pass through, got %v", m["operator"])
		}
	})

	t.Run("MissingFieldsTolerated", func(t *testing.T) {
		p := payloadFromMap(map[string]any{"feature_type": "fillet"})

		if p.FeatureType != "fillet" {
			t.Fatalf("Expected feature type, got %q", p.FeatureType)
		}
		if p.Timestamp != "" || p.Label != "" {
			t.Fatalf("Expected missing fields to stay empty, got %+v", p)
		}
	})

	t.Run("OddlyTypedStandardFieldLandsInExtra", func(t *testing.T) {
		p := payloadFromMap(map[string]any{"label": 42})

		if p.Label != "" {
			t.Fatalf("Expected label to stay empty, got %q", p.Label)
		}
		if p.Extra["label"] != 42 {
			t.Fatalf("Expected odd value preserved in Extra, got %v", p.Extra["label"])
		}
	})
}

func TestRenderParams(t *testing.T) {
	t.Run("EmptyAndNil", func(t *testing.T) {
		if renderParams(nil) != "{}" {
			t.Fatalf("Expected {} for nil params")
		}
		if renderParams(map[string]any{}) != "{}" {
			t.Fatalf("Expected {} for empty params")
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		params := map[string]any{"width": 0.1, "height": 0.2, "depth": 0.3}

		a := renderParams(params)
		b := renderParams(params)

		if a != b {
			t.Fatalf("Expected deterministic rendering, got %q and %q", a, b)
		}
		if a != `{"depth":0.3,"height":0.2,"width":0.1}` {
			t.Fatalf("Unexpected rendering %q", a)
		}
	})
}
