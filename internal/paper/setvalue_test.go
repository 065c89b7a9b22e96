package paper

import (
	"errors"
	"testing"
	"time"
)

func TestSetValue_EmptyHandling(t *testing.T) {
	tests := []struct {
		name       string
		value      any
		allowEmpty bool
		want       string
	}{
		{"non-empty overwrites", "New Title", false, "New Title"},
		{"empty ignored", "", false, "Old Title"},
		{"empty allowed clears", "", true, ""},
		{"undefined marker ignored", "undefined", false, "Old Title"},
		{"undefined marker ignored even when empty allowed", "undefined", true, "Old Title"},
		{"nil ignored", nil, false, "Old Title"},
		{"nil allowed clears", nil, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(false)
			e.Title = "Old Title"
			if err := e.SetValue("title", tt.value, tt.allowEmpty, false); err != nil {
				t.Fatalf("SetValue() error = %v", err)
			}
			if e.Title != tt.want {
				t.Errorf("Title = %q, want %q", e.Title, tt.want)
			}
		})
	}
}

func TestSetValue_NonStringFields(t *testing.T) {
	e := New(false)
	e.Rating = 3
	e.Flag = true

	// Zero values are empty and do not overwrite.
	if err := e.SetValue("rating", 0, false, false); err != nil {
		t.Fatalf("SetValue(rating) error = %v", err)
	}
	if e.Rating != 3 {
		t.Errorf("Rating = %d, want 3", e.Rating)
	}
	if err := e.SetValue("flag", false, false, false); err != nil {
		t.Fatalf("SetValue(flag) error = %v", err)
	}
	if !e.Flag {
		t.Error("Flag should still be true")
	}

	if err := e.SetValue("rating", 0, true, false); err != nil {
		t.Fatalf("SetValue(rating, allowEmpty) error = %v", err)
	}
	if e.Rating != 0 {
		t.Errorf("Rating = %d, want 0", e.Rating)
	}

	// JSON numbers arrive as float64.
	if err := e.SetValue("pubType", float64(PubTypeConference), false, false); err != nil {
		t.Fatalf("SetValue(pubType) error = %v", err)
	}
	if e.PubType != PubTypeConference {
		t.Errorf("PubType = %d, want %d", e.PubType, PubTypeConference)
	}

	when := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	if err := e.SetValue("addTime", when, false, false); err != nil {
		t.Fatalf("SetValue(addTime) error = %v", err)
	}
	if !e.AddTime.Equal(when) {
		t.Errorf("AddTime = %v, want %v", e.AddTime, when)
	}
}

func TestSetValue_CopiesLists(t *testing.T) {
	e := New(false)
	urls := []string{"a.pdf", "b.pdf"}
	tags := []Tag{NewTag("ml", 1)}

	if err := e.SetValue("supURLs", urls, false, false); err != nil {
		t.Fatalf("SetValue(supURLs) error = %v", err)
	}
	if err := e.SetValue("tags", tags, false, false); err != nil {
		t.Fatalf("SetValue(tags) error = %v", err)
	}

	urls[0] = "changed.pdf"
	tags[0].Name = "changed"

	if e.SupURLs[0] != "a.pdf" {
		t.Errorf("SupURLs[0] = %q, want a.pdf (list must be copied)", e.SupURLs[0])
	}
	if e.Tags[0].Name != "ml" {
		t.Errorf("Tags[0].Name = %q, want ml (list must be copied)", e.Tags[0].Name)
	}
}

func TestSetValue_Errors(t *testing.T) {
	e := New(false)

	err := e.SetValue("nonsense", "x", false, false)
	if !errors.Is(err, ErrUnknownField) {
		t.Errorf("SetValue(nonsense) error = %v, want ErrUnknownField", err)
	}

	err = e.SetValue("title", 42, false, false)
	if !errors.Is(err, ErrFieldType) {
		t.Errorf("SetValue(title, 42) error = %v, want ErrFieldType", err)
	}

	err = e.SetValue("rating", 2.5, false, false)
	if !errors.Is(err, ErrFieldType) {
		t.Errorf("SetValue(rating, 2.5) error = %v, want ErrFieldType", err)
	}
}

func TestSetValue_Format(t *testing.T) {
	input := "Bounds for <math><mi>x</mi><mo>=</mo><mn>2</mn></math> graphs"

	formatted := New(false)
	if err := formatted.SetValue("title", input, false, true); err != nil {
		t.Fatalf("SetValue() error = %v", err)
	}
	if want := "Bounds for $x=2$ graphs"; formatted.Title != want {
		t.Errorf("Title = %q, want %q", formatted.Title, want)
	}

	raw := New(false)
	if err := raw.SetValue("title", input, false, false); err != nil {
		t.Fatalf("SetValue() error = %v", err)
	}
	if raw.Title != input {
		t.Errorf("Title = %q, want unchanged %q", raw.Title, input)
	}
}
