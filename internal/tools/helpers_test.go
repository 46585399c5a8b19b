package tools

import (
	"reflect"
	"testing"
)

// --- parseItems ---

func TestParseItems_ValidArray(t *testing.T) {
	raw := `[{"id": "BL-1", "title": "Reminders", "category": "notifications"}]`
	items, err := parseItems(raw)
	if err != nil {
		t.Fatalf("parseItems failed: %v", err)
	}
	if len(items) != 1 || items[0].ID != "BL-1" || items[0].Category != "notifications" {
		t.Errorf("items = %+v, want the decoded item", items)
	}
}

func TestParseItems_EmptyInputIsNil(t *testing.T) {
	items, err := parseItems("   ")
	if err != nil {
		t.Fatalf("parseItems failed: %v", err)
	}
	if items != nil {
		t.Errorf("items = %v, want nil for empty input", items)
	}
}

func TestParseItems_RejectsNonArray(t *testing.T) {
	if _, err := parseItems(`{"id": "BL-1"}`); err == nil {
		t.Error("expected error for a JSON object")
	}
}

func TestParseItems_RejectsMissingID(t *testing.T) {
	if _, err := parseItems(`[{"title": "No id"}]`); err == nil {
		t.Error("expected error for an item without id")
	}
}

func TestParseItems_RejectsMissingTitle(t *testing.T) {
	if _, err := parseItems(`[{"id": "BL-1"}]`); err == nil {
		t.Error("expected error for an item without title")
	}
}

// --- parseList ---

func TestParseList_JSONArray(t *testing.T) {
	got := parseList(`["NOT a marketplace", "NOT a social network"]`)
	want := []string{"NOT a marketplace", "NOT a social network"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseList = %v, want %v", got, want)
	}
}

func TestParseList_NewlineFallback(t *testing.T) {
	got := parseList("NOT a marketplace\n\n  NOT a social network  \n")
	want := []string{"NOT a marketplace", "NOT a social network"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseList = %v, want %v", got, want)
	}
}

func TestParseList_Empty(t *testing.T) {
	if got := parseList(""); got != nil {
		t.Errorf("parseList = %v, want nil", got)
	}
}
