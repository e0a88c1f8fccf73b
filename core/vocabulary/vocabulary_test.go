package vocabulary

import (
	"strings"
	"testing"

	"github.com/evergreen-health/recordkit/core/types"
	"github.com/evergreen-health/recordkit/core/xml"
)

func testVocabulary(t *testing.T) *Vocabulary {
	t.Helper()
	key, err := NewKey("reactions", "wc", "1")
	if err != nil {
		t.Fatalf("NewKey failed: %v", err)
	}
	v := New(key)
	for _, item := range []Item{
		{Value: "hives", DisplayText: "Hives", Abbreviation: "HV"},
		{Value: "anaphylaxis", DisplayText: "Anaphylactic shock"},
		{Value: "rash"},
	} {
		if err := v.Add(item); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	return v
}

func TestKeyValidation(t *testing.T) {
	if _, err := NewKey("", "wc", "1"); err == nil {
		t.Error("expected error for empty name")
	}
	key, err := NewKey("reactions", "", "")
	if err != nil {
		t.Fatalf("NewKey failed: %v", err)
	}
	if key.String() != "reactions" {
		t.Errorf("String() = %q", key.String())
	}
}

func TestFindAndCodable(t *testing.T) {
	v := testVocabulary(t)

	item, err := v.Find("hives")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if item.DisplayText != "Hives" {
		t.Errorf("DisplayText = %q", item.DisplayText)
	}

	if _, err := v.Find("swelling"); err == nil {
		t.Error("expected error for unknown code")
	}

	cv, err := v.Codable("anaphylaxis")
	if err != nil {
		t.Fatalf("Codable failed: %v", err)
	}
	if cv.Text != "Anaphylactic shock" {
		t.Errorf("Text = %q", cv.Text)
	}
	if len(cv.Codes) != 1 || cv.Codes[0].Type != "reactions" || cv.Codes[0].Family != "wc" {
		t.Errorf("Codes = %+v", cv.Codes)
	}

	// Display text falls back to the code value.
	cv, err = v.Codable("rash")
	if err != nil {
		t.Fatalf("Codable failed: %v", err)
	}
	if cv.Text != "rash" {
		t.Errorf("Text = %q", cv.Text)
	}
}

func TestItemsSorted(t *testing.T) {
	v := testVocabulary(t)
	items := v.Items()
	if len(items) != 3 {
		t.Fatalf("Items = %d", len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i-1].Value > items[i].Value {
			t.Errorf("items not sorted: %q before %q", items[i-1].Value, items[i].Value)
		}
	}
}

func TestVocabularyRoundTrip(t *testing.T) {
	v := testVocabulary(t)

	w := xml.NewWriter()
	if err := v.WriteXml(w); err != nil {
		t.Fatalf("WriteXml failed: %v", err)
	}
	data, err := w.Bytes()
	if err != nil {
		t.Fatalf("writer state invalid: %v", err)
	}
	if !strings.Contains(string(data), "<code-value>hives</code-value>") {
		t.Fatalf("unexpected output:\n%s", data)
	}

	node, err := xml.ParseFragment(data)
	if err != nil {
		t.Fatalf("ParseFragment failed: %v", err)
	}
	var parsed Vocabulary
	if err := parsed.ParseXml(node); err != nil {
		t.Fatalf("ParseXml failed: %v", err)
	}
	if parsed.Key != v.Key {
		t.Errorf("key lost: %+v", parsed.Key)
	}
	if parsed.Len() != 3 {
		t.Errorf("Len = %d", parsed.Len())
	}
	item, err := parsed.Find("hives")
	if err != nil || item.Abbreviation != "HV" {
		t.Errorf("item lost: %+v (%v)", item, err)
	}
}

func TestStoreResolve(t *testing.T) {
	store := NewStore()
	store.Add(testVocabulary(t))

	t.Run("resolves from known vocabulary", func(t *testing.T) {
		cv := &types.CodableValue{Codes: []types.CodedValue{
			{Value: "hives", Type: "reactions", Family: "wc", Version: "1"},
		}}
		if err := store.Resolve(cv); err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if cv.Text != "Hives" {
			t.Errorf("Text = %q", cv.Text)
		}
	})

	t.Run("existing text untouched", func(t *testing.T) {
		cv := types.NewCodableValue("user wording")
		if err := store.Resolve(cv); err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if cv.Text != "user wording" {
			t.Errorf("Text = %q", cv.Text)
		}
	})

	t.Run("unknown vocabulary fails", func(t *testing.T) {
		cv := &types.CodableValue{Codes: []types.CodedValue{
			{Value: "x", Type: "no-such-vocab"},
		}}
		if err := store.Resolve(cv); err == nil {
			t.Error("expected error for unresolvable code")
		}
	})

	t.Run("nil value rejected", func(t *testing.T) {
		if err := store.Resolve(nil); err == nil {
			t.Error("expected error for nil value")
		}
	})
}
