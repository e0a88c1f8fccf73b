package xml

import (
	"strings"
	"testing"
)

const sampleThing = `<thing>
  <thing-id version-stamp="c1e4f8c9-2b3a-4f6d-9a6e-111111111111">9f4b3c2a-8d7e-4a5b-b6c7-222222222222</thing-id>
  <type-id name="Weight Measurement">3d34d87e-7fc1-4153-800f-f56592cb0d17</type-id>
  <thing-state>Active</thing-state>
  <data-xml>
    <weight>
      <when><date><y>2024</y><m>3</m><d>14</d></date></when>
      <value><kg>72.5</kg></value>
    </weight>
  </data-xml>
</thing>`

func TestParseFragment(t *testing.T) {
	node, err := ParseFragment([]byte(sampleThing))
	if err != nil {
		t.Fatalf("ParseFragment failed: %v", err)
	}
	if node.Name() != "thing" {
		t.Errorf("root name = %q, want %q", node.Name(), "thing")
	}
}

func TestParseFragmentErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unclosed element", "<thing><data-xml></thing>"},
		{"no root element", "   "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseFragment([]byte(tt.input)); err == nil {
				t.Errorf("expected parse error for %q", tt.input)
			}
		})
	}
}

func TestNodeAccessors(t *testing.T) {
	node, err := ParseFragment([]byte(sampleThing))
	if err != nil {
		t.Fatalf("ParseFragment failed: %v", err)
	}

	t.Run("ChildText", func(t *testing.T) {
		if got := node.ChildText("thing-state"); got != "Active" {
			t.Errorf("ChildText(thing-state) = %q, want Active", got)
		}
		if got := node.ChildText("missing"); got != "" {
			t.Errorf("ChildText(missing) = %q, want empty", got)
		}
	})

	t.Run("Attr", func(t *testing.T) {
		id := node.Child("thing-id")
		if id == nil {
			t.Fatal("thing-id child missing")
		}
		if got := id.Attr("version-stamp"); got != "c1e4f8c9-2b3a-4f6d-9a6e-111111111111" {
			t.Errorf("version-stamp = %q", got)
		}
	})

	t.Run("nested child chain", func(t *testing.T) {
		kg := node.Child("data-xml").Child("weight").Child("value").ChildText("kg")
		if kg != "72.5" {
			t.Errorf("kg = %q, want 72.5", kg)
		}
	})

	t.Run("nil-safe navigation", func(t *testing.T) {
		var n *Node
		if n.Child("x") != nil || n.ChildText("x") != "" || n.Name() != "" {
			t.Errorf("nil node accessors should return zero values")
		}
		if node.Child("missing").ChildText("y") != "" {
			t.Errorf("navigation through missing child should be nil-safe")
		}
	})
}

func TestXPath(t *testing.T) {
	doc, err := Parse([]byte(sampleThing))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	node, err := doc.XPathFirst("//weight/value/kg")
	if err != nil {
		t.Fatalf("XPathFirst failed: %v", err)
	}
	if node == nil || node.Text() != "72.5" {
		t.Errorf("XPathFirst(//weight/value/kg) = %v", node)
	}

	nodes, err := doc.XPath("//thing/*")
	if err != nil {
		t.Fatalf("XPath failed: %v", err)
	}
	if len(nodes) != 4 {
		t.Errorf("XPath(//thing/*) returned %d nodes, want 4", len(nodes))
	}

	if _, err := doc.XPath("///bad["); err == nil {
		t.Errorf("expected error for invalid xpath")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"valid", sampleThing, true},
		{"mismatched tags", "<a><b></a></b>", false},
		{"truncated", "<thing><data-xml>", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate([]byte(tt.input))
			if result.Valid != tt.valid {
				t.Errorf("Validate(%q).Valid = %v, want %v", tt.input, result.Valid, tt.valid)
			}
			if !tt.valid && len(result.Errors) == 0 {
				t.Errorf("invalid input should report errors")
			}
		})
	}
}

func TestWriter(t *testing.T) {
	t.Run("simple element tree", func(t *testing.T) {
		w := NewWriter()
		w.StartElement("weight")
		w.StartElement("when")
		w.ElementString("date", "2024-03-14")
		w.EndElement()
		w.StartElement("value")
		w.ElementString("kg", "72.5")
		w.EndElement()
		w.EndElement()

		got, err := w.Bytes()
		if err != nil {
			t.Fatalf("Bytes failed: %v", err)
		}
		want := "<weight><when><date>2024-03-14</date></when><value><kg>72.5</kg></value></weight>"
		if string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("attributes", func(t *testing.T) {
		w := NewWriter()
		w.StartElement("thing-id")
		w.Attribute("version-stamp", "abc")
		w.Text("def")
		w.EndElement()
		got, err := w.Bytes()
		if err != nil {
			t.Fatalf("Bytes failed: %v", err)
		}
		want := `<thing-id version-stamp="abc">def</thing-id>`
		if string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("escaping", func(t *testing.T) {
		w := NewWriter()
		w.StartElement("note")
		w.Attribute("label", `a "b" & c`)
		w.Text("1 < 2 & 3 > 2")
		w.EndElement()
		got, err := w.Bytes()
		if err != nil {
			t.Fatalf("Bytes failed: %v", err)
		}
		if !strings.Contains(string(got), "&quot;b&quot;") {
			t.Errorf("attribute quotes not escaped: %q", got)
		}
		if !strings.Contains(string(got), "1 &lt; 2 &amp; 3 &gt; 2") {
			t.Errorf("text not escaped: %q", got)
		}
	})

	t.Run("self-closing empty element", func(t *testing.T) {
		w := NewWriter()
		w.StartElement("flags")
		w.EndElement()
		got, _ := w.Bytes()
		if string(got) != "<flags/>" {
			t.Errorf("got %q, want <flags/>", got)
		}
	})

	t.Run("optional element skipped when empty", func(t *testing.T) {
		w := NewWriter()
		w.StartElement("common")
		w.OptionalElementString("source", "")
		w.OptionalElementString("note", "hello")
		w.EndElement()
		got, _ := w.Bytes()
		if string(got) != "<common><note>hello</note></common>" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("unclosed element is an error", func(t *testing.T) {
		w := NewWriter()
		w.StartElement("thing")
		if _, err := w.Bytes(); err == nil {
			t.Errorf("expected unclosed element error")
		}
	})

	t.Run("late attribute is an error", func(t *testing.T) {
		w := NewWriter()
		w.StartElement("thing")
		w.Text("x")
		w.Attribute("a", "b")
		if w.Err() == nil {
			t.Errorf("expected error for attribute after content")
		}
	})
}

func TestWriterRoundTrip(t *testing.T) {
	w := NewWriter()
	w.StartElement("thing")
	w.StartElement("thing-id")
	w.Attribute("version-stamp", "v1")
	w.Text("id1")
	w.EndElement()
	w.ElementString("thing-state", "Active")
	w.EndElement()

	data, err := w.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}

	node, err := ParseFragment(data)
	if err != nil {
		t.Fatalf("ParseFragment failed on writer output: %v", err)
	}
	if node.ChildText("thing-state") != "Active" {
		t.Errorf("round trip lost thing-state")
	}
	if node.Child("thing-id").Attr("version-stamp") != "v1" {
		t.Errorf("round trip lost version-stamp attribute")
	}
}

func TestFormat(t *testing.T) {
	formatted, err := Format([]byte("<a><b>x</b><c/></a>"), "  ")
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	s := string(formatted)
	if !strings.Contains(s, "<a>") || !strings.Contains(s, "  <b>") {
		t.Errorf("unexpected formatting output:\n%s", s)
	}
}
