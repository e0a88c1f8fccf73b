package query

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/evergreen-health/recordkit/core/itemtypes"
	"github.com/evergreen-health/recordkit/core/thing"
)

func TestCompileEmpty(t *testing.T) {
	f, err := Compile("   ")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if f.TypeID != uuid.Nil || len(f.Tags) != 0 || f.Limit != 0 {
		t.Errorf("empty query must yield zero filter: %+v", f)
	}
}

func TestCompileSingleClauses(t *testing.T) {
	t.Run("type by name", func(t *testing.T) {
		f, err := Compile("type:weight")
		if err != nil {
			t.Fatalf("Compile failed: %v", err)
		}
		if f.TypeID != itemtypes.WeightTypeID {
			t.Errorf("TypeID = %s", f.TypeID)
		}
	})

	t.Run("type by uuid", func(t *testing.T) {
		f, err := Compile("type:" + itemtypes.MedicationTypeID.String())
		if err != nil {
			t.Fatalf("Compile failed: %v", err)
		}
		if f.TypeID != itemtypes.MedicationTypeID {
			t.Errorf("TypeID = %s", f.TypeID)
		}
	})

	t.Run("quoted tag", func(t *testing.T) {
		f, err := Compile(`tag:"morning run"`)
		if err != nil {
			t.Fatalf("Compile failed: %v", err)
		}
		if len(f.Tags) != 1 || f.Tags[0] != "morning run" {
			t.Errorf("Tags = %v", f.Tags)
		}
	})

	t.Run("bare tag", func(t *testing.T) {
		f, err := Compile("tag:fitness")
		if err != nil {
			t.Fatalf("Compile failed: %v", err)
		}
		if len(f.Tags) != 1 || f.Tags[0] != "fitness" {
			t.Errorf("Tags = %v", f.Tags)
		}
	})

	t.Run("state", func(t *testing.T) {
		f, err := Compile("state:deleted")
		if err != nil {
			t.Fatalf("Compile failed: %v", err)
		}
		if f.State != thing.StateDeleted {
			t.Errorf("State = %q", f.State)
		}
	})

	t.Run("dates", func(t *testing.T) {
		f, err := Compile("after:2024-01-01 and before:2024-06-30")
		if err != nil {
			t.Fatalf("Compile failed: %v", err)
		}
		if !f.After.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("After = %v", f.After)
		}
		if !f.Before.Equal(time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("Before = %v", f.Before)
		}
	})

	t.Run("limit", func(t *testing.T) {
		f, err := Compile("limit:25")
		if err != nil {
			t.Fatalf("Compile failed: %v", err)
		}
		if f.Limit != 25 {
			t.Errorf("Limit = %d", f.Limit)
		}
	})
}

func TestCompileCombined(t *testing.T) {
	f, err := Compile(`type:weight and tag:"fitness" and tag:morning and after:2024-01-01 and limit:10`)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if f.TypeID != itemtypes.WeightTypeID {
		t.Errorf("TypeID = %s", f.TypeID)
	}
	if len(f.Tags) != 2 || f.Tags[0] != "fitness" || f.Tags[1] != "morning" {
		t.Errorf("Tags = %v", f.Tags)
	}
	if f.After.IsZero() || f.Limit != 10 {
		t.Errorf("filter incomplete: %+v", f)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"unknown key", "color:red"},
		{"unknown type", "type:no-such-type"},
		{"duplicate type", "type:weight and type:height"},
		{"unknown state", "state:archived"},
		{"bad date", "after:not-a-date"},
		{"bad limit", "limit:zero"},
		{"negative limit", "limit:0"},
		{"dangling and", "type:weight and"},
		{"missing value", "type:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Compile(tt.query); err == nil {
				t.Errorf("expected error for %q", tt.query)
			}
		})
	}
}

func TestTypeNames(t *testing.T) {
	names := TypeNames()
	if len(names) != 16 {
		t.Fatalf("TypeNames = %d entries", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("names not sorted: %q before %q", names[i-1], names[i])
		}
	}
}
