// Package query parses the cache search filter language. A query is a
// list of key:value clauses joined by "and":
//
//	type:weight and tag:"fitness" and after:2024-01-01 and limit:50
//
// Supported keys: type (item type name or UUID), tag (repeatable),
// state (active/deleted), after/before (effective date bounds, dates as
// YYYY-MM-DD), and limit.
package query

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/google/uuid"

	"github.com/evergreen-health/recordkit/core/errors"
	"github.com/evergreen-health/recordkit/core/itemtypes"
	"github.com/evergreen-health/recordkit/core/thing"
	"github.com/evergreen-health/recordkit/internal/cache"
)

// typeNames maps friendly type names to type IDs.
var typeNames = map[string]uuid.UUID{
	"weight":           itemtypes.WeightTypeID,
	"height":           itemtypes.HeightTypeID,
	"blood-pressure":   itemtypes.BloodPressureTypeID,
	"heart-rate":       itemtypes.HeartRateTypeID,
	"exercise":         itemtypes.ExerciseTypeID,
	"medication":       itemtypes.MedicationTypeID,
	"allergic-episode": itemtypes.AllergicEpisodeTypeID,
	"condition":        itemtypes.ConditionTypeID,
	"immunization":     itemtypes.ImmunizationTypeID,
	"lab-test-results": itemtypes.LabTestResultsTypeID,
	"family-history":   itemtypes.FamilyHistoryTypeID,
	"emotion":          itemtypes.EmotionTypeID,
	"sleep-am":         itemtypes.SleepJournalAMTypeID,
	"device":           itemtypes.DeviceInfoTypeID,
	"payer":            itemtypes.InsurancePlanTypeID,
	"personal-image":   itemtypes.PersonalImageTypeID,
}

// TypeNames returns the friendly type names the parser accepts, sorted.
func TypeNames() []string {
	names := make([]string, 0, len(typeNames))
	for name := range typeNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type queryGrammar struct {
	First *clause   `parser:"@@"`
	Rest  []*clause `parser:"( \"and\" @@ )*"`
}

type clause struct {
	Key   string `parser:"@Ident \":\""`
	Value string `parser:"@(String|Date|Int|Ident)"`
}

var queryLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Date", Pattern: `\d{4}-\d{2}-\d{2}`},
	{Name: "Int", Pattern: `\d+`},
	{Name: "Ident", Pattern: `[a-zA-Z][a-zA-Z0-9_-]*`},
	{Name: "Punct", Pattern: `:`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var queryParser = participle.MustBuild[queryGrammar](
	participle.Lexer(queryLexer),
	participle.Elide("Whitespace"),
)

// Compile parses a query string into a cache filter.
func Compile(q string) (cache.Filter, error) {
	var f cache.Filter
	q = strings.TrimSpace(q)
	if q == "" {
		return f, nil
	}

	parsed, err := queryParser.ParseString("", q)
	if err != nil {
		return f, errors.Wrapf(err, "invalid query %q", q)
	}

	clauses := append([]*clause{parsed.First}, parsed.Rest...)
	for _, cl := range clauses {
		value := unquote(cl.Value)
		switch strings.ToLower(cl.Key) {
		case "type":
			typeID, err := resolveType(value)
			if err != nil {
				return f, err
			}
			if f.TypeID != uuid.Nil {
				return f, errors.NewValidation("type", "type given more than once")
			}
			f.TypeID = typeID
		case "tag":
			f.Tags = append(f.Tags, value)
		case "state":
			switch strings.ToLower(value) {
			case "active":
				f.State = thing.StateActive
			case "deleted":
				f.State = thing.StateDeleted
			default:
				return f, errors.NewValidation("state", fmt.Sprintf("unknown state %q", value))
			}
		case "after":
			ts, err := parseDate(value)
			if err != nil {
				return f, errors.NewValidation("after", err.Error())
			}
			f.After = ts
		case "before":
			ts, err := parseDate(value)
			if err != nil {
				return f, errors.NewValidation("before", err.Error())
			}
			f.Before = ts
		case "limit":
			limit, err := strconv.Atoi(value)
			if err != nil || limit < 1 {
				return f, errors.NewValidation("limit", fmt.Sprintf("invalid limit %q", value))
			}
			f.Limit = limit
		default:
			return f, errors.NewValidation("query", fmt.Sprintf("unknown key %q", cl.Key))
		}
	}
	return f, nil
}

func resolveType(value string) (uuid.UUID, error) {
	if typeID, ok := typeNames[strings.ToLower(value)]; ok {
		return typeID, nil
	}
	typeID, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, errors.NewValidation("type", fmt.Sprintf("unknown type %q", value))
	}
	return typeID, nil
}

func parseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		body := s[1 : len(s)-1]
		body = strings.ReplaceAll(body, `\"`, `"`)
		body = strings.ReplaceAll(body, `\\`, `\`)
		return body
	}
	return s
}
