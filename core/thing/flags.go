package thing

import "strings"

// State is the lifecycle state of an item on the service.
type State string

// Item states.
const (
	StateActive  State = "Active"
	StateDeleted State = "Deleted"
)

// Flags is the item flag bitmask carried in the <flags> element.
type Flags int

// Item flags.
const (
	// FlagPersonal marks an item the user flagged as personal;
	// applications without personal-data access never see it.
	FlagPersonal Flags = 0x1
	// FlagDownVersioned marks an item converted from a newer type
	// version; such items are read-only.
	FlagDownVersioned Flags = 0x2
	// FlagUpVersioned marks an item converted from an older type
	// version; updates must go through the latest version.
	FlagUpVersioned Flags = 0x4
	// FlagImmutable marks an item the service will never allow to
	// change (e.g., certain signed documents).
	FlagImmutable Flags = 0x8
	// FlagReadOnly marks an item the current record access rules do
	// not permit this application to modify.
	FlagReadOnly Flags = 0x10
)

// Has reports whether all bits in mask are set.
func (f Flags) Has(mask Flags) bool {
	return f&mask == mask
}

// IsWritable reports whether none of the read-only conditions apply.
func (f Flags) IsWritable() bool {
	return !f.Has(FlagDownVersioned) && !f.Has(FlagImmutable) && !f.Has(FlagReadOnly)
}

func (f Flags) String() string {
	if f == 0 {
		return "None"
	}
	var names []string
	for _, entry := range []struct {
		flag Flags
		name string
	}{
		{FlagPersonal, "Personal"},
		{FlagDownVersioned, "DownVersioned"},
		{FlagUpVersioned, "UpVersioned"},
		{FlagImmutable, "Immutable"},
		{FlagReadOnly, "ReadOnly"},
	} {
		if f.Has(entry.flag) {
			names = append(names, entry.name)
		}
	}
	return strings.Join(names, "|")
}

// Sections selects which parts of an item serialize and which were
// present when an item was fetched.
type Sections int

// Item sections.
const (
	SectionCore Sections = 1 << iota
	SectionAudits
	SectionTags
	SectionBlobPayload
	SectionEffectivePermissions
	SectionSignature

	// SectionsAll selects every section.
	SectionsAll = SectionCore | SectionAudits | SectionTags |
		SectionBlobPayload | SectionEffectivePermissions | SectionSignature

	// SectionsDefault is what new items serialize with.
	SectionsDefault = SectionsAll
)

// Has reports whether all bits in mask are set.
func (s Sections) Has(mask Sections) bool {
	return s&mask == mask
}
