package index

// Field names a governance field that every touched package must fill in.
type Field string

const (
	FieldOwners     Field = "owners"
	FieldInvariants Field = "invariants"
)

// RequiredFields lists governance fields in the order they are reported.
var RequiredFields = []Field{FieldOwners, FieldInvariants}

// Entry is one package of the index. Owners and Invariants keep the order
// written in the file; Extra holds the schema-defined fields the checker does
// not interpret.
type Entry struct {
	Owners     []string
	Invariants []string
	Extra      map[string]any
}

// Values returns the list stored under f.
func (e *Entry) Values(f Field) []string {
	if e == nil {
		return nil
	}
	switch f {
	case FieldOwners:
		return e.Owners
	case FieldInvariants:
		return e.Invariants
	}
	return nil
}

// Document is the in-memory form of AI_INDEX.yml. Path is where it was
// loaded from.
//
// Raw is the whole file normalized to JSON-shaped values and is what the
// schema validator sees. Packages is a lenient typed view of raw.packages:
// a null entry is kept as a nil *Entry so it is still counted as declared.
// KeyOrder records the package keys in the order they appear in the file.
type Document struct {
	Path     string
	Raw      any
	Packages map[string]*Entry
	KeyOrder []string
}

// Has reports whether key is declared under packages.
func (d *Document) Has(key string) bool {
	if d == nil {
		return false
	}
	_, ok := d.Packages[key]
	return ok
}

// Entry returns the entry for key (nil for null or undeclared entries).
func (d *Document) Entry(key string) *Entry {
	if d == nil {
		return nil
	}
	return d.Packages[key]
}
