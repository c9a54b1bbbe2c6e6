// Package engine implements the memory lifecycle engine (C9): the
// orchestrator that composes C1-C8 into add/search/update/delete/getAll/
// getHistory. Grounded on the teacher's pkg/core/memory.go Client, which
// wires embedder+LLM+storage behind the same five-ish method surface;
// generalized here to also run the classify -> conflict-detect ->
// merge-or-insert pipeline spec.md §4.9 names. Embedding calls go through
// pkg/retry; LLM and store calls are made once, without retry. Add and
// Update serialize through pkg/lock.
package engine

// Scalar is the tagged property-bag value spec.md §9 asks for in place of
// untyped map[string]any: Null | Bool | Int | Float | String | List<Scalar>.
type Scalar struct {
	Null   bool
	Bool   *bool
	Int    *int64
	Float  *float64
	String *string
	List   []Scalar
}

// StringScalar wraps a string value.
func StringScalar(s string) Scalar { return Scalar{String: &s} }

// IntScalar wraps an int64 value.
func IntScalar(i int64) Scalar { return Scalar{Int: &i} }

// FloatScalar wraps a float64 value.
func FloatScalar(f float64) Scalar { return Scalar{Float: &f} }

// BoolScalar wraps a bool value.
func BoolScalar(b bool) Scalar { return Scalar{Bool: &b} }

// Category is the closed memory category set, re-exported from classifier
// so callers of this package need not import it directly.
type Category string

const (
	CategoryPreference   Category = "PREFERENCE"
	CategoryFact         Category = "FACT"
	CategoryEvent        Category = "EVENT"
	CategorySkill        Category = "SKILL"
	CategoryRelationship Category = "RELATIONSHIP"
	CategoryHealth       Category = "HEALTH"
	CategoryOther        Category = "OTHER"
)

// Memory is the central entity spec.md §3 defines.
type Memory struct {
	ID              string
	UserID          string
	Content         string
	Embedding       []float32
	Category        Category
	Importance      float64
	CreatedAt       int64 // unix nanos
	UpdatedAt       int64
	LastAccessedAt  int64
	AccessCount     int64
	SupersededBy    string // empty when active
	Properties      map[string]Scalar
	Score           float64 // populated on search results only
}

// Active reports whether this memory is not soft-deleted via supersession.
func (m Memory) Active() bool {
	return m.SupersededBy == ""
}
