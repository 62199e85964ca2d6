// Package resource defines the declarative resource descriptors that drive the
// JSON:API layer. A Descriptor is built once at startup for every entity type
// and registered in a Registry; nothing in this package is mutated after that.
package resource

import "sort"

// RelationKind describes how a relationship is stored.
type RelationKind int

const (
	// BelongsTo means the foreign key lives on this resource's own table.
	BelongsTo RelationKind = iota
	// HasOne means a single related row holds the foreign key back to us.
	HasOne
	// HasMany means related rows hold the foreign key back to us.
	HasMany
	// ManyThrough means the link goes through a join table.
	ManyThrough
)

// String returns the string representation of the relation kind.
func (k RelationKind) String() string {
	switch k {
	case BelongsTo:
		return "belongs_to"
	case HasOne:
		return "has_one"
	case HasMany:
		return "has_many"
	case ManyThrough:
		return "many_through"
	default:
		return "unknown"
	}
}

// ToMany reports whether linkage data for this kind is an array.
// Cardinality is fixed per relationship and never inferred from fetched values.
func (k RelationKind) ToMany() bool {
	return k == HasMany || k == ManyThrough
}

// Relationship describes one declared relationship of a resource.
type Relationship struct {
	Name       string
	TargetType string
	Kind       RelationKind

	// ForeignKey is the FK column on this table (BelongsTo) or on the
	// target table (HasOne, HasMany).
	ForeignKey string

	// Join table configuration for ManyThrough.
	JoinTable string
	SelfKey   string // join column referencing this resource
	TargetKey string // join column referencing the target
	OrderBy   string // optional join column to order targets by
}

// ToMany reports whether the relationship's linkage is an array.
func (r Relationship) ToMany() bool { return r.Kind.ToMany() }

// JoinAttribute surfaces a join-row column as a synthetic attribute when the
// resource is rendered under a specific parent context. Lookup failures and
// absent join rows mean the attribute is simply omitted.
type JoinAttribute struct {
	Name       string // wire attribute name
	ParentType string // parent context type that triggers the lookup
	JoinTable  string
	ParentKey  string // join column holding the parent id
	ChildKey   string // join column holding this resource's id
	Column     string // join column surfaced as the attribute value
	Bool       bool   // coerce the value to a boolean (drivers return 0/1)
}

// Descriptor is the immutable per-type specification consumed by the
// serializer, payload parser and inclusion builder.
type Descriptor struct {
	TypeName  string
	TableName string

	// Attributes are the exposed attribute names, in wire order.
	Attributes []string

	Relationships map[string]Relationship

	// RelationshipFKs maps relationship names (and accepted aliases) to the
	// foreign-key column they populate on write.
	RelationshipFKs map[string]string

	// TypeAliases are extra accepted values for data.type on writes, in
	// addition to the canonical name and its plural.
	TypeAliases []string

	// AutoInclude lists child relationships that are always expanded one
	// level when a resource of this type lands in an included array.
	AutoInclude []string

	JoinAttributes []JoinAttribute

	// DateAttributes are parsed leniently on write (unparsable input
	// becomes null). DateTimeAttributes reject unparsable non-empty input.
	DateAttributes     []string
	DateTimeAttributes []string

	// ReadOnlyAttributes are stripped from inbound payloads.
	ReadOnlyAttributes []string
}

// AcceptedTypeNames returns the sorted set of data.type values this resource
// accepts on write: the canonical name, its plural, and any aliases.
func (d *Descriptor) AcceptedTypeNames() []string {
	seen := map[string]bool{
		d.TypeName:            true,
		Pluralize(d.TypeName): true,
	}
	for _, a := range d.TypeAliases {
		seen[a] = true
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// AcceptsTypeName reports whether t is an accepted data.type value.
func (d *Descriptor) AcceptsTypeName(t string) bool {
	if t == d.TypeName || t == Pluralize(d.TypeName) {
		return true
	}
	for _, a := range d.TypeAliases {
		if a == t {
			return true
		}
	}
	return false
}

// Relationship looks up a declared relationship by name.
func (d *Descriptor) Relationship(name string) (Relationship, bool) {
	rel, ok := d.Relationships[name]
	return rel, ok
}

// RelationshipNames returns the declared relationship names, sorted.
func (d *Descriptor) RelationshipNames() []string {
	names := make([]string, 0, len(d.Relationships))
	for n := range d.Relationships {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// HasAttribute reports whether name is a declared attribute.
func (d *Descriptor) HasAttribute(name string) bool {
	for _, a := range d.Attributes {
		if a == name {
			return true
		}
	}
	return false
}

// IsReadOnly reports whether name is stripped from inbound payloads.
func (d *Descriptor) IsReadOnly(name string) bool {
	for _, a := range d.ReadOnlyAttributes {
		if a == name {
			return true
		}
	}
	return false
}

// Columns returns the table columns owned by this descriptor: the declared
// attributes plus any foreign-key columns that are not already attributes.
// Incoming reverse foreign keys are contributed by other descriptors and are
// resolved by the schema generator, not here.
func (d *Descriptor) Columns() []string {
	cols := make([]string, 0, len(d.Attributes)+len(d.RelationshipFKs))
	seen := make(map[string]bool, len(d.Attributes))
	for _, a := range d.Attributes {
		cols = append(cols, a)
		seen[a] = true
	}
	fks := make([]string, 0, len(d.RelationshipFKs))
	for _, fk := range d.RelationshipFKs {
		if !seen[fk] {
			seen[fk] = true
			fks = append(fks, fk)
		}
	}
	sort.Strings(fks)
	return append(cols, fks...)
}
