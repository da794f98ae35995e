package types

import (
	"errors"
	"sort"

	"github.com/Manu343726/escarabajo/pkg/utils"
)

var ErrDuplicateName = errors.New("duplicate name in type registry")

// Owns every enum, scalar field type and enum map of one ISA description.
// A registry is built once at table-definition time and passed by reference
// into every downstream builder; there is no process-wide type state.
type Registry struct {
	enums    map[string]*Enum
	scalars  map[string]*FieldType
	enumMaps map[[2]string]*EnumMap
}

func NewRegistry() *Registry {
	return &Registry{
		enums:    make(map[string]*Enum),
		scalars:  make(map[string]*FieldType),
		enumMaps: make(map[[2]string]*EnumMap),
	}
}

// Builds and registers an enum type
func (r *Registry) DefineEnum(name string, elems []EnumElem, isBitset bool, numBits int) (*Enum, error) {
	if _, dup := r.enums[name]; dup {
		return nil, utils.MakeError(ErrDuplicateName, "enum '%v'", name)
	}

	e, err := NewEnum(name, elems, isBitset, numBits)

	if err != nil {
		return nil, err
	}

	r.enums[name] = e
	return e, nil
}

// Builds and registers a truncated subtype view of a registered enum
func (r *Registry) DefineEnumSubtype(name string, parent *Enum, numBits int) (*Enum, error) {
	if _, dup := r.enums[name]; dup {
		return nil, utils.MakeError(ErrDuplicateName, "enum '%v'", name)
	}

	e, err := NewEnumSubtype(name, parent, numBits)

	if err != nil {
		return nil, err
	}

	r.enums[name] = e
	return e, nil
}

// Registers a scalar field type. Types with paired transforms are probed at
// registration: every representable decoded value must round-trip through
// encode and decode, so encode/decode drift is caught at build time rather
// than in a disassembly diff.
func (r *Registry) DefineScalar(t *FieldType) (*FieldType, error) {
	if _, dup := r.scalars[t.Name]; dup {
		return nil, utils.MakeError(ErrDuplicateName, "scalar type '%v'", t.Name)
	}

	if t.Transform != nil {
		if t.Transform.Encode == nil || t.Transform.Decode == nil {
			return nil, utils.MakeError(ErrBadTransform, "type '%v' declares only one direction", t.Name)
		}

		if err := probeTransform(t); err != nil {
			return nil, err
		}
	}

	r.scalars[t.Name] = t
	return t, nil
}

const maxTransformProbes = 1 << 8

func probeTransform(t *FieldType) error {
	domain := uint64(1) << t.DecodedBits()
	if domain > maxTransformProbes {
		domain = maxTransformProbes
	}

	for value := uint64(0); value < domain; value++ {
		encoded := t.Transform.Encode(value)

		if t.Check != nil && t.Check(encoded) != nil {
			continue
		}

		if encoded > utils.AllOnes[uint64](t.NumBits) {
			continue
		}

		if decoded := t.Transform.Decode(encoded); decoded != value {
			return utils.MakeError(ErrBadTransform, "type '%v': %v encodes to %v but decodes back to %v", t.Name, value, encoded, decoded)
		}
	}

	return nil
}

// Builds and registers an enum map; at most one map per (from, to) pair
func (r *Registry) DefineEnumMap(from *Enum, to *Enum, pairs [][2]string, passZero []string) (*EnumMap, error) {
	key := [2]string{from.Name, to.Name}

	if _, dup := r.enumMaps[key]; dup {
		return nil, utils.MakeError(ErrDuplicateName, "enum map '%v' -> '%v'", from.Name, to.Name)
	}

	m, err := NewEnumMap(from, to, pairs, passZero)

	if err != nil {
		return nil, err
	}

	r.enumMaps[key] = m
	return m, nil
}

// Returns the registered map between two enum types, if one was declared
func (r *Registry) EnumMapFor(from *Enum, to *Enum) (*EnumMap, bool) {
	m, found := r.enumMaps[[2]string{from.Name, to.Name}]
	return m, found
}

// Returns a registered enum by name
func (r *Registry) Enum(name string) (*Enum, bool) {
	e, found := r.enums[name]
	return e, found
}

// Registered enums sorted by name
func (r *Registry) Enums() []*Enum {
	names := make([]string, 0, len(r.enums))

	for name := range r.enums {
		names = append(names, name)
	}

	sort.Strings(names)

	enums := make([]*Enum, len(names))

	for i, name := range names {
		enums[i] = r.enums[name]
	}

	return enums
}

// Registered scalar types sorted by name
func (r *Registry) Scalars() []*FieldType {
	names := make([]string, 0, len(r.scalars))

	for name := range r.scalars {
		names = append(names, name)
	}

	sort.Strings(names)

	scalars := make([]*FieldType, len(names))

	for i, name := range names {
		scalars[i] = r.scalars[name]
	}

	return scalars
}

// Returns a registered scalar type by name
func (r *Registry) Scalar(name string) (*FieldType, bool) {
	t, found := r.scalars[name]
	return t, found
}
