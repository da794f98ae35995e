package types

import (
	"errors"
	"fmt"

	"github.com/Manu343726/escarabajo/pkg/utils"
)

var (
	ErrNoMapping          = errors.New("no mapping for enum value")
	ErrPassZeroNonBitset  = errors.New("pass-zero is only allowed when the source enum is a bitset")
	ErrNotBothBitsets     = errors.New("bit-remap enum maps require both enums to be bitsets")
)

// A declared, potentially partial, value-to-value mapping between two enum
// types, e.g. a semantic condition-code enum and its hardware bit encoding
type EnumMap struct {
	// Mapping name (for diagnostics)
	Name string
	// Source (semantic) enum
	From *Enum
	// Target (hardware) enum
	To *Enum
	// Both sides are bitset enums: values are remapped bit by bit instead
	// of through a table lookup, preserving unions
	BothBitsets bool
	// Value a source zero maps to, nil to map zero through the table
	PassZero *uint64

	table map[uint64]uint64
}

// Builds an enum map from (fromElem, toElem) name pairs. An optional
// passZero list names target elements whose union a source zero maps to;
// it is only legal when the source enum is a bitset.
func NewEnumMap(from *Enum, to *Enum, pairs [][2]string, passZero []string) (*EnumMap, error) {
	m := &EnumMap{
		Name:        fmt.Sprintf("%v_to_%v", from.Name, to.Name),
		From:        from,
		To:          to,
		BothBitsets: from.IsBitset && to.IsBitset,
		table:       make(map[uint64]uint64, len(pairs)),
	}

	for _, pair := range pairs {
		fromElem, err := from.Elem(pair[0])

		if err != nil {
			return nil, utils.MakeError(err, "source of enum map '%v'", m.Name)
		}

		toElem, err := to.Elem(pair[1])

		if err != nil {
			return nil, utils.MakeError(err, "target of enum map '%v'", m.Name)
		}

		m.table[fromElem.Value] = toElem.Value
	}

	if passZero != nil {
		if !from.IsBitset {
			return nil, utils.MakeError(ErrPassZeroNonBitset, "enum map '%v'", m.Name)
		}

		var union uint64
		for _, name := range passZero {
			elem, err := to.Elem(name)

			if err != nil {
				return nil, utils.MakeError(err, "pass-zero of enum map '%v'", m.Name)
			}

			union |= elem.Value
		}

		m.PassZero = &union
	}

	return m, nil
}

// Maps a source enum value to the target domain. Bitset pairs remap each set
// member bit individually; other pairs go through the declared table.
func (m *EnumMap) Apply(value uint64) (uint64, error) {
	if value == 0 && m.PassZero != nil {
		return *m.PassZero, nil
	}

	if m.BothBitsets {
		var mapped uint64

		for _, elem := range m.From.Elems {
			if elem.Value == 0 || value&elem.Value != elem.Value {
				continue
			}

			target, found := m.table[elem.Value]

			if !found {
				return 0, utils.MakeError(ErrNoMapping, "member '%v' in enum map '%v'", elem.Name, m.Name)
			}

			mapped |= target
			value &^= elem.Value
		}

		if value != 0 {
			return 0, utils.MakeError(ErrNoMapping, "unknown member bits %v in enum map '%v'", value, m.Name)
		}

		return mapped, nil
	}

	if mapped, found := m.table[value]; found {
		return mapped, nil
	}

	return 0, utils.MakeError(ErrNoMapping, "value %v in enum map '%v'", value, m.Name)
}
