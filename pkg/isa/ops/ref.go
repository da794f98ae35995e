package ops

// Kind of storage an operand reference points at
type RefKind int

const (
	// The null reference: an absent operand
	RefKind_Null RefKind = iota
	// An architectural register
	RefKind_Register
	// An inline immediate value
	RefKind_Immediate
	// An internal forwarding channel between the phases of an instruction
	// group, not backed by the register file
	RefKind_Channel
	// A data request counter slot
	RefKind_Drc
)

func (k RefKind) String() string {
	switch k {
	case RefKind_Null:
		return "null"
	case RefKind_Register:
		return "register"
	case RefKind_Immediate:
		return "immediate"
	case RefKind_Channel:
		return "channel"
	case RefKind_Drc:
		return "drc"
	}

	panic("unreachable")
}

// One operand reference of an instruction: what it points at plus the
// reference-level modifier values riding on it
type Ref struct {
	Kind  RefKind
	Value uint64

	mods map[*ModType]uint64
}

// The null reference
func NullRef() Ref {
	return Ref{Kind: RefKind_Null}
}

// A register reference
func RegRef(index uint64) Ref {
	return Ref{Kind: RefKind_Register, Value: index}
}

// An immediate reference
func ImmRef(value uint64) Ref {
	return Ref{Kind: RefKind_Immediate, Value: value}
}

// An internal forwarding channel reference
func ChannelRef(channel uint64) Ref {
	return Ref{Kind: RefKind_Channel, Value: channel}
}

// A data request counter reference
func DrcRef(index uint64) Ref {
	return Ref{Kind: RefKind_Drc, Value: index}
}

func (r Ref) IsNull() bool {
	return r.Kind == RefKind_Null
}

// Returns a copy of the reference with a modifier value set
func (r Ref) WithMod(mod *ModType, value uint64) Ref {
	mods := make(map[*ModType]uint64, len(r.mods)+1)

	for k, v := range r.mods {
		mods[k] = v
	}

	mods[mod] = value
	r.mods = mods

	return r
}

// Returns a copy of the reference with a boolean modifier enabled
func (r Ref) WithFlag(mod *ModType) Ref {
	return r.WithMod(mod, 1)
}

// The value of a modifier on this reference, or the modifier default when
// never set
func (r Ref) Mod(mod *ModType) uint64 {
	if value, set := r.mods[mod]; set {
		return value
	}

	return mod.Default
}

// All modifiers explicitly set on this reference
func (r Ref) SetMods() []*ModType {
	mods := make([]*ModType, 0, len(r.mods))

	for mod := range r.mods {
		mods = append(mods, mod)
	}

	return mods
}
