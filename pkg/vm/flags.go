package vm

import "strings"

// PropFlags describes visibility and mutability of one property.
type PropFlags uint16

const (
	// FlagNoEnum hides the property from enumeration.
	FlagNoEnum PropFlags = 1 << 0
	// FlagNoDelete protects the property from deletion.
	FlagNoDelete PropFlags = 1 << 1
	// FlagReadOnly protects the property from assignment.
	FlagReadOnly PropFlags = 1 << 2

	// FlagOnlySWF6Up hides the property below SWF 6.
	FlagOnlySWF6Up PropFlags = 1 << 7
	// FlagIgnoreSWF6 hides the property in SWF 6 only.
	FlagIgnoreSWF6 PropFlags = 1 << 8
	// FlagOnlySWF7Up hides the property below SWF 7.
	FlagOnlySWF7Up PropFlags = 1 << 10
	// FlagOnlySWF8Up hides the property below SWF 8.
	FlagOnlySWF8Up PropFlags = 1 << 12
	// FlagOnlySWF9Up hides the property below SWF 9.
	FlagOnlySWF9Up PropFlags = 1 << 13

	// FlagsDefault is used for members created by the engine itself.
	FlagsDefault = FlagNoEnum | FlagNoDelete

	versionMask = FlagOnlySWF6Up | FlagIgnoreSWF6 | FlagOnlySWF7Up | FlagOnlySWF8Up | FlagOnlySWF9Up
)

// Test reports whether all bits of mask are set.
func (f PropFlags) Test(mask PropFlags) bool { return f&mask == mask }

func (f PropFlags) ReadOnly() bool { return f&FlagReadOnly != 0 }
func (f PropFlags) NoDelete() bool { return f&FlagNoDelete != 0 }
func (f PropFlags) NoEnum() bool   { return f&FlagNoEnum != 0 }

// SetFlags clears the bits in clear, then sets the bits in set. It always
// succeeds; honouring read-only or no-delete is the caller's business.
func (f *PropFlags) SetFlags(set, clear PropFlags) bool {
	*f = (*f &^ clear) | set
	return true
}

// Visible reports whether a property carrying these flags can be seen by
// code running at the given SWF version.
func (f PropFlags) Visible(version int) bool {
	if f&FlagOnlySWF6Up != 0 && version < 6 {
		return false
	}
	if f&FlagIgnoreSWF6 != 0 && version == 6 {
		return false
	}
	if f&FlagOnlySWF7Up != 0 && version < 7 {
		return false
	}
	if f&FlagOnlySWF8Up != 0 && version < 8 {
		return false
	}
	if f&FlagOnlySWF9Up != 0 && version < 9 {
		return false
	}
	return true
}

// ClearVisible strips the version gates once a property has been written,
// making it visible from then on. At SWF 6 FlagOnlySWF6Up is kept.
func (f *PropFlags) ClearVisible(version int) {
	if version == 6 {
		*f &^= FlagIgnoreSWF6 | FlagOnlySWF7Up | FlagOnlySWF8Up | FlagOnlySWF9Up
		return
	}
	*f &^= versionMask
}

var flagNames = []struct {
	flag PropFlags
	name string
}{
	{FlagNoEnum, "noEnum"},
	{FlagNoDelete, "noDelete"},
	{FlagReadOnly, "readOnly"},
	{FlagOnlySWF6Up, "onlySWF6Up"},
	{FlagIgnoreSWF6, "ignoreSWF6"},
	{FlagOnlySWF7Up, "onlySWF7Up"},
	{FlagOnlySWF8Up, "onlySWF8Up"},
	{FlagOnlySWF9Up, "onlySWF9Up"},
}

func (f PropFlags) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	for _, n := range flagNames {
		if f&n.flag != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}
