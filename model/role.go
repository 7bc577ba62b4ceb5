package model

// Role identifies one of the three fixed output tracks.
type Role int

const (
	MainTheme Role = iota
	Chord
	Base
)

// NoRole marks events that did not land on any track.
const NoRole Role = -1

const NumRoles = 3

var Roles = [NumRoles]Role{MainTheme, Chord, Base}

var roleNames = [NumRoles]string{"Main Theme", "Chord", "Base"}

func (r Role) String() string {
	if r == NoRole {
		return "none"
	}
	if r < 0 || int(r) >= NumRoles {
		return "Unknown"
	}
	return roleNames[r]
}

// Output holds the allocated notes of each role, indexed by Role.
type Output [NumRoles]Notes

func (o *Output) Total() int {
	var total int
	for _, notes := range o {
		total += len(notes)
	}
	return total
}
