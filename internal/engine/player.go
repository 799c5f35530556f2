package engine

// Role is the hidden team of a player.
type Role int

const (
	RoleGood Role = iota
	RoleBad
)

func (r Role) String() string {
	if r == RoleBad {
		return "bad"
	}
	return "good"
}

// TargetStatus is what a player knows about an end.
type TargetStatus int

const (
	StatusUnknown TargetStatus = iota
	StatusReal
	StatusFake
)

var statusNames = map[TargetStatus]string{
	StatusUnknown: "unknown",
	StatusReal:    "real",
	StatusFake:    "fake",
}

func (s TargetStatus) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "unknown"
}

// Player holds one player's state. Gold survives rounds, the rest is dealt anew.
type Player struct {
	Name    string                      `json:"name"`
	Gold    int                         `json:"gold"`
	Role    Role                        `json:"-"`
	Hand    []Card                      `json:"-"`
	Debuffs ToolSet                     `json:"-"`
	Ends    map[EndVariant]TargetStatus `json:"-"`
}

func NewPlayer(name string) *Player {
	p := &Player{Name: name}
	p.resetRound(RoleGood)
	return p
}

func (p *Player) resetRound(role Role) {
	p.Role = role
	p.Hand = nil
	p.Debuffs = 0
	p.Ends = make(map[EndVariant]TargetStatus, len(EndVariants))
	for _, v := range EndVariants {
		p.Ends[v] = StatusUnknown
	}
}

// Broken reports whether any tool of the player is debuffed.
func (p *Player) Broken() bool {
	return !p.Debuffs.Empty()
}

// HandIndex returns the position of the first card equal to c, or -1.
func (p *Player) HandIndex(c Card) int {
	if c == nil {
		return -1
	}
	for i, h := range p.Hand {
		if c.Equal(h) {
			return i
		}
	}
	return -1
}

// RemoveFromHand removes the first card equal to c, returns true if found.
func (p *Player) RemoveFromHand(c Card) bool {
	i := p.HandIndex(c)
	if i < 0 {
		return false
	}
	p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
	return true
}
