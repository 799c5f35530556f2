package engine

import (
	"fmt"
	"strings"
)

// Direction is one of the four connector sides of a cell.
type Direction int

const (
	Up Direction = iota
	Right
	Down
	Left
)

// Directions lists every direction in connector order.
var Directions = [...]Direction{Up, Right, Down, Left}

var directionNames = map[Direction]string{
	Up:    "up",
	Right: "right",
	Down:  "down",
	Left:  "left",
}

func (d Direction) String() string {
	if s, ok := directionNames[d]; ok {
		return s
	}
	return "unknown"
}

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	return (d + 2) % 4
}

// Delta returns the unit coordinate offset of the direction.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, 1
	case Right:
		return 1, 0
	case Down:
		return 0, -1
	case Left:
		return -1, 0
	}
	return 0, 0
}

// ParseDirection accepts the lowercase direction names.
func ParseDirection(s string) (Direction, error) {
	for d, name := range directionNames {
		if strings.EqualFold(name, s) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: direction %q", ErrUnknownName, s)
}

// DirectionSet is a bitmask of connector sides.
type DirectionSet uint8

func NewDirectionSet(dirs ...Direction) DirectionSet {
	var s DirectionSet
	for _, d := range dirs {
		s |= 1 << d
	}
	return s
}

func (s DirectionSet) Has(d Direction) bool {
	return s&(1<<d) != 0
}

// Flip rotates every connector by half a turn.
func (s DirectionSet) Flip() DirectionSet {
	var out DirectionSet
	for _, d := range Directions {
		if s.Has(d) {
			out |= 1 << d.Flip()
		}
	}
	return out
}

func (s DirectionSet) Len() int {
	n := 0
	for _, d := range Directions {
		if s.Has(d) {
			n++
		}
	}
	return n
}

// Directions returns the members in connector order.
func (s DirectionSet) Directions() []Direction {
	out := make([]Direction, 0, 4)
	for _, d := range Directions {
		if s.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

// Strings returns the member names in connector order.
func (s DirectionSet) Strings() []string {
	dirs := s.Directions()
	out := make([]string, len(dirs))
	for i, d := range dirs {
		out[i] = d.String()
	}
	return out
}

func (s DirectionSet) String() string {
	return strings.Join(s.Strings(), ",")
}

// ParseDirectionSet builds a set from direction names.
func ParseDirectionSet(names []string) (DirectionSet, error) {
	var s DirectionSet
	for _, n := range names {
		d, err := ParseDirection(n)
		if err != nil {
			return 0, err
		}
		s |= 1 << d
	}
	return s, nil
}

// Point is an absolute board coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Step returns the adjacent point in direction d.
func (p Point) Step(d Direction) Point {
	dx, dy := d.Delta()
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Neighbors returns the four axis-adjacent points in connector order.
func (p Point) Neighbors() []Point {
	out := make([]Point, 0, 4)
	for _, d := range Directions {
		out = append(out, p.Step(d))
	}
	return out
}

// DirectionTo reports the direction from p to an axis-adjacent point q.
func (p Point) DirectionTo(q Point) (Direction, bool) {
	for _, d := range Directions {
		if p.Step(d) == q {
			return d, true
		}
	}
	return 0, false
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}
