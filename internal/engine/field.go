package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoAnchor         = errors.New("no reachable cell at build coordinate")
	ErrDeadlockAnchor   = errors.New("cannot build from a deadlock")
	ErrNoConnector      = errors.New("anchor has no open connector in that direction")
	ErrOccupied         = errors.New("cell already occupied")
	ErrTileMismatch     = errors.New("tile has no connector facing the anchor")
	ErrNeighborConflict = errors.New("tile conflicts with an adjacent cell")
	ErrCollapseStart    = errors.New("cannot collapse the start")
	ErrNotReachable     = errors.New("no reachable cell at coordinate")
	ErrNotTunnel        = errors.New("only tunnels can collapse")
)

// EndVariant names one of the three goal cells.
type EndVariant int

const (
	EndLeft EndVariant = iota
	EndCenter
	EndRight
)

// EndVariants lists the ends in board order.
var EndVariants = [...]EndVariant{EndLeft, EndCenter, EndRight}

var endNames = map[EndVariant]string{
	EndLeft:   "left",
	EndCenter: "center",
	EndRight:  "right",
}

var endPoints = map[EndVariant]Point{
	EndLeft:   {X: -2, Y: 8},
	EndCenter: {X: 0, Y: 8},
	EndRight:  {X: 2, Y: 8},
}

func (v EndVariant) String() string {
	if s, ok := endNames[v]; ok {
		return s
	}
	return "unknown"
}

// Point returns the fixed coordinate of the end.
func (v EndVariant) Point() Point {
	return endPoints[v]
}

func (v EndVariant) valid() bool {
	_, ok := endPoints[v]
	return ok
}

func ParseEndVariant(s string) (EndVariant, error) {
	for v, name := range endNames {
		if strings.EqualFold(name, s) {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: end %q", ErrUnknownName, s)
}

// CellKind distinguishes start, tunnel and end cells.
type CellKind int

const (
	CellStart CellKind = iota
	CellTunnel
	CellGold
	CellFake
)

var cellKindNames = map[CellKind]string{
	CellStart:  "start",
	CellTunnel: "tunnel",
	CellGold:   "gold",
	CellFake:   "fake",
}

func (k CellKind) String() string {
	if s, ok := cellKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// CellID indexes a cell in its field.
type CellID int

// NoCell marks an unfilled connector.
const NoCell CellID = -1

// Cell is a placed tile. The key set of outs is its geometry and never changes.
type Cell struct {
	ID        CellID
	Kind      CellKind
	Pos       Point
	Collapsed bool
	Deadlock  bool
	outs      map[Direction]CellID
}

func newCell(id CellID, kind CellKind, pos Point, outs DirectionSet, deadlock bool) *Cell {
	c := &Cell{
		ID:       id,
		Kind:     kind,
		Pos:      pos,
		Deadlock: deadlock,
		outs:     make(map[Direction]CellID, outs.Len()),
	}
	for _, d := range outs.Directions() {
		c.outs[d] = NoCell
	}
	return c
}

// Has reports whether the cell declares a connector toward d.
func (c *Cell) Has(d Direction) bool {
	_, ok := c.outs[d]
	return ok
}

// Link returns the neighbor attached toward d, if any.
func (c *Cell) Link(d Direction) (CellID, bool) {
	id, ok := c.outs[d]
	if !ok || id == NoCell {
		return NoCell, false
	}
	return id, true
}

// Connectors returns the declared directions.
func (c *Cell) Connectors() DirectionSet {
	var s DirectionSet
	for d := range c.outs {
		s |= 1 << d
	}
	return s
}

// Field is the board of one round. Cells live in an arena and refer to
// each other by ID.
type Field struct {
	cells     []*Cell
	start     CellID
	ends      map[EndVariant]CellID
	gold      EndVariant
	at        map[Point]CellID
	connected map[EndVariant]bool
}

// NewField lays out the start and the three ends with gold behind one of them.
func NewField(gold EndVariant) *Field {
	all := NewDirectionSet(Directions[:]...)
	f := &Field{
		gold:      gold,
		ends:      make(map[EndVariant]CellID, len(EndVariants)),
		at:        make(map[Point]CellID),
		connected: make(map[EndVariant]bool),
	}
	f.start = f.add(CellStart, Point{}, all, false).ID
	for _, v := range EndVariants {
		kind := CellFake
		if v == gold {
			kind = CellGold
		}
		f.ends[v] = f.add(kind, v.Point(), all, false).ID
	}
	return f
}

func (f *Field) add(kind CellKind, pos Point, outs DirectionSet, deadlock bool) *Cell {
	c := newCell(CellID(len(f.cells)), kind, pos, outs, deadlock)
	f.cells = append(f.cells, c)
	f.at[pos] = c.ID
	return c
}

func (f *Field) Cell(id CellID) *Cell {
	if id < 0 || int(id) >= len(f.cells) {
		return nil
	}
	return f.cells[id]
}

func (f *Field) Start() *Cell { return f.cells[f.start] }

func (f *Field) End(v EndVariant) *Cell {
	id, ok := f.ends[v]
	if !ok {
		return nil
	}
	return f.cells[id]
}

// Gold returns the end hiding the gold.
func (f *Field) Gold() EndVariant { return f.gold }

// Connected reports whether the end has been reached and linked in.
func (f *Field) Connected(v EndVariant) bool { return f.connected[v] }

// At returns the most recent cell placed at p, collapsed or not.
func (f *Field) At(p Point) *Cell {
	id, ok := f.at[p]
	if !ok {
		return nil
	}
	return f.cells[id]
}

// Cells returns the most recent cell of every occupied coordinate.
func (f *Field) Cells() []*Cell {
	out := make([]*Cell, 0, len(f.at))
	for _, c := range f.cells {
		if f.at[c.Pos] == c.ID {
			out = append(out, c)
		}
	}
	return out
}

// Scan returns the cell at p if it can be reached from the start.
func (f *Field) Scan(p Point) *Cell {
	found := f.scan([]Point{p})
	if len(found) == 0 {
		return nil
	}
	return found[0]
}

// FindNeighbors returns the reachable cells adjacent to p.
func (f *Field) FindNeighbors(p Point) []*Cell {
	return f.scan(p.Neighbors())
}

// scan walks filled links from the start. Collapsed cells are skipped
// without marking their coordinate, so a tunnel rebuilt there stays
// reachable. Deadlocks are reported when targeted but never walked through.
func (f *Field) scan(targets []Point) []*Cell {
	want := make(map[Point]bool, len(targets))
	for _, t := range targets {
		want[t] = true
	}
	watched := make(map[Point]bool)
	var found []*Cell

	stack := []CellID{f.start}
	for len(stack) > 0 && len(want) > 0 {
		c := f.cells[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]

		if c.Collapsed || watched[c.Pos] {
			continue
		}
		watched[c.Pos] = true
		if want[c.Pos] {
			found = append(found, c)
			delete(want, c.Pos)
		}
		if c.Deadlock {
			continue
		}
		for i := len(Directions) - 1; i >= 0; i-- {
			next, ok := c.Link(Directions[i])
			if !ok || watched[f.cells[next].Pos] {
				continue
			}
			stack = append(stack, next)
		}
	}
	return found
}

// Orient validates placing card next to the reachable cell at near in
// direction d and returns the connector layout it would be placed with.
func (f *Field) Orient(near Point, d Direction, card TunnelCard) (DirectionSet, error) {
	anchor := f.Scan(near)
	if anchor == nil {
		return 0, fmt.Errorf("%w: %s", ErrNoAnchor, near)
	}
	if anchor.Deadlock {
		return 0, ErrDeadlockAnchor
	}
	if !anchor.Has(d) {
		return 0, fmt.Errorf("%w: %s at %s", ErrNoConnector, d, near)
	}
	if id, ok := anchor.Link(d); ok && !f.cells[id].Collapsed {
		return 0, fmt.Errorf("%w: %s", ErrOccupied, near.Step(d))
	}

	target := near.Step(d)
	if c := f.At(target); c != nil && !c.Collapsed {
		return 0, fmt.Errorf("%w: %s", ErrOccupied, target)
	}

	back := d.Flip()
	outs := card.Outs
	if !outs.Has(back) {
		outs = outs.Flip()
		if !outs.Has(back) {
			return 0, ErrTileMismatch
		}
	}

	for _, side := range outs.Directions() {
		if side == back {
			continue
		}
		c := f.At(target.Step(side))
		if c == nil || c.Collapsed {
			continue
		}
		if !c.Has(side.Flip()) {
			return 0, fmt.Errorf("%w: %s side at %s", ErrNeighborConflict, side, target)
		}
	}
	return outs, nil
}

// PutNewTunnel places a tunnel at p and links it with every reachable
// neighbor whose connector faces it.
func (f *Field) PutNewTunnel(p Point, outs DirectionSet, deadlock bool) *Cell {
	c := f.add(CellTunnel, p, outs, deadlock)
	for _, n := range f.FindNeighbors(p) {
		f.link(n, c)
	}
	return c
}

// link connects two adjacent cells on both sides when both declare the
// facing connectors.
func (f *Field) link(from, to *Cell) bool {
	d, ok := from.Pos.DirectionTo(to.Pos)
	if !ok || !from.Has(d) || !to.Has(d.Flip()) {
		return false
	}
	from.outs[d] = to.ID
	to.outs[d.Flip()] = from.ID
	return true
}

// CheckFinishReached lists the ends sitting behind one of the cell's
// connectors.
func (f *Field) CheckFinishReached(c *Cell) []EndVariant {
	var out []EndVariant
	for _, v := range EndVariants {
		end := v.Point()
		for d := range c.outs {
			if c.Pos.Step(d) == end {
				out = append(out, v)
				break
			}
		}
	}
	return out
}

// ConnectFinish links a revealed end to its reachable neighbors. Calling
// it again is a no-op.
func (f *Field) ConnectFinish(v EndVariant) {
	if f.connected[v] || !v.valid() {
		return
	}
	f.connected[v] = true
	end := f.End(v)
	for _, n := range f.FindNeighbors(end.Pos) {
		f.link(n, end)
	}
}

// Collapse marks the reachable tunnel at p as collapsed.
func (f *Field) Collapse(p Point) error {
	if p == f.Start().Pos {
		return ErrCollapseStart
	}
	c := f.Scan(p)
	if c == nil {
		return fmt.Errorf("%w: %s", ErrNotReachable, p)
	}
	if c.Kind != CellTunnel {
		return fmt.Errorf("%w: %s is %s", ErrNotTunnel, p, c.Kind)
	}
	c.Collapsed = true
	return nil
}
