package schedule

import "fmt"

// Day is one of the fixed weekly days, in roster order.
type Day int

const (
	Lunes Day = iota
	Martes
	Miercoles
	Jueves
	Viernes
	Sabado
	Domingo
)

var dayNames = [...]string{
	"Lunes",
	"Martes",
	"Miércoles",
	"Jueves",
	"Viernes",
	"Sábado",
	"Domingo",
}

// Days returns the full day enumeration in canonical order.
func Days() []Day {
	out := make([]Day, len(dayNames))
	for i := range dayNames {
		out[i] = Day(i)
	}
	return out
}

// String returns the Spanish day name used on the wire and in availability text.
func (d Day) String() string {
	if d < 0 || int(d) >= len(dayNames) {
		return fmt.Sprintf("Day(%d)", int(d))
	}
	return dayNames[d]
}

// Valid reports whether d belongs to the enumeration.
func (d Day) Valid() bool {
	return d >= 0 && int(d) < len(dayNames)
}

// ParseDay resolves a day name back into its enum value.
func ParseDay(name string) (Day, error) {
	for i, n := range dayNames {
		if n == name {
			return Day(i), nil
		}
	}
	return 0, fmt.Errorf("unknown day %q", name)
}

// TimeBlock is one of the fixed two-hour blocks, in chronological order.
type TimeBlock int

const (
	Block0608 TimeBlock = iota
	Block0810
	Block1012
	Block1214
	Block1416
	Block1618
	Block1820
	Block2022
)

var blockLabels = [...]string{
	"06:00 - 08:00",
	"08:00 - 10:00",
	"10:00 - 12:00",
	"12:00 - 14:00",
	"14:00 - 16:00",
	"16:00 - 18:00",
	"18:00 - 20:00",
	"20:00 - 22:00",
}

// Blocks returns the full time-block enumeration in canonical order.
func Blocks() []TimeBlock {
	out := make([]TimeBlock, len(blockLabels))
	for i := range blockLabels {
		out[i] = TimeBlock(i)
	}
	return out
}

// String returns the block label used in availability text.
func (b TimeBlock) String() string {
	if b < 0 || int(b) >= len(blockLabels) {
		return fmt.Sprintf("TimeBlock(%d)", int(b))
	}
	return blockLabels[b]
}

// Valid reports whether b belongs to the enumeration.
func (b TimeBlock) Valid() bool {
	return b >= 0 && int(b) < len(blockLabels)
}

// ParseBlock resolves a block label back into its enum value.
func ParseBlock(label string) (TimeBlock, error) {
	for i, l := range blockLabels {
		if l == label {
			return TimeBlock(i), nil
		}
	}
	return 0, fmt.Errorf("unknown time block %q", label)
}

// Cell identifies one selectable (day, block) pair.
type Cell struct {
	Day   Day       `json:"dia"`
	Block TimeBlock `json:"bloque"`
}

// Grid holds the set of selected cells. The zero value is an empty grid.
// Membership is boolean; toggling a selected cell deselects it.
type Grid struct {
	selected map[Cell]struct{}
}

// NewGrid returns an empty grid.
func NewGrid() *Grid {
	return &Grid{selected: make(map[Cell]struct{})}
}

// Toggle flips membership of the (day, block) cell. Two toggles cancel out.
// Values outside the enumerations are a programming error.
func (g *Grid) Toggle(day Day, block TimeBlock) error {
	if !day.Valid() || !block.Valid() {
		return fmt.Errorf("cell (%v, %v) outside the fixed enumerations", day, block)
	}
	if g.selected == nil {
		g.selected = make(map[Cell]struct{})
	}
	cell := Cell{Day: day, Block: block}
	if _, ok := g.selected[cell]; ok {
		delete(g.selected, cell)
	} else {
		g.selected[cell] = struct{}{}
	}
	return nil
}

// IsSelected reports membership of the (day, block) cell.
func (g *Grid) IsSelected(day Day, block TimeBlock) bool {
	if g == nil || g.selected == nil {
		return false
	}
	_, ok := g.selected[Cell{Day: day, Block: block}]
	return ok
}

// Count returns the number of selected cells. A save requires Count > 0.
func (g *Grid) Count() int {
	if g == nil {
		return 0
	}
	return len(g.selected)
}

// Cells returns the selected cells in canonical order: day enumeration
// order, then block enumeration order within each day. Iteration never
// depends on map order.
func (g *Grid) Cells() []Cell {
	if g == nil || len(g.selected) == 0 {
		return nil
	}
	out := make([]Cell, 0, len(g.selected))
	for _, day := range Days() {
		for _, block := range Blocks() {
			if g.IsSelected(day, block) {
				out = append(out, Cell{Day: day, Block: block})
			}
		}
	}
	return out
}
