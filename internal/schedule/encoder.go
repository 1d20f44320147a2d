package schedule

import (
	"fmt"
	"strings"
)

const (
	daySeparator   = " | "
	blockSeparator = ", "
)

// Encode serializes the grid into its canonical availability text:
// per-day segments "Día: bloque1, bloque2" joined with " | ". Days with
// no selection are omitted; block order inside a day always follows the
// fixed enumeration, never toggle order. The output is a pure function
// of the selected set.
func Encode(g *Grid) string {
	if g == nil || g.Count() == 0 {
		return ""
	}

	segments := make([]string, 0, len(dayNames))
	for _, day := range Days() {
		var blocks []string
		for _, block := range Blocks() {
			if g.IsSelected(day, block) {
				blocks = append(blocks, block.String())
			}
		}
		if len(blocks) == 0 {
			continue
		}
		segments = append(segments, fmt.Sprintf("%s: %s", day, strings.Join(blocks, blockSeparator)))
	}
	return strings.Join(segments, daySeparator)
}

// Decode parses availability text back into a grid. Production flow only
// ever re-encodes from the live grid; Decode exists so the encoding stays
// round-trip verifiable.
func Decode(text string) (*Grid, error) {
	grid := NewGrid()
	text = strings.TrimSpace(text)
	if text == "" {
		return grid, nil
	}

	for _, segment := range strings.Split(text, daySeparator) {
		name, rest, found := strings.Cut(segment, ": ")
		if !found {
			return nil, fmt.Errorf("malformed day segment %q", segment)
		}
		day, err := ParseDay(name)
		if err != nil {
			return nil, err
		}
		for _, label := range strings.Split(rest, blockSeparator) {
			block, err := ParseBlock(label)
			if err != nil {
				return nil, err
			}
			if grid.IsSelected(day, block) {
				return nil, fmt.Errorf("duplicate block %q for %s", label, day)
			}
			if err := grid.Toggle(day, block); err != nil {
				return nil, err
			}
		}
	}
	return grid, nil
}
