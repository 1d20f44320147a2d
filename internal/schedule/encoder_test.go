package schedule

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeGrouping(t *testing.T) {
	grid := NewGrid()
	require.NoError(t, grid.Toggle(Lunes, Block1416))
	require.NoError(t, grid.Toggle(Miercoles, Block1012))
	require.NoError(t, grid.Toggle(Lunes, Block0810))

	assert.Equal(t, "Lunes: 08:00 - 10:00, 14:00 - 16:00 | Miércoles: 10:00 - 12:00", Encode(grid))
}

func TestEncodeDeterministic(t *testing.T) {
	grid := NewGrid()
	require.NoError(t, grid.Toggle(Sabado, Block2022))
	require.NoError(t, grid.Toggle(Martes, Block0608))

	first := Encode(grid)
	second := Encode(grid)
	assert.Equal(t, first, second)
}

func TestEncodeIndependentOfToggleOrder(t *testing.T) {
	cells := []Cell{
		{Day: Jueves, Block: Block1214},
		{Day: Lunes, Block: Block0608},
		{Day: Domingo, Block: Block1820},
		{Day: Lunes, Block: Block1618},
		{Day: Jueves, Block: Block0810},
	}

	reference := NewGrid()
	for _, cell := range cells {
		require.NoError(t, reference.Toggle(cell.Day, cell.Block))
	}
	want := Encode(reference)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := make([]Cell, len(cells))
		copy(shuffled, cells)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		grid := NewGrid()
		for _, cell := range shuffled {
			require.NoError(t, grid.Toggle(cell.Day, cell.Block))
		}
		// toggle a cell on and off again; the final set is unchanged
		require.NoError(t, grid.Toggle(Viernes, Block1416))
		require.NoError(t, grid.Toggle(Viernes, Block1416))

		assert.Equal(t, want, Encode(grid))
	}
}

func TestEncodeEmptyGrid(t *testing.T) {
	assert.Equal(t, "", Encode(NewGrid()))
	assert.Equal(t, "", Encode(nil))
}

func TestDecodeRoundTrip(t *testing.T) {
	grid := NewGrid()
	require.NoError(t, grid.Toggle(Lunes, Block0810))
	require.NoError(t, grid.Toggle(Lunes, Block1416))
	require.NoError(t, grid.Toggle(Sabado, Block1012))
	require.NoError(t, grid.Toggle(Domingo, Block2022))

	text := Encode(grid)
	decoded, err := Decode(text)
	require.NoError(t, err)

	assert.Equal(t, grid.Cells(), decoded.Cells())
	assert.Equal(t, text, Encode(decoded))
}

func TestDecodeEmptyText(t *testing.T) {
	grid, err := Decode("")
	require.NoError(t, err)
	assert.Equal(t, 0, grid.Count())
}

func TestDecodeRejectsMalformedText(t *testing.T) {
	cases := []string{
		"Lunes 08:00 - 10:00",
		"Funday: 08:00 - 10:00",
		"Lunes: 23:00 - 24:00",
		"Lunes: 08:00 - 10:00, 08:00 - 10:00",
	}
	for _, raw := range cases {
		_, err := Decode(raw)
		assert.Error(t, err, raw)
	}
}
