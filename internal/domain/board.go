package domain

type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type Kind byte

const (
	Clear = Kind(iota)
	Mine
)

func (k Kind) String() string {
	switch k {
	case Mine:
		return "mine"
	default:
		return "clear"
	}
}

// Cell is the immutable classification of one grid position. Count is the
// number of neighbouring mines and is only meaningful for Clear cells.
type Cell struct {
	Kind  Kind
	Count int
}

type Board struct {
	Rows  int
	Cols  int
	Cells [][]Cell
	Mines []Coord
}

var neighborOffsets = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

func (b Board) Contains(c Coord) bool {
	return c.Row >= 0 && c.Row < b.Rows && c.Col >= 0 && c.Col < b.Cols
}

func (b Board) At(c Coord) Cell {
	return b.Cells[c.Row][c.Col]
}

// Neighbors returns the up to eight cells around c, clipped at the grid edges.
func (b Board) Neighbors(c Coord) []Coord {
	result := make([]Coord, 0, len(neighborOffsets))
	for _, off := range neighborOffsets {
		n := Coord{Row: c.Row + off[0], Col: c.Col + off[1]}
		if b.Contains(n) {
			result = append(result, n)
		}
	}
	return result
}

func (b Board) MineCount() int {
	return len(b.Mines)
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
