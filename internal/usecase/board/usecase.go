package board

import (
	"math/rand/v2"

	"github.com/kiryu-dev/minesweeper-duel/internal/domain"
	"github.com/pkg/errors"
)

type useCase struct {
	rng *rand.Rand
}

// New returns a generator drawing placements from rng. Pass a seeded
// generator to get reproducible boards.
func New(rng *rand.Rand) useCase {
	return useCase{rng: rng}
}

func NewSeeded(seed uint64) useCase {
	return New(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// Generate samples mines distinct cells uniformly without replacement and
// classifies the whole grid.
func (u useCase) Generate(rows int, cols int, mines int) (domain.Board, error) {
	placement, err := u.Place(rows, cols, mines)
	if err != nil {
		return domain.Board{}, err
	}
	return FromMines(rows, cols, placement)
}

func (u useCase) Place(rows int, cols int, mines int) ([]domain.Coord, error) {
	if err := domain.ValidateBoard(rows, cols, mines); err != nil {
		return nil, err
	}
	candidates := make([]int, rows*cols)
	for i := range candidates {
		candidates[i] = i
	}
	k := len(candidates)
	placement := make([]domain.Coord, 0, mines)
	for range mines {
		i := u.rng.IntN(k)
		idx := candidates[i]
		placement = append(placement, domain.Coord{Row: idx / cols, Col: idx % cols})
		k--
		candidates[i] = candidates[k]
	}
	return placement, nil
}

// FromMines builds the classification grid for a known placement.
func FromMines(rows int, cols int, mines []domain.Coord) (domain.Board, error) {
	if err := domain.ValidateBoard(rows, cols, len(mines)); err != nil {
		return domain.Board{}, err
	}
	cells := make([][]domain.Cell, rows)
	for r := range cells {
		cells[r] = make([]domain.Cell, cols)
	}
	b := domain.Board{
		Rows:  rows,
		Cols:  cols,
		Cells: cells,
		Mines: make([]domain.Coord, 0, len(mines)),
	}
	for _, m := range mines {
		if !b.Contains(m) {
			return domain.Board{}, errors.WithMessagef(domain.ErrInvalidCoordinate,
				"mine at (%d, %d)", m.Row, m.Col)
		}
		if b.Cells[m.Row][m.Col].Kind == domain.Mine {
			return domain.Board{}, errors.Errorf("duplicate mine at (%d, %d)", m.Row, m.Col)
		}
		b.Cells[m.Row][m.Col].Kind = domain.Mine
		b.Mines = append(b.Mines, m)
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if b.Cells[r][c].Kind == domain.Mine {
				continue
			}
			count := 0
			for _, n := range b.Neighbors(domain.Coord{Row: r, Col: c}) {
				if b.At(n).Kind == domain.Mine {
					count++
				}
			}
			b.Cells[r][c].Count = count
		}
	}
	return b, nil
}

