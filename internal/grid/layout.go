package grid

import "fmt"

const (
	// LayoutOpen marks a walkable cell in a layout row.
	LayoutOpen = '.'
	// LayoutWall marks a blocked position in a layout row.
	LayoutWall = '#'
)

// LayoutCells expands a character map into cells. Row r, column c becomes the
// coordinate origin + (c*step, r*step). Open positions get the payload label
// "r<row>c<col>"; walls and spaces produce no cell.
func LayoutCells(rows []string, origin Coord, step float64) ([]Cell, error) {
	var cells []Cell
	for r, row := range rows {
		for c, ch := range []rune(row) {
			switch ch {
			case LayoutOpen:
				cells = append(cells, Cell{
					Pos: Coord{
						X: origin.X + float64(c)*step,
						Y: origin.Y + float64(r)*step,
					},
					Payload: fmt.Sprintf("r%dc%d", r, c),
				})
			case LayoutWall, ' ':
			default:
				return nil, fmt.Errorf("layout row %d column %d: unexpected character %q", r, c, ch)
			}
		}
	}
	return cells, nil
}
