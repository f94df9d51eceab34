package domain

type Player struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Score int    `json:"score"`
}

func NewPlayer(name string, color string) Player {
	return Player{
		Name:  name,
		Color: color,
	}
}

// Other returns the index of the opponent of player idx.
func Other(idx int) int {
	return 1 - idx
}
