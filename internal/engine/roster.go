package engine

// Seat is one roster entry. Name is filled in by the caller from the
// identity directory; the engine only knows usernames.
type Seat struct {
	Username  string `json:"username"`
	Name      string `json:"name"`
	ClueGiver bool   `json:"role"`
}

// Roster lists both teams in join order with the current clue givers flagged.
func Roster(g Game) [2][]Seat {
	var out [2][]Seat
	for t, team := range g.Teams {
		out[t] = make([]Seat, 0, len(team.Players))
		for _, p := range team.Players {
			out[t] = append(out[t], Seat{
				Username:  p,
				Name:      p,
				ClueGiver: g.IsClueGiver(p),
			})
		}
	}
	return out
}
