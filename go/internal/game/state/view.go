package state

import "github.com/mcdev12/shiritori/go/internal/models"

// View is every projection computed at the same instant. Values never alias
// store state, so a View stays consistent after further events are applied.
type View struct {
	Game        *models.Game
	SelfID      string
	Me          *models.Player
	IsMyTurn    bool
	LastWord    string
	LastLetter  string
	ChainLetter string
	Leaderboard []models.Player
	CanStart    bool
	Winner      *models.Player
	Countdown   int
	Joining     bool
	Status      models.GameStatus
}

// View computes a consistent snapshot of all projections.
func (s *Store) View() View {
	return View{
		Game:        s.Game(),
		SelfID:      s.selfID,
		Me:          s.Me(),
		IsMyTurn:    s.IsMyTurn(),
		LastWord:    s.LastWord(),
		LastLetter:  s.LastLetter(),
		ChainLetter: s.ChainLetter(),
		Leaderboard: s.Leaderboard(),
		CanStart:    s.CanStart(),
		Winner:      s.Winner(),
		Countdown:   s.Countdown(),
		Joining:     s.joining,
		Status:      s.Status(),
	}
}
