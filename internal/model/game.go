package model

// GameState is the mutable state of a game in play
type GameState struct {
	CurrentWord  string
	PresenterIdx int
	TeamScores   map[string]int
	WordCount    int
}

// Clone returns a deep copy of the state
func (s GameState) Clone() GameState {
	scores := make(map[string]int, len(s.TeamScores))
	for team, score := range s.TeamScores {
		scores[team] = score
	}
	s.TeamScores = scores
	return s
}

// GameSnapshot is a read-only view of a game handed to observers and renderers
type GameSnapshot struct {
	Playing   bool
	Settings  GameSettings
	State     GameState
	TimeLeft  int
	Presenter Participant
}

// Score returns the points for a team, zero if it has none yet
func (s GameSnapshot) Score(team string) int {
	return s.State.TeamScores[team]
}
