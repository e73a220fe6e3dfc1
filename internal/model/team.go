package model

import (
	"fmt"
	"strings"
)

// Team is a fixed, immutable team entry from the registry
type Team struct {
	Name  string `json:"name"`
	Color string `json:"color"` // CSS hex color for display
}

// Team count limits
const (
	MinTeams = 2
	MaxTeams = 4
)

// teamRegistry is the ordered list every game draws its teams from
var teamRegistry = []Team{
	{Name: "Red", Color: "#e74c3c"},
	{Name: "Blue", Color: "#3498db"},
	{Name: "Green", Color: "#2ecc71"},
	{Name: "Yellow", Color: "#f1c40f"},
}

// Teams returns a copy of the full team registry
func Teams() []Team {
	result := make([]Team, len(teamRegistry))
	copy(result, teamRegistry)
	return result
}

// TeamsFor returns the first n teams of the registry
func TeamsFor(n int) ([]Team, error) {
	if n < MinTeams || n > MaxTeams {
		return nil, fmt.Errorf("%w: team count must be between %d and %d, got %d",
			ErrInvalidSettings, MinTeams, MaxTeams, n)
	}
	result := make([]Team, n)
	copy(result, teamRegistry[:n])
	return result, nil
}

// FindTeam looks up a registry team by name, ignoring case
func FindTeam(name string) (Team, bool) {
	return findTeam(teamRegistry, name)
}

// FindTeamFor looks a team up among the first n registry teams,
// the ones a game with n teams actually plays with
func FindTeamFor(n int, name string) (Team, bool) {
	if n < MinTeams || n > MaxTeams {
		return Team{}, false
	}
	return findTeam(teamRegistry[:n], name)
}

func findTeam(teams []Team, name string) (Team, bool) {
	for _, t := range teams {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return Team{}, false
}
