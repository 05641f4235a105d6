package catalog

import "fmt"

// LocationRules constrain where a location may be placed.
// A nil On list allows every terrain; a non-nil empty one allows none.
// An empty Adjacent list places no requirement on the neighbourhood.
type LocationRules struct {
	On       []string
	Adjacent []string
}

// LocationTemplate is a named point of interest that the placer tries to put
// on a finished grid.
type LocationTemplate struct {
	ID     string
	Name   string
	Emoji  string
	Weight float64
	Rules  LocationRules
}

// AllowsTerrain reports whether a cell of the given terrain satisfies the On rule.
func (l *LocationTemplate) AllowsTerrain(terrain string) bool {
	if l.Rules.On == nil {
		return true
	}
	for _, id := range l.Rules.On {
		if id == terrain {
			return true
		}
	}
	return false
}

// DisplayName returns Name, or the id when no name is set.
func (l *LocationTemplate) DisplayName() string {
	if l.Name != "" {
		return l.Name
	}
	return l.ID
}

// ValidateLocations checks that location ids are present and unique.
// Terrain ids in the rules are not required to exist in the catalog; a rule
// naming an unknown terrain simply never matches.
func ValidateLocations(locations []LocationTemplate) error {
	seen := make(map[string]bool, len(locations))
	for i, loc := range locations {
		if loc.ID == "" {
			return fmt.Errorf("location #%d: %w", i, ErrEmptyID)
		}
		if seen[loc.ID] {
			return fmt.Errorf("location %q: %w", loc.ID, ErrDuplicateID)
		}
		seen[loc.ID] = true
	}
	return nil
}
