package schemas

// PlanetID identifies one tracked location: a planet and, optionally, the
// moon orbiting it. Both are the numeric ids the game uses in its cp= query
// parameter, kept as strings.
type PlanetID struct {
	PlanetID string `json:"planet_id" mapstructure:"planet_id" yaml:"planet_id"`
	LunarID  string `json:"lunar_id,omitempty" mapstructure:"lunar_id" yaml:"lunar_id"`
}

// HasMoon reports whether a moon is paired with the planet.
func (p PlanetID) HasMoon() bool { return p.LunarID != "" }

// Resources holds the raw resource bar values. They are kept as scraped
// because the game formats them with locale separators and suffixes.
type Resources struct {
	Metal     string `json:"metal"`
	Crystal   string `json:"crystal"`
	Deuterium string `json:"deuterium"`
	Energy    string `json:"energy"`
}

// Levels maps a building, research or defence name to its level or count.
type Levels map[string]int

// Lunar is the scraped state of a moon.
type Lunar struct {
	ID         string    `json:"id"`
	Location   string    `json:"location"`
	Resources  Resources `json:"resources"`
	Facilities Levels    `json:"facilities"`
	Fleet      Fleet     `json:"fleet"`
}

// PlanetOverview is the scraped state of one tracked planet.
type PlanetOverview struct {
	ID             string    `json:"id"`
	Location       string    `json:"location"`
	Resources      Resources `json:"resources"`
	Infrastructure Levels    `json:"infrastructure"`
	Facilities     Levels    `json:"facilities"`
	Defence        Levels    `json:"defence"`
	Fleet          Fleet     `json:"fleet"`
	Lunar          *Lunar    `json:"lunar,omitempty"`
}

// EmpireOverview is the snapshot produced once per cycle. Planets keep the
// order of the configured tracked locations.
type EmpireOverview struct {
	Planets    []PlanetOverview `json:"planets"`
	Technology Levels           `json:"technology"`
	Events     []FleetEvent     `json:"events"`
}

// PlanetByLocation returns the planet whose coordinate label equals location.
func (e *EmpireOverview) PlanetByLocation(location string) (*PlanetOverview, bool) {
	for i := range e.Planets {
		if e.Planets[i].Location == location {
			return &e.Planets[i], true
		}
	}
	return nil, false
}
