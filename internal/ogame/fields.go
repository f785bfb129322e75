package ogame

import "fmt"

// levelField locates one number on a building, research or defence page.
type levelField struct {
	name  string
	list  string // container holding the <ul> of technologies
	index int    // 1-based <li> position
	class string // "level" for buildings and research, "amount" for units
}

func (f levelField) selector() string {
	return fmt.Sprintf("%s > ul > li:nth-child(%d) span.%s", f.list, f.index, f.class)
}

// section is one game page plus the numbers read off it.
type section struct {
	name      string
	component string
	wait      string
	fields    []levelField
}

func levels(list, class string, names ...string) []levelField {
	fields := make([]levelField, len(names))
	for i, n := range names {
		fields[i] = levelField{name: n, list: list, index: i + 1, class: class}
	}
	return fields
}

var supplies = section{
	name:      "infrastructure",
	component: componentSupplies,
	wait:      "#technologies",
	fields: []levelField{
		{"metal_mine", "#technologies", 1, "level"},
		{"crystal_mine", "#technologies", 2, "level"},
		{"deuterium_synthesizer", "#technologies", 3, "level"},
		{"energy_plant", "#technologies", 4, "level"},
		{"fusion_reactor", "#technologies", 5, "level"},
		{"solar_satellite", "#technologies", 6, "amount"},
		{"crawler", "#technologies", 7, "amount"},
		{"metal_storage", "#technologies", 8, "level"},
		{"crystal_storage", "#technologies", 9, "level"},
		{"deuterium_tank", "#technologies", 10, "level"},
	},
}

var planetFacilities = section{
	name:      "planet facilities",
	component: componentFacilities,
	wait:      "#technologies",
	fields: levels("#technologies", "level",
		"robotics_factory", "shipyard", "research_lab", "alliance_depot",
		"missile_silo", "nanite_factory", "terraformer", "space_dock"),
}

var lunarFacilities = section{
	name:      "lunar facilities",
	component: componentFacilities,
	wait:      "#technologies",
	fields: levels("#technologies", "level",
		"robotics_factory", "shipyard", "lunar_base", "sensor_phalanx", "jump_gate"),
}

var defence = section{
	name:      "defence",
	component: componentDefence,
	wait:      "#technologies",
	fields: levels("#technologies", "amount",
		"rocket_launcher", "light_laser", "heavy_laser", "ion_cannon", "gauss_cannon",
		"plasma_turret", "small_shield_dome", "large_shield_dome",
		"anti_ballistic_missile", "interplanetary_missile"),
}

var research = section{
	name:      "technology",
	component: componentResearch,
	wait:      "#technologies_basic",
	fields: concat(
		levels("#technologies_basic", "level",
			"energy", "laser", "ion", "hyperspace", "plasma"),
		levels("#technologies_drive", "level",
			"combustion_drive", "impulse_drive", "hyperspace_drive"),
		levels("#technologies_advanced", "level",
			"espionage", "computer", "astrophysics", "intergalactic_research_network", "graviton"),
		levels("#technologies_combat", "level",
			"armour", "weapons", "shielding"),
	),
}

func concat(groups ...[]levelField) []levelField {
	var out []levelField
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
