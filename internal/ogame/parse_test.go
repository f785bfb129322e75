package ogame

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/fleetwatch/api/schemas"
)

// techList renders a #technologies style block the way the game does.
func techList(id, class string, values ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div id="%s"><ul class="icons">`, id)
	for i, v := range values {
		fmt.Fprintf(&b, `<li class="technology" data-technology="%d"><span class="icon"><span class="%s" data-value="%s">%s</span></span></li>`,
			i+1, class, strings.ReplaceAll(v, ",", ""), v)
	}
	b.WriteString(`</ul></div>`)
	return b.String()
}

func page(body ...string) string {
	return "<html><body>" + strings.Join(body, "") + "</body></html>"
}

// suppliesHTML is a supplies page with mixed level and amount fields. The
// crawler amount has an empty data-value and falls back to the text.
var suppliesHTML = page(`<div id="supplies"><div id="technologies"><ul>` +
	`<li><span class="level" data-value="30">30</span></li>` +
	`<li><span class="level" data-value="27">27</span></li>` +
	`<li><span class="level" data-value="25">25</span></li>` +
	`<li><span class="level" data-value="28">28</span></li>` +
	`<li><span class="level" data-value="12">12</span></li>` +
	`<li><span class="amount" data-value="1250">1,250</span></li>` +
	`<li><span class="amount" data-value="">312</span></li>` +
	`<li><span class="level" data-value="10">10</span></li>` +
	`<li><span class="level" data-value="9">9</span></li>` +
	`<li><span class="level" data-value="8">8</span></li>` +
	`</ul></div></div>`)

func TestParseLevels_Supplies(t *testing.T) {
	got, err := parseLevels(suppliesHTML, supplies.fields)
	require.NoError(t, err)

	want := schemas.Levels{
		"metal_mine": 30, "crystal_mine": 27, "deuterium_synthesizer": 25, "energy_plant": 28,
		"fusion_reactor": 12, "solar_satellite": 1250, "crawler": 312,
		"metal_storage": 10, "crystal_storage": 9, "deuterium_tank": 8,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("supplies mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLevels_Research(t *testing.T) {
	html := page(
		techList("technologies_basic", "level", "12", "10", "5", "8", "7"),
		techList("technologies_drive", "level", "15", "12", "9"),
		techList("technologies_advanced", "level", "14", "13", "17", "6", "1"),
		techList("technologies_combat", "level", "16", "15", "14"),
	)

	got, err := parseLevels(html, research.fields)
	require.NoError(t, err)
	assert.Len(t, got, 16)
	assert.Equal(t, 12, got["energy"])
	assert.Equal(t, 9, got["hyperspace_drive"])
	assert.Equal(t, 1, got["graviton"])
	assert.Equal(t, 16, got["armour"])
	assert.Equal(t, 14, got["shielding"])
}

func TestParseLevels_DefenceAndFacilities(t *testing.T) {
	def, err := parseLevels(page(techList("technologies", "amount",
		"1,500", "2,000", "300", "50", "40", "10", "1", "1", "20", "0")), defence.fields)
	require.NoError(t, err)
	assert.Equal(t, 1500, def["rocket_launcher"])
	assert.Equal(t, 0, def["interplanetary_missile"])

	fac, err := parseLevels(page(techList("technologies", "level",
		"10", "12", "12", "2", "5", "5", "3", "4")), planetFacilities.fields)
	require.NoError(t, err)
	assert.Equal(t, 4, fac["space_dock"])

	moon, err := parseLevels(page(techList("technologies", "level", "1", "2", "8", "6", "1")), lunarFacilities.fields)
	require.NoError(t, err)
	assert.Equal(t, schemas.Levels{"robotics_factory": 1, "shipyard": 2, "lunar_base": 8, "sensor_phalanx": 6, "jump_gate": 1}, moon)
}

func TestParseLevels_Errors(t *testing.T) {
	t.Run("missing element", func(t *testing.T) {
		_, err := parseLevels(page(techList("technologies", "level", "1", "2")), lunarFacilities.fields)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "lunar_base")
	})

	t.Run("non numeric", func(t *testing.T) {
		_, err := parseLevels(page(techList("technologies", "level", "1", "2", "x", "6", "1")), lunarFacilities.fields)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "lunar_base")
		var numErr *strconv.NumError
		assert.True(t, errors.As(err, &numErr))
	})
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"0", 0, false},
		{" 42 ", 42, false},
		{"1,234", 1234, false},
		{"1.234.567", 1234567, false},
		{"", 0, true},
		{"1.2M", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		got, err := parseCount("field", tt.raw)
		if tt.wantErr {
			assert.Error(t, err, "raw %q", tt.raw)
			continue
		}
		require.NoError(t, err, "raw %q", tt.raw)
		assert.Equal(t, tt.want, got)
	}
}

func fleetRegion(battle, civil []string) string {
	var b strings.Builder
	b.WriteString(`<div id="fleet1"><div class="content"><div id="technologies">`)
	b.WriteString(`<div id="battleships"><ul>`)
	for _, n := range battle {
		fmt.Fprintf(&b, `<li class="technology"><span class="icon"><span class="amount" data-value="%s">%s</span></span></li>`,
			strings.ReplaceAll(n, ",", ""), n)
	}
	b.WriteString(`</ul></div><div id="civilships"><ul>`)
	for _, n := range civil {
		fmt.Fprintf(&b, `<li class="technology"><span class="icon"><span class="amount">%s</span></span></li>`, n)
	}
	b.WriteString(`</ul></div></div></div></div>`)
	return b.String()
}

func TestParseFleet(t *testing.T) {
	html := fleetRegion(
		[]string{"10", "0", "5", "1,200", "0", "0", "3", "0", "0", "2"},
		[]string{"400", "1,000", "0", "25", "50"},
	)

	got, err := parseFleet(html)
	require.NoError(t, err)

	want := schemas.Fleet{
		schemas.ShipLightFighter: 10, schemas.ShipHeavyFighter: 0, schemas.ShipCruiser: 5,
		schemas.ShipBattleship: 1200, schemas.ShipBattlecruiser: 0, schemas.ShipBomber: 0,
		schemas.ShipDestroyer: 3, schemas.ShipDeathstar: 0, schemas.ShipReaper: 0, schemas.ShipPathfinder: 2,
		schemas.ShipSmallCargo: 400, schemas.ShipLargeCargo: 1000, schemas.ShipColonyShip: 0,
		schemas.ShipRecycler: 25, schemas.ShipEspionageProbe: 50,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("fleet mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2695, got.Total())
}

func TestParseFleet_Empty(t *testing.T) {
	t.Run("warning layout", func(t *testing.T) {
		html := `<div id="fleet1"><div>` + strings.Repeat(`<div></div>`, emptyFleetChildren) + `</div></div>`
		got, err := parseFleet(html)
		require.NoError(t, err)
		assert.True(t, got.IsZero())
	})

	t.Run("no ship lists", func(t *testing.T) {
		got, err := parseFleet(`<div id="fleet1"><div id="warning">沒有艦隊</div></div>`)
		require.NoError(t, err)
		assert.True(t, got.IsZero())
		assert.NotNil(t, got)
	})
}

func TestParseFleet_Errors(t *testing.T) {
	_, err := parseFleet(fleetRegion([]string{"1", "2"}, []string{"1", "2", "3", "4", "5"}))
	assert.Error(t, err)

	_, err = parseFleet(fleetRegion(
		[]string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"},
		[]string{"1", "2", "three", "4", "5"},
	))
	require.Error(t, err)
	assert.Contains(t, err.Error(), schemas.ShipColonyShip)
}

const eventsHTML = `
<div id="eventContent"><table class="eventFleetList"><tbody>
<tr class="eventFleet" data-mission-type="1">
  <td class="countDown">3m 12s</td>
  <td class="arrivalTime">12:41:07 時</td>
  <td class="missionFleet"><img src="/fleet-attack.gif" title="敵方艦隊 | 攻擊"></td>
  <td class="originFleet">Enemy</td>
  <td class="coordsOrigin"><a href="#">[3:300:3]</a></td>
  <td class="destFleet">Colony</td>
  <td class="destCoords"> <a href="#">[2:200:9]</a> </td>
</tr>
<tr class="eventFleet" data-mission-type="15">
  <td class="arrivalTime">13:05:00 時</td>
  <td class="missionFleet"><img src="/fleet-exp.gif" title="己方艦隊 | 遠征探險 (返)"></td>
  <td class="coordsOrigin">[2:200:16]</td>
  <td class="destCoords">[2:200:9]</td>
</tr>
</tbody></table></div>`

func TestParseEvents(t *testing.T) {
	got, err := parseEvents(eventsHTML)
	require.NoError(t, err)

	want := []schemas.FleetEvent{
		{MissionLabel: schemas.LabelEnemyAttacking, ArrivalTime: "12:41:07 時", Origin: "[3:300:3]", Destination: "[2:200:9]"},
		{MissionLabel: schemas.LabelExpeditionReturn, ArrivalTime: "13:05:00 時", Origin: "[2:200:16]", Destination: "[2:200:9]"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEvents_LabelsAreNotNormalised(t *testing.T) {
	html := `<div id="eventContent"><table><tbody><tr>
<td class="missionFleet"><img title=" 敵方艦隊 | 攻擊"></td>
<td class="coordsOrigin">[1:1:1]</td><td class="destCoords">[2:2:2]</td>
</tr></tbody></table></div>`

	got, err := parseEvents(html)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, " 敵方艦隊 | 攻擊", got[0].MissionLabel)
	_, err = got[0].Mission()
	assert.ErrorIs(t, err, schemas.ErrUnknownMission)
}

func TestParseEvents_MissingLabel(t *testing.T) {
	html := `<div id="eventContent"><table><tbody><tr>
<td class="missionFleet"><img src="/x.gif"></td>
</tr></tbody></table></div>`

	_, err := parseEvents(html)
	assert.ErrorIs(t, err, ErrMissingMissionLabel)
}

func TestParseEvents_EmptyTable(t *testing.T) {
	got, err := parseEvents(`<div id="eventContent"><table><tbody></tbody></table></div>`)
	require.NoError(t, err)
	assert.Empty(t, got)
}
