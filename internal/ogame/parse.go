package ogame

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/xkilldash9x/fleetwatch/api/schemas"
)

// ErrMissingMissionLabel means an event row carried no mission icon title.
var ErrMissingMissionLabel = errors.New("fleet event row has no mission label")

// emptyFleetChildren is how many blocks #fleet1 renders when no ship is
// stationed: the warning replaces the ship lists.
const emptyFleetChildren = 6

func parseDocument(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse page html: %w", err)
	}
	return doc, nil
}

// parseCount reads a game-formatted integer. Thousands separators are
// stripped; anything else that is not a digit is an error.
func parseCount(field, raw string) (int, error) {
	s := strings.TrimSpace(raw)
	s = strings.NewReplacer(",", "", ".", "").Replace(s)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parse %s from %q: %w", field, raw, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("parse %s from %q: negative count", field, raw)
	}
	return n, nil
}

// nodeValue prefers the data-value attribute the game attaches to level and
// amount spans, since their text may carry bonus markers.
func nodeValue(sel *goquery.Selection) string {
	if v, ok := sel.Attr("data-value"); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return sel.Text()
}

// parseLevels extracts every field of a section from the page html.
func parseLevels(html string, fields []levelField) (schemas.Levels, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return nil, err
	}

	out := make(schemas.Levels, len(fields))
	for _, f := range fields {
		sel := doc.Find(f.selector()).First()
		if sel.Length() == 0 {
			return nil, fmt.Errorf("%s: element %q not found", f.name, f.selector())
		}
		n, err := parseCount(f.name, nodeValue(sel))
		if err != nil {
			return nil, err
		}
		out[f.name] = n
	}
	return out, nil
}

// parseFleet reads the ship counts from the #fleet1 region of the fleet
// dispatch page.
func parseFleet(html string) (schemas.Fleet, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return nil, err
	}

	battle := doc.Find("#battleships > ul > li")
	civil := doc.Find("#civilships > ul > li")
	if doc.Find("#fleet1 > div > div").Length() == emptyFleetChildren || (battle.Length() == 0 && civil.Length() == 0) {
		return schemas.Fleet{}, nil
	}

	fleet := make(schemas.Fleet, len(schemas.BattleShips)+len(schemas.CivilShips))
	if err := readShips(fleet, battle, schemas.BattleShips); err != nil {
		return nil, err
	}
	if err := readShips(fleet, civil, schemas.CivilShips); err != nil {
		return nil, err
	}
	return fleet, nil
}

func readShips(fleet schemas.Fleet, items *goquery.Selection, names []string) error {
	if items.Length() < len(names) {
		return fmt.Errorf("expected %d ship entries, found %d", len(names), items.Length())
	}
	var err error
	items.EachWithBreak(func(i int, li *goquery.Selection) bool {
		if i >= len(names) {
			return false
		}
		src := li
		if amount := li.Find("span.amount").First(); amount.Length() > 0 {
			src = amount
		}
		var n int
		if n, err = parseCount(names[i], nodeValue(src)); err != nil {
			return false
		}
		fleet[names[i]] = n
		return true
	})
	return err
}

// parseEvents reads the rows of the expanded event list.
func parseEvents(html string) ([]schemas.FleetEvent, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return nil, err
	}

	var (
		events []schemas.FleetEvent
		rowErr error
	)
	doc.Find("#eventContent tbody tr").EachWithBreak(func(i int, tr *goquery.Selection) bool {
		label, ok := tr.Find("td.missionFleet img").First().Attr("title")
		if !ok {
			rowErr = fmt.Errorf("row %d: %w", i, ErrMissingMissionLabel)
			return false
		}
		events = append(events, schemas.FleetEvent{
			MissionLabel: label,
			ArrivalTime:  strings.TrimSpace(tr.Find("td.arrivalTime").First().Text()),
			Origin:       strings.TrimSpace(tr.Find("td.coordsOrigin").First().Text()),
			Destination:  strings.TrimSpace(tr.Find("td.destCoords").First().Text()),
		})
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}
	return events, nil
}
