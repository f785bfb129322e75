package ogame

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/fleetwatch/api/schemas"
	"github.com/xkilldash9x/fleetwatch/internal/config"
)

const (
	// eventListSettle gives the event box time to render after a page load.
	eventListSettle = time.Second
	// fleetStepSettle waits for the second dispatch step to become interactive.
	fleetStepSettle = 3 * time.Second
)

// Client drives the game UI through a Page. Calls are sequential; a Client
// must not be shared between goroutines.
type Client struct {
	page      Page
	game      config.GameConfig
	network   config.NetworkConfig
	fleetSave config.FleetSaveConfig
	logger    *zap.Logger
}

// NewClient creates a game client on top of an open page.
func NewClient(page Page, cfg config.Interface, logger *zap.Logger) *Client {
	return &Client{
		page:      page,
		game:      cfg.Game(),
		network:   cfg.Network(),
		fleetSave: cfg.FleetSave(),
		logger:    logger.Named("ogame"),
	}
}

// Login signs in through the lobby and enters the last played universe.
func (c *Client) Login(ctx context.Context, email, password string) error {
	c.logger.Info("Opening lobby.", zap.String("url", c.game.LobbyURL))
	if err := c.page.Navigate(ctx, c.game.LobbyURL); err != nil {
		return fmt.Errorf("open lobby: %w", err)
	}

	banner, err := c.page.Exists(ctx, selCookieBanner)
	if err != nil {
		return fmt.Errorf("look for cookie banner: %w", err)
	}
	if banner {
		if err := c.page.Click(ctx, selCookieBanner); err != nil {
			return fmt.Errorf("accept cookies: %w", err)
		}
	}

	steps := []struct {
		what string
		do   func() error
	}{
		{"select login tab", func() error { return c.page.Click(ctx, selLoginTab) }},
		{"type email", func() error { return c.page.Fill(ctx, selEmail, email) }},
		{"type password", func() error { return c.page.Fill(ctx, selPassword, password) }},
		{"submit login", func() error { return c.page.Click(ctx, selSubmit) }},
		{"wait for lobby", func() error { return c.page.Sleep(ctx, c.game.LoginSettle) }},
		{"join last universe", func() error { return c.page.ClickAndFollowTab(ctx, selJoinLastGame) }},
	}
	for _, s := range steps {
		if err := s.do(); err != nil {
			return fmt.Errorf("%s: %w", s.what, err)
		}
	}
	c.logger.Info("Logged in.")
	return nil
}

// ResumePlay enters the last played universe from a lobby session that is
// already authenticated, e.g. a persisted browser profile.
func (c *Client) ResumePlay(ctx context.Context) error {
	if err := c.page.Navigate(ctx, c.game.LobbyURL); err != nil {
		return fmt.Errorf("open lobby: %w", err)
	}
	if err := c.page.WaitVisible(ctx, selJoinLastGame); err != nil {
		return fmt.Errorf("wait for last played: %w", err)
	}
	if err := c.page.ClickAndFollowTab(ctx, selJoinLastGame); err != nil {
		return fmt.Errorf("join last universe: %w", err)
	}
	return nil
}

// EmpireOverview scrapes every tracked planet in order, then research and
// the fleet event list. The first failure aborts the whole snapshot.
func (c *Client) EmpireOverview(ctx context.Context, planets []schemas.PlanetID) (*schemas.EmpireOverview, error) {
	overview := &schemas.EmpireOverview{Planets: make([]schemas.PlanetOverview, 0, len(planets))}

	for _, p := range planets {
		po, err := c.planet(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("planet %s: %w", p.PlanetID, err)
		}
		overview.Planets = append(overview.Planets, *po)
	}

	tech, err := c.section(ctx, research, "")
	if err != nil {
		return nil, err
	}
	overview.Technology = tech

	events, err := c.fleetEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("fleet events: %w", err)
	}
	overview.Events = events
	return overview, nil
}

func (c *Client) planet(ctx context.Context, id schemas.PlanetID) (*schemas.PlanetOverview, error) {
	location, err := c.openOverview(ctx, id.PlanetID)
	if err != nil {
		return nil, err
	}
	po := &schemas.PlanetOverview{ID: id.PlanetID, Location: location}

	if po.Resources, err = c.resources(ctx); err != nil {
		return nil, err
	}
	if po.Infrastructure, err = c.section(ctx, supplies, id.PlanetID); err != nil {
		return nil, err
	}
	if po.Facilities, err = c.section(ctx, planetFacilities, id.PlanetID); err != nil {
		return nil, err
	}
	if po.Defence, err = c.section(ctx, defence, id.PlanetID); err != nil {
		return nil, err
	}
	if po.Fleet, err = c.fleet(ctx, id.PlanetID); err != nil {
		return nil, err
	}

	if id.HasMoon() {
		if po.Lunar, err = c.lunar(ctx, id.LunarID); err != nil {
			return nil, fmt.Errorf("moon %s: %w", id.LunarID, err)
		}
	}
	return po, nil
}

func (c *Client) lunar(ctx context.Context, id string) (*schemas.Lunar, error) {
	location, err := c.openOverview(ctx, id)
	if err != nil {
		return nil, err
	}
	l := &schemas.Lunar{ID: id, Location: location}

	if l.Resources, err = c.resources(ctx); err != nil {
		return nil, err
	}
	if l.Facilities, err = c.section(ctx, lunarFacilities, id); err != nil {
		return nil, err
	}
	if l.Fleet, err = c.fleet(ctx, id); err != nil {
		return nil, err
	}
	return l, nil
}

// openOverview switches the session to a planet or moon and returns its
// coordinate label.
func (c *Client) openOverview(ctx context.Context, cp string) (string, error) {
	if err := c.page.Navigate(ctx, c.pageURL(componentOverview, cp)); err != nil {
		return "", fmt.Errorf("open overview: %w", err)
	}
	if err := c.page.Sleep(ctx, c.network.PostLoadWait); err != nil {
		return "", err
	}
	location, err := c.page.Text(ctx, selPosition)
	if err != nil {
		return "", fmt.Errorf("read location: %w", err)
	}
	return strings.TrimSpace(location), nil
}

func (c *Client) resources(ctx context.Context) (schemas.Resources, error) {
	var r schemas.Resources
	for _, f := range []struct {
		sel string
		dst *string
	}{
		{selMetal, &r.Metal},
		{selCrystal, &r.Crystal},
		{selDeuterium, &r.Deuterium},
		{selEnergy, &r.Energy},
	} {
		v, err := c.page.Text(ctx, f.sel)
		if err != nil {
			return r, fmt.Errorf("read resource %s: %w", f.sel, err)
		}
		*f.dst = strings.TrimSpace(v)
	}
	return r, nil
}

// section opens a game page for cp and reads its field table. An empty cp
// keeps the current planet.
func (c *Client) section(ctx context.Context, s section, cp string) (schemas.Levels, error) {
	if err := c.openComponent(ctx, s.component, cp, s.wait); err != nil {
		return nil, fmt.Errorf("%s: %w", s.name, err)
	}
	html, err := c.page.OuterHTML(ctx, "body")
	if err != nil {
		return nil, fmt.Errorf("%s: read page: %w", s.name, err)
	}
	lv, err := parseLevels(html, s.fields)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.name, err)
	}
	return lv, nil
}

func (c *Client) fleet(ctx context.Context, cp string) (schemas.Fleet, error) {
	if err := c.openComponent(ctx, componentFleet, cp, selFleetRegion); err != nil {
		return nil, fmt.Errorf("fleet: %w", err)
	}
	html, err := c.page.OuterHTML(ctx, selFleetRegion)
	if err != nil {
		return nil, fmt.Errorf("fleet: read page: %w", err)
	}
	f, err := parseFleet(html)
	if err != nil {
		return nil, fmt.Errorf("fleet: %w", err)
	}
	return f, nil
}

func (c *Client) openComponent(ctx context.Context, component, cp, wait string) error {
	if err := c.page.Navigate(ctx, c.pageURL(component, cp)); err != nil {
		return fmt.Errorf("open %s: %w", component, err)
	}
	if err := c.page.WaitVisible(ctx, wait); err != nil {
		return fmt.Errorf("wait for %s: %w", wait, err)
	}
	return nil
}

// fleetEvents expands the event box, reads it and folds it back. A page
// without the expand toggle has no pending events.
func (c *Client) fleetEvents(ctx context.Context) ([]schemas.FleetEvent, error) {
	if err := c.page.Sleep(ctx, eventListSettle); err != nil {
		return nil, err
	}
	present, err := c.page.Exists(ctx, selEventsClosed)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}

	if err := c.page.Click(ctx, selEventsClosed); err != nil {
		return nil, fmt.Errorf("expand event list: %w", err)
	}
	if err := c.page.WaitVisible(ctx, selEventContent); err != nil {
		return nil, fmt.Errorf("wait for event list: %w", err)
	}
	html, err := c.page.OuterHTML(ctx, selEventContent)
	if err != nil {
		return nil, fmt.Errorf("read event list: %w", err)
	}
	events, err := parseEvents(html)
	if err != nil {
		return nil, err
	}
	if err := c.page.Click(ctx, selEventsOpen); err != nil {
		return nil, fmt.Errorf("collapse event list: %w", err)
	}
	return events, nil
}

// FleetSave dispatches every ship and all resources from a planet to the
// configured slot of its own system at the configured speed.
func (c *Client) FleetSave(ctx context.Context, planetID string) error {
	mission, ok := config.FleetSaveMissions[c.fleetSave.Mission]
	if !ok {
		return fmt.Errorf("unknown fleet save mission %q", c.fleetSave.Mission)
	}

	log := c.logger.With(zap.String("planet_id", planetID))
	log.Info("Dispatching fleet.",
		zap.Int("position", c.fleetSave.Position),
		zap.String("mission", c.fleetSave.Mission),
		zap.Int("speed_step", c.fleetSave.SpeedStep))

	steps := []struct {
		what string
		do   func() error
	}{
		{"open fleet dispatch", func() error { return c.page.Navigate(ctx, c.pageURL(componentFleet, planetID)) }},
		{"select all ships", func() error { return c.page.Click(ctx, selSendAll) }},
		{"continue", func() error { return c.page.Click(ctx, selContinue) }},
		{"wait for destination step", func() error { return c.page.Sleep(ctx, fleetStepSettle) }},
		{"set position", func() error {
			return c.page.Fill(ctx, selTargetPosition, strconv.Itoa(c.fleetSave.Position))
		}},
		{"select mission", func() error { return c.page.Click(ctx, fmt.Sprintf(selMissionButton, mission)) }},
		{"select speed", func() error { return c.page.Click(ctx, fmt.Sprintf(selSpeedStep, c.fleetSave.SpeedStep)) }},
		{"load all resources", func() error { return c.page.Click(ctx, selLoadAll) }},
		{"send fleet", func() error { return c.page.Click(ctx, selSendFleet) }},
	}
	for _, s := range steps {
		if err := s.do(); err != nil {
			return fmt.Errorf("%s: %w", s.what, err)
		}
	}
	log.Info("Fleet sent.")
	return nil
}

func (c *Client) pageURL(component, cp string) string {
	u := fmt.Sprintf("%s/game/index.php?page=ingame&component=%s", strings.TrimRight(c.game.ServerURL, "/"), component)
	if cp != "" {
		u += "&cp=" + url.QueryEscape(cp)
	}
	return u
}
