package ogame

import (
	"context"
	"time"
)

// Page is the slice of browser behaviour the game client needs. Selectors are
// CSS. Every call blocks until the element is ready or the page gives up.
type Page interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, selector string) error
	// Exists reports whether selector matches right now, without waiting.
	Exists(ctx context.Context, selector string) (bool, error)
	Click(ctx context.Context, selector string) error
	Fill(ctx context.Context, selector, value string) error
	Text(ctx context.Context, selector string) (string, error)
	OuterHTML(ctx context.Context, selector string) (string, error)
	// ClickAndFollowTab clicks an element that opens a new tab and makes that
	// tab the target of every later call.
	ClickAndFollowTab(ctx context.Context, selector string) error
	Sleep(ctx context.Context, d time.Duration) error
}

// Lobby selectors.
const (
	selCookieBanner = "button.cookiebanner5"
	selLoginTab     = "ul.tabsList > li:nth-child(1)"
	selEmail        = "input[type='email']"
	selPassword     = "input[type='password']"
	selSubmit       = "button[type='submit']"
	selJoinLastGame = "#joinGame > button:nth-of-type(1)"
)

// In-game selectors.
const (
	selPosition     = "#positionContentField"
	selMetal        = "#resources_metal"
	selCrystal      = "#resources_crystal"
	selDeuterium    = "#resources_deuterium"
	selEnergy       = "#resources_energy"
	selFleetRegion  = "#fleet1"
	selEventsClosed = "#js_eventDetailsClosed"
	selEventsOpen   = "#js_eventDetailsOpen"
	selEventContent = "#eventContent"
)

// Fleet dispatch selectors.
const (
	selSendAll        = "span.send_all > a"
	selContinue       = "#continueToFleet2 > span"
	selTargetPosition = "div.coords input#position"
	selMissionButton  = "#missions li#button%d > a"
	selSpeedStep      = "div.steps > div:nth-child(%d)"
	selLoadAll        = "#loadAllResources > a"
	selSendFleet      = "#naviActions a#sendFleet"
)

// Game page components, as named in the component= query parameter.
const (
	componentOverview   = "overview"
	componentSupplies   = "supplies"
	componentFacilities = "facilities"
	componentResearch   = "research"
	componentDefence    = "defenses"
	componentFleet      = "fleetdispatch"
)
