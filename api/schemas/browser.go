package schemas

// -- Browser Persona Schemas --

// UserAgentBrandVersion is one entry of the Sec-CH-UA brand list.
type UserAgentBrandVersion struct {
	Brand   string `json:"brand"`
	Version string `json:"version"`
}

// ClientHints defines the User-Agent Client Hints data.
type ClientHints struct {
	Platform        string                   `json:"platform"`
	PlatformVersion string                   `json:"platformVersion"`
	Architecture    string                   `json:"architecture"`
	Bitness         string                   `json:"bitness"`
	Mobile          bool                     `json:"mobile"`
	Brands          []*UserAgentBrandVersion `json:"brands"`
}

// Persona is the fingerprint the game session presents. The lobby and the
// game server see the same values for the whole life of the process.
type Persona struct {
	UserAgent       string       `json:"userAgent"`
	Platform        string       `json:"platform"`
	Languages       []string     `json:"languages"`
	Width           int64        `json:"width"`
	Height          int64        `json:"height"`
	Mobile          bool         `json:"mobile"`
	Timezone        string       `json:"timezoneId"`
	Locale          string       `json:"locale"`
	ClientHintsData *ClientHints `json:"clientHintsData,omitempty"`
}

// DefaultPersona matches a zh_TW desktop player, which is what the lobby
// expects for the Taiwanese universes.
var DefaultPersona = Persona{
	UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	Platform:  "Win32",
	Languages: []string{"zh-TW", "zh", "en-US", "en"},
	Width:     1920,
	Height:    1080,
	Mobile:    false,
	Timezone:  "Asia/Taipei",
	Locale:    "zh-TW",
	ClientHintsData: &ClientHints{
		Platform:        "Windows",
		PlatformVersion: "15.0.0",
		Architecture:    "x86",
		Bitness:         "64",
		Brands: []*UserAgentBrandVersion{
			{Brand: "Google Chrome", Version: "131"},
			{Brand: "Chromium", Version: "131"},
			{Brand: "Not_A Brand", Version: "24"},
		},
	},
}
