// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/xkilldash9x/fleetwatch/api/schemas"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Database() DatabaseConfig
	Browser() BrowserConfig
	Network() NetworkConfig
	Game() GameConfig
	Account() AccountConfig
	Planets() []schemas.PlanetID
	Sentinel() SentinelConfig
	FleetSave() FleetSaveConfig

	// Setters for values the CLI can override.
	SetBrowserHeadless(bool)
	SetSentinelRefreshPeriod(time.Duration)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg    LoggerConfig       `mapstructure:"logger" yaml:"logger"`
	DatabaseCfg  DatabaseConfig     `mapstructure:"database" yaml:"database"`
	BrowserCfg   BrowserConfig      `mapstructure:"browser" yaml:"browser"`
	NetworkCfg   NetworkConfig      `mapstructure:"network" yaml:"network"`
	GameCfg      GameConfig         `mapstructure:"game" yaml:"game"`
	AccountCfg   AccountConfig      `mapstructure:"account" yaml:"account"`
	PlanetsCfg   []schemas.PlanetID `mapstructure:"planets" yaml:"planets"`
	SentinelCfg  SentinelConfig     `mapstructure:"sentinel" yaml:"sentinel"`
	FleetSaveCfg FleetSaveConfig    `mapstructure:"fleet_save" yaml:"fleet_save"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig        { return c.LoggerCfg }
func (c *Config) Database() DatabaseConfig    { return c.DatabaseCfg }
func (c *Config) Browser() BrowserConfig      { return c.BrowserCfg }
func (c *Config) Network() NetworkConfig      { return c.NetworkCfg }
func (c *Config) Game() GameConfig            { return c.GameCfg }
func (c *Config) Account() AccountConfig      { return c.AccountCfg }
func (c *Config) Planets() []schemas.PlanetID { return c.PlanetsCfg }
func (c *Config) Sentinel() SentinelConfig    { return c.SentinelCfg }
func (c *Config) FleetSave() FleetSaveConfig  { return c.FleetSaveCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetBrowserHeadless(b bool) { c.BrowserCfg.Headless = b }
func (c *Config) SetSentinelRefreshPeriod(d time.Duration) {
	c.SentinelCfg.RefreshPeriod = d
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// DatabaseConfig holds the database connection details. An empty URL
// disables cycle history.
type DatabaseConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// BrowserConfig holds settings for the Chrome instance driving the game.
type BrowserConfig struct {
	Headless bool `mapstructure:"headless" yaml:"headless"`
	// RemoteURL attaches to an already running Chrome (its devtools websocket
	// or http endpoint) instead of launching one.
	RemoteURL        string         `mapstructure:"remote_url" yaml:"remote_url"`
	UserDataDir      string         `mapstructure:"user_data_dir" yaml:"user_data_dir"`
	Args             []string       `mapstructure:"args" yaml:"args"`
	ActionsPerSecond float64        `mapstructure:"actions_per_second" yaml:"actions_per_second"`
	ElementTimeout   time.Duration  `mapstructure:"element_timeout" yaml:"element_timeout"`
	Humanoid         HumanoidConfig `mapstructure:"humanoid" yaml:"humanoid"`
}

// NetworkConfig tunes page loading.
type NetworkConfig struct {
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	PostLoadWait      time.Duration `mapstructure:"post_load_wait" yaml:"post_load_wait"`
}

// GameConfig points at the lobby and the universe being played.
type GameConfig struct {
	LobbyURL string `mapstructure:"lobby_url" yaml:"lobby_url"`
	// ServerURL is the universe base, e.g. https://s144-tw.ogame.gameforge.com
	ServerURL   string        `mapstructure:"server_url" yaml:"server_url"`
	LoginSettle time.Duration `mapstructure:"login_settle" yaml:"login_settle"`
}

// AccountConfig holds the lobby credentials.
type AccountConfig struct {
	Email    string `mapstructure:"email" yaml:"email"`
	Password string `mapstructure:"password" yaml:"-"`
}

// SentinelConfig tunes the watch loop.
type SentinelConfig struct {
	RefreshPeriod time.Duration `mapstructure:"refresh_period" yaml:"refresh_period"`
}

// FleetSaveConfig describes where an endangered fleet is sent.
type FleetSaveConfig struct {
	// Position is the planet slot in the home system, 16 being deep space.
	Position int `mapstructure:"position" yaml:"position"`
	// Mission is one of expedition, transport, deployment, harvesting.
	Mission string `mapstructure:"mission" yaml:"mission"`
	// SpeedStep selects the speed button, 1 for 10% up to 10 for 100%.
	SpeedStep int `mapstructure:"speed_step" yaml:"speed_step"`
}

// FleetSaveMissions maps the accepted mission names to the game's mission ids.
var FleetSaveMissions = map[string]int{
	"transport":  3,
	"deployment": 4,
	"harvesting": 8,
	"expedition": 15,
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "fleetwatch")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Browser --
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.remote_url", "")
	v.SetDefault("browser.user_data_dir", "")
	v.SetDefault("browser.actions_per_second", 2.0)
	v.SetDefault("browser.element_timeout", "30s")
	setHumanoidDefaults(v)

	// -- Network --
	v.SetDefault("network.navigation_timeout", "90s")
	v.SetDefault("network.post_load_wait", "2s")

	// -- Game --
	v.SetDefault("game.lobby_url", "https://lobby.ogame.gameforge.com/zh_TW/")
	v.SetDefault("game.server_url", "https://s144-tw.ogame.gameforge.com")
	v.SetDefault("game.login_settle", "10s")

	// -- Sentinel --
	v.SetDefault("sentinel.refresh_period", "15m")

	// -- Fleet save --
	v.SetDefault("fleet_save.position", 16)
	v.SetDefault("fleet_save.mission", "expedition")
	v.SetDefault("fleet_save.speed_step", 1)
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Bind environment variables for sensitive data
	_ = v.BindEnv("account.password", "FLEETWATCH_ACCOUNT_PASSWORD")
	_ = v.BindEnv("database.url", "FLEETWATCH_DATABASE_URL")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Manually load the password if Unmarshal didn't pick it up
	if cfg.AccountCfg.Password == "" {
		cfg.AccountCfg.Password = os.Getenv("FLEETWATCH_ACCOUNT_PASSWORD")
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) expandPaths() error {
	logFile, err := homedir.Expand(c.LoggerCfg.LogFile)
	if err != nil {
		return fmt.Errorf("expand logger.log_file: %w", err)
	}
	c.LoggerCfg.LogFile = logFile

	dataDir, err := homedir.Expand(c.BrowserCfg.UserDataDir)
	if err != nil {
		return fmt.Errorf("expand browser.user_data_dir: %w", err)
	}
	c.BrowserCfg.UserDataDir = dataDir
	return nil
}

// Validate checks the configuration for required fields and sane values.
// Account and planets are checked separately by ValidateGame since commands
// like history never touch the game.
func (c *Config) Validate() error {
	if c.SentinelCfg.RefreshPeriod <= 0 {
		return fmt.Errorf("sentinel.refresh_period must be a positive duration")
	}
	if c.BrowserCfg.ActionsPerSecond <= 0 {
		return fmt.Errorf("browser.actions_per_second must be positive")
	}
	if c.BrowserCfg.ElementTimeout < 0 {
		return fmt.Errorf("browser.element_timeout must not be negative")
	}
	if p := c.FleetSaveCfg.Position; p < 1 || p > 16 {
		return fmt.Errorf("fleet_save.position must be between 1 and 16, got %d", p)
	}
	if _, ok := FleetSaveMissions[c.FleetSaveCfg.Mission]; !ok {
		return fmt.Errorf("fleet_save.mission %q is not one of expedition, transport, deployment, harvesting", c.FleetSaveCfg.Mission)
	}
	if s := c.FleetSaveCfg.SpeedStep; s < 1 || s > 10 {
		return fmt.Errorf("fleet_save.speed_step must be between 1 and 10, got %d", s)
	}
	if err := c.BrowserCfg.Humanoid.Validate(); err != nil {
		return fmt.Errorf("browser.humanoid configuration invalid: %w", err)
	}
	return nil
}

// ValidateGame checks what is needed to log in and watch planets.
func (c *Config) ValidateGame() error {
	if c.AccountCfg.Email == "" || c.AccountCfg.Password == "" {
		return fmt.Errorf("account.email and account.password are required (the password may come from FLEETWATCH_ACCOUNT_PASSWORD)")
	}
	if len(c.PlanetsCfg) == 0 {
		return fmt.Errorf("at least one entry in planets is required")
	}
	seen := make(map[string]bool, len(c.PlanetsCfg))
	for i, p := range c.PlanetsCfg {
		if p.PlanetID == "" {
			return fmt.Errorf("planets[%d].planet_id is required", i)
		}
		if seen[p.PlanetID] {
			return fmt.Errorf("planets[%d].planet_id %s is listed twice", i, p.PlanetID)
		}
		seen[p.PlanetID] = true
	}
	if c.GameCfg.LobbyURL == "" || c.GameCfg.ServerURL == "" {
		return fmt.Errorf("game.lobby_url and game.server_url are required")
	}
	return nil
}
