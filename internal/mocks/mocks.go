// File: internal/mocks/mocks.go
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/fleetwatch/api/schemas"
	"github.com/xkilldash9x/fleetwatch/internal/config"
)

// -- Config Mock --

// MockConfig mocks the config.Interface.
type MockConfig struct {
	mock.Mock
}

// --- Getters ---

func (m *MockConfig) Logger() config.LoggerConfig {
	args := m.Called()
	return args.Get(0).(config.LoggerConfig)
}

func (m *MockConfig) Database() config.DatabaseConfig {
	args := m.Called()
	return args.Get(0).(config.DatabaseConfig)
}

func (m *MockConfig) Browser() config.BrowserConfig {
	args := m.Called()
	return args.Get(0).(config.BrowserConfig)
}

func (m *MockConfig) Network() config.NetworkConfig {
	args := m.Called()
	return args.Get(0).(config.NetworkConfig)
}

func (m *MockConfig) Game() config.GameConfig {
	args := m.Called()
	return args.Get(0).(config.GameConfig)
}

func (m *MockConfig) Account() config.AccountConfig {
	args := m.Called()
	return args.Get(0).(config.AccountConfig)
}

func (m *MockConfig) Planets() []schemas.PlanetID {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]schemas.PlanetID)
}

func (m *MockConfig) Sentinel() config.SentinelConfig {
	args := m.Called()
	return args.Get(0).(config.SentinelConfig)
}

func (m *MockConfig) FleetSave() config.FleetSaveConfig {
	args := m.Called()
	return args.Get(0).(config.FleetSaveConfig)
}

// --- Setters ---

func (m *MockConfig) SetBrowserHeadless(b bool) {
	m.Called(b)
}

func (m *MockConfig) SetSentinelRefreshPeriod(d time.Duration) {
	m.Called(d)
}

// -- Game Client Mock --

// MockGameClient mocks the game operations the sentinel loop drives.
type MockGameClient struct {
	mock.Mock
}

func (m *MockGameClient) Login(ctx context.Context, email, password string) error {
	return m.Called(ctx, email, password).Error(0)
}

func (m *MockGameClient) EmpireOverview(ctx context.Context, planets []schemas.PlanetID) (*schemas.EmpireOverview, error) {
	args := m.Called(ctx, planets)
	var ov *schemas.EmpireOverview
	if v := args.Get(0); v != nil {
		ov = v.(*schemas.EmpireOverview)
	}
	return ov, args.Error(1)
}

func (m *MockGameClient) FleetSave(ctx context.Context, planetID string) error {
	return m.Called(ctx, planetID).Error(0)
}

// -- Recorder Mock --

// MockRecorder mocks cycle history persistence.
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordCycle(ctx context.Context, rec schemas.CycleRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *MockRecorder) RecordFleetSave(ctx context.Context, rec schemas.FleetSaveRecord) error {
	return m.Called(ctx, rec).Error(0)
}

// -- Page Mock --

// MockPage mocks the browser page the game client scrapes through.
type MockPage struct {
	mock.Mock
}

func (m *MockPage) Navigate(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

func (m *MockPage) WaitVisible(ctx context.Context, selector string) error {
	return m.Called(ctx, selector).Error(0)
}

func (m *MockPage) Exists(ctx context.Context, selector string) (bool, error) {
	args := m.Called(ctx, selector)
	return args.Bool(0), args.Error(1)
}

func (m *MockPage) Click(ctx context.Context, selector string) error {
	return m.Called(ctx, selector).Error(0)
}

func (m *MockPage) Fill(ctx context.Context, selector, value string) error {
	return m.Called(ctx, selector, value).Error(0)
}

func (m *MockPage) Text(ctx context.Context, selector string) (string, error) {
	args := m.Called(ctx, selector)
	return args.String(0), args.Error(1)
}

func (m *MockPage) OuterHTML(ctx context.Context, selector string) (string, error) {
	args := m.Called(ctx, selector)
	return args.String(0), args.Error(1)
}

func (m *MockPage) ClickAndFollowTab(ctx context.Context, selector string) error {
	return m.Called(ctx, selector).Error(0)
}

func (m *MockPage) Sleep(ctx context.Context, d time.Duration) error {
	return m.Called(ctx, d).Error(0)
}
