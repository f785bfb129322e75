// internal/browser/stealth/stealth.go
package stealth

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/fleetwatch/api/schemas"
)

//go:embed evasions.js
var evasionsScript string

// Apply makes a tab present the persona consistently: headers, user agent
// and client hints, viewport, timezone and locale, plus a script that hides
// automation markers on every new document.
func Apply(persona schemas.Persona, logger *zap.Logger) chromedp.Action {
	l := logger.Named("stealth")
	return chromedp.Tasks{
		network.Enable(),
		setAcceptLanguage(persona),
		setUserAgent(persona),
		setDeviceMetrics(persona),
		setEnvironment(persona),
		injectEvasions(persona),
		chromedp.ActionFunc(func(ctx context.Context) error {
			l.Debug("Stealth profile applied.", zap.String("user_agent", persona.UserAgent))
			return nil
		}),
	}
}

// Script returns the evasion script with the persona bound to it.
func Script(persona schemas.Persona) (string, error) {
	raw, err := json.Marshal(persona)
	if err != nil {
		return "", fmt.Errorf("stealth: marshal persona: %w", err)
	}
	return fmt.Sprintf("const FLEETWATCH_PERSONA = %s;\n%s", raw, evasionsScript), nil
}

// AcceptLanguage renders the persona languages as an Accept-Language value
// with descending q weights, floored at 0.7.
func AcceptLanguage(languages []string) string {
	if len(languages) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(languages[0])
	for i, lang := range languages[1:] {
		q := 1.0 - float64(i+1)*0.1
		if q < 0.7 {
			q = 0.7
		}
		fmt.Fprintf(&b, ",%s;q=%.1f", lang, q)
	}
	return b.String()
}

func injectEvasions(persona schemas.Persona) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		script, err := Script(persona)
		if err != nil {
			return err
		}
		if _, err := page.AddScriptToEvaluateOnNewDocument(script).Do(ctx); err != nil {
			return fmt.Errorf("stealth: add evasion script: %w", err)
		}
		return nil
	})
}

func setUserAgent(persona schemas.Persona) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		override := emulation.SetUserAgentOverride(persona.UserAgent).
			WithPlatform(persona.Platform).
			WithAcceptLanguage(strings.Join(persona.Languages, ","))

		if ch := persona.ClientHintsData; ch != nil {
			brands := make([]*emulation.UserAgentBrandVersion, 0, len(ch.Brands))
			for _, b := range ch.Brands {
				brands = append(brands, &emulation.UserAgentBrandVersion{Brand: b.Brand, Version: b.Version})
			}
			override = override.WithUserAgentMetadata(&emulation.UserAgentMetadata{
				Brands:          brands,
				Mobile:          ch.Mobile,
				Platform:        ch.Platform,
				PlatformVersion: ch.PlatformVersion,
				Architecture:    ch.Architecture,
				Bitness:         ch.Bitness,
			})
		}
		if err := override.Do(ctx); err != nil {
			return fmt.Errorf("stealth: set user agent: %w", err)
		}
		return nil
	})
}

func setAcceptLanguage(persona schemas.Persona) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		value := AcceptLanguage(persona.Languages)
		if value == "" {
			return nil
		}
		headers := network.Headers{"Accept-Language": value}
		if err := network.SetExtraHTTPHeaders(headers).Do(ctx); err != nil {
			return fmt.Errorf("stealth: set headers: %w", err)
		}
		return nil
	})
}

func setDeviceMetrics(persona schemas.Persona) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if persona.Width <= 0 || persona.Height <= 0 {
			return nil
		}
		orientation := emulation.OrientationTypeLandscapePrimary
		if persona.Height > persona.Width {
			orientation = emulation.OrientationTypePortraitPrimary
		}
		err := emulation.SetDeviceMetricsOverride(persona.Width, persona.Height, 1.0, persona.Mobile).
			WithScreenOrientation(&emulation.ScreenOrientation{Type: orientation}).
			Do(ctx)
		if err != nil {
			return fmt.Errorf("stealth: set device metrics: %w", err)
		}
		return nil
	})
}

func setEnvironment(persona schemas.Persona) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if persona.Timezone != "" {
			if err := emulation.SetTimezoneOverride(persona.Timezone).Do(ctx); err != nil {
				return fmt.Errorf("stealth: set timezone: %w", err)
			}
		}
		locale := persona.Locale
		if locale == "" && len(persona.Languages) > 0 {
			locale = persona.Languages[0]
		}
		if locale != "" {
			if err := emulation.SetLocaleOverride().WithLocale(strings.ReplaceAll(locale, "_", "-")).Do(ctx); err != nil {
				return fmt.Errorf("stealth: set locale: %w", err)
			}
		}
		return nil
	})
}
