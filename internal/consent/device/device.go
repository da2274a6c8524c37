// Package device reduces User-Agent strings to a coarse (OS family, device
// class) pair used to match "same device, different browser".
package device

import (
	"strings"

	"github.com/mssola/useragent"

	"portfolio/internal/consent/models"
)

const (
	OSWindows = "Windows"
	OSMac     = "macOS"
	OSLinux   = "Linux"
	OSAndroid = "Android"
	OSiOS     = "iOS"
	OSUnknown = "unknown"

	ClassMobile  = "Mobile"
	ClassTablet  = "Tablet"
	ClassDesktop = "Desktop"
)

// osMarkers is checked in order; the first marker found wins.
var osMarkers = []struct {
	marker string
	family string
}{
	{"Windows", OSWindows},
	{"Mac OS", OSMac},
	{"Linux", OSLinux},
	{"Android", OSAndroid},
	{"iOS", OSiOS},
}

// Summarize extracts the device summary of ua.
func Summarize(ua string) models.DeviceSummary {
	return models.DeviceSummary{
		OS:          OSFamily(ua),
		DeviceClass: Class(ua),
		Browser:     Browser(ua),
	}
}

// OSFamily returns the operating system family by substring match.
func OSFamily(ua string) string {
	for _, m := range osMarkers {
		if strings.Contains(ua, m.marker) {
			return m.family
		}
	}
	return OSUnknown
}

// Class returns Mobile, Tablet or Desktop by substring match.
func Class(ua string) string {
	switch {
	case strings.Contains(ua, "Mobile"):
		return ClassMobile
	case strings.Contains(ua, "Tablet"):
		return ClassTablet
	default:
		return ClassDesktop
	}
}

// Browser returns a human readable "name version" for notifications.
func Browser(ua string) string {
	if strings.TrimSpace(ua) == "" {
		return ""
	}
	name, version := useragent.New(ua).Browser()
	if version == "" {
		return name
	}
	return name + " " + version
}

// IsBot reports whether ua identifies a crawler.
func IsBot(ua string) bool {
	if strings.TrimSpace(ua) == "" {
		return false
	}
	return useragent.New(ua).Bot()
}

// Similar reports whether two summaries describe the same kind of device.
func Similar(a, b models.DeviceSummary) bool {
	return a.OS == b.OS && a.DeviceClass == b.DeviceClass
}
