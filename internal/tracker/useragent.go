package tracker

import (
	"strings"

	"github.com/mssola/useragent"
)

const (
	DeviceMobile  = "mobile"
	DeviceDesktop = "desktop"
	DeviceUnknown = "unknown"
)

// ClientInfo - результат разбора User-Agent.
type ClientInfo struct {
	Device  string
	Browser string
	OS      string
}

// UAParser классифицирует строку User-Agent.
type UAParser interface {
	Parse(userAgent string) ClientInfo
}

type mssolaParser struct{}

// NewUAParser возвращает парсер на github.com/mssola/useragent.
func NewUAParser() UAParser { return mssolaParser{} }

func (mssolaParser) Parse(raw string) ClientInfo {
	ua := useragent.New(raw)

	name, version := ua.Browser()
	osInfo := ua.OSInfo()

	info := ClientInfo{
		Browser: joinNameVersion(name, version),
		OS:      joinNameVersion(osInfo.Name, osInfo.Version),
	}

	if ua.Mobile() {
		info.Device = DeviceMobile
	} else {
		info.Device = deviceFromOS(osInfo.Name)
	}
	return info
}

// deviceFromOS - запасное правило, когда парсер не дал явного типа устройства.
func deviceFromOS(osName string) string {
	name := strings.ToLower(osName)
	switch {
	case strings.Contains(name, "android"),
		strings.Contains(name, "ios"),
		strings.Contains(name, "iphone"),
		strings.Contains(name, "ipad"):
		return DeviceMobile
	case strings.Contains(name, "mac"),
		strings.Contains(name, "windows"),
		strings.Contains(name, "linux"):
		return DeviceDesktop
	}
	return DeviceUnknown
}

func joinNameVersion(name, version string) string {
	if name == "" {
		name = "Unknown"
	}
	return strings.TrimSpace(name + " " + version)
}
