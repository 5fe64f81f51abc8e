package parser

import "strings"

type UserAgent struct {
	OS      string `json:"os"`
	Browser string `json:"browser"`
	Device  string `json:"device"`
}

// Parse classifies a User-Agent header into coarse OS, browser and device buckets.
// Order matters: Android agents mention Linux, iOS agents mention Mac OS, and Edge agents mention Chrome.
func Parse(ua string) UserAgent {
	l := strings.ToLower(ua)
	return UserAgent{
		OS:      parseOS(l),
		Browser: parseBrowser(l),
		Device:  parseDevice(l),
	}
}

func parseOS(l string) string {
	switch {
	case strings.Contains(l, "android"):
		return "Android"
	case strings.Contains(l, "iphone"), strings.Contains(l, "ipad"):
		return "iOS"
	case strings.Contains(l, "windows"):
		return "Windows"
	case strings.Contains(l, "mac os"):
		return "macOS"
	case strings.Contains(l, "linux"):
		return "Linux"
	default:
		return "Unknown"
	}
}

func parseBrowser(l string) string {
	switch {
	case strings.Contains(l, "edg"):
		return "Edge"
	case strings.Contains(l, "firefox"):
		return "Firefox"
	case strings.Contains(l, "chrome"):
		return "Chrome"
	case strings.Contains(l, "safari"):
		return "Safari"
	default:
		return "Unknown"
	}
}

func parseDevice(l string) string {
	switch {
	case strings.Contains(l, "ipad"), strings.Contains(l, "tablet"):
		return "tablet"
	case strings.Contains(l, "mobi"), strings.Contains(l, "iphone"), strings.Contains(l, "android"):
		return "mobile"
	case l == "":
		return "unknown"
	default:
		return "desktop"
	}
}
