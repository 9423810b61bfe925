// Package device maps viewport width and user-agent strings onto the three
// device classes the receipt handoff distinguishes.
package device

import "strings"

// Class is a coarse device family.
type Class string

const (
	Mobile  Class = "mobile"
	Tablet  Class = "tablet"
	Desktop Class = "desktop"
)

const (
	mobileMaxWidth = 768
	tabletMaxWidth = 1024
)

var phoneMarkers = []string{"iphone", "ipod", "windows phone"}
var tabletMarkers = []string{"ipad", "tablet", "kindle", "silk"}

// Classify is a pure function from (viewport width, user agent) to a device
// class. User-agent markers win over width; Android is a phone unless the UA
// also claims a tablet form factor. A non-positive width means the width is
// unknown and only the user agent is consulted.
func Classify(viewportWidth int, userAgent string) Class {
	ua := strings.ToLower(userAgent)

	for _, marker := range tabletMarkers {
		if strings.Contains(ua, marker) {
			return Tablet
		}
	}
	for _, marker := range phoneMarkers {
		if strings.Contains(ua, marker) {
			return Mobile
		}
	}
	if strings.Contains(ua, "android") {
		// Android tablets usually drop the "Mobile" token.
		if strings.Contains(ua, "mobile") {
			return Mobile
		}
		return Tablet
	}

	if viewportWidth > 0 {
		if viewportWidth < mobileMaxWidth {
			return Mobile
		}
		if viewportWidth < tabletMaxWidth {
			return Tablet
		}
	}
	return Desktop
}

// IsMobilePlatform reports whether the user agent belongs to one of the two
// mobile platform families that get inline PDF handoff instead of a download.
func IsMobilePlatform(userAgent string) bool {
	ua := strings.ToLower(userAgent)
	return strings.Contains(ua, "android") ||
		strings.Contains(ua, "iphone") ||
		strings.Contains(ua, "ipad") ||
		strings.Contains(ua, "ipod")
}
