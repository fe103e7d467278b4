// Package media builds delivery URLs for user-uploaded images.
package media

import (
	"fmt"
	"strings"
)

const uploadSegment = "/image/upload/"

// ResizedURL inserts a fill-crop transformation into a Cloudinary-style
// delivery URL. URLs that are not Cloudinary delivery URLs are returned
// unchanged so externally hosted images still render.
func ResizedURL(rawURL string, width, height int) string {
	if rawURL == "" {
		return ""
	}
	idx := strings.Index(rawURL, uploadSegment)
	if idx == -1 {
		return rawURL
	}

	transform := fmt.Sprintf("c_fill,g_auto,w_%d,h_%d/", width, height)
	insertAt := idx + len(uploadSegment)

	// Already transformed URLs are left alone.
	if strings.HasPrefix(rawURL[insertAt:], "c_fill,") {
		return rawURL
	}

	return rawURL[:insertAt] + transform + rawURL[insertAt:]
}

// IconURL returns the standard avatar rendition.
func IconURL(rawURL string) string {
	return ResizedURL(rawURL, 150, 150)
}

// HeaderURL returns the profile header rendition.
func HeaderURL(rawURL string) string {
	return ResizedURL(rawURL, 600, 200)
}
