// Package media builds image CDN delivery URLs.
package media

import (
	"fmt"
	"strings"
)

const avatarTransform = "c_fill,g_face,h_400,w_400,q_auto,f_auto"

// AvatarURL returns a face-cropped 400x400 delivery URL for publicID.
func AvatarURL(cloudName, publicID string) string {
	if publicID == "" {
		return ""
	}
	publicID = strings.TrimSuffix(publicID, ".jpg")
	return fmt.Sprintf("https://res.cloudinary.com/%s/image/upload/%s/%s.jpg", cloudName, avatarTransform, publicID)
}
