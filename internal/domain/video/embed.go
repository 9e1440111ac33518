package video

import "regexp"

var (
	youtubeURLPattern = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([^&\n?#]+)`)
	youtubeIDPattern  = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
)

const embedBase = "https://www.youtube.com/embed/"

// YouTubeID extracts the video id from a watch, short or embed URL, or
// accepts a bare 11-character id.
func YouTubeID(url string) (string, bool) {
	if url == "" {
		return "", false
	}
	if m := youtubeURLPattern.FindStringSubmatch(url); m != nil {
		return m[1], true
	}
	if youtubeIDPattern.MatchString(url) {
		return url, true
	}
	return "", false
}

// EmbedURL returns the player URL of the video, or "" when VideoURL is not
// a recognised YouTube reference.
func (v *Video) EmbedURL() string {
	id, ok := YouTubeID(v.VideoURL)
	if !ok {
		return ""
	}
	return embedBase + id + "?rel=0&modestbranding=1&showinfo=0"
}
