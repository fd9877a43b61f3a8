package video

import (
	"net/url"
	"strings"
)

type EmbedType string

const (
	EmbedTypeNone    EmbedType = "none"
	EmbedTypeYouTube EmbedType = "youtube"
	EmbedTypeTwitch  EmbedType = "twitch"
	EmbedTypeVideo   EmbedType = "video"
	EmbedTypeIframe  EmbedType = "iframe"
)

type EmbedInfo struct {
	Type EmbedType `json:"type"`
	URL  string    `json:"url,omitempty"`
}

// GetEmbedInfo turns an event's stream link into something a page can embed.
// Twitch refuses to play inside a page unless told its host, so parent must be
// the host name the page is served from.
func GetEmbedInfo(link *string, parent string) EmbedInfo {
	if link == nil || strings.TrimSpace(*link) == "" {
		return EmbedInfo{Type: EmbedTypeNone}
	}

	l := strings.TrimSpace(*link)

	if strings.Contains(l, "youtube.com") || strings.Contains(l, "youtu.be") {
		if info, ok := youTube(l); ok {
			return info
		}
	}

	if strings.Contains(l, "twitch.tv") {
		if info, ok := twitch(l, parent); ok {
			return info
		}
	}

	lower := strings.ToLower(l)
	for _, ext := range []string{".mp4", ".webm", ".ogg", ".mov", ".m3u8"} {
		if strings.HasSuffix(lower, ext) {
			return EmbedInfo{Type: EmbedTypeVideo, URL: l}
		}
	}

	// Anything else goes into a plain iframe
	return EmbedInfo{Type: EmbedTypeIframe, URL: l}
}

func youTube(l string) (EmbedInfo, bool) {
	if strings.Contains(l, "youtube.com/embed/") {
		return EmbedInfo{Type: EmbedTypeYouTube, URL: l}, true
	}

	videoID := ""
	switch {
	case strings.Contains(l, "youtube.com/watch?v="):
		videoID = after(l, "v=")
		if idx := strings.Index(videoID, "&"); idx != -1 {
			videoID = videoID[:idx]
		}
	case strings.Contains(l, "youtube.com/live/"):
		videoID = after(l, "youtube.com/live/")
	case strings.Contains(l, "youtu.be/"):
		videoID = after(l, "youtu.be/")
	}
	if idx := strings.Index(videoID, "?"); idx != -1 {
		videoID = videoID[:idx]
	}

	if videoID == "" {
		return EmbedInfo{}, false
	}
	return EmbedInfo{Type: EmbedTypeYouTube, URL: "https://www.youtube.com/embed/" + videoID}, true
}

// twitch handles channel links (twitch.tv/name) and past broadcasts
// (twitch.tv/videos/123).
func twitch(l, parent string) (EmbedInfo, bool) {
	if !strings.Contains(l, "://") {
		l = "https://" + l
	}
	u, err := url.Parse(l)
	if err != nil {
		return EmbedInfo{}, false
	}
	if u.Host == "player.twitch.tv" {
		return EmbedInfo{Type: EmbedTypeTwitch, URL: l}, true
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	q := url.Values{}
	switch {
	case len(parts) == 2 && parts[0] == "videos" && parts[1] != "":
		q.Set("video", parts[1])
	case len(parts) == 1 && parts[0] != "":
		q.Set("channel", parts[0])
	default:
		return EmbedInfo{}, false
	}
	if parent != "" {
		q.Set("parent", parent)
	}
	return EmbedInfo{Type: EmbedTypeTwitch, URL: "https://player.twitch.tv/?" + q.Encode()}, true
}

func after(s, sep string) string {
	_, rest, _ := strings.Cut(s, sep)
	return rest
}
