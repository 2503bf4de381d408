package fetcher

import (
	"net/url"
	"regexp"
	"strings"

	"ewintr.nl/tubedigest/model"
)

type RefKind string

const (
	RefChannelID RefKind = "id"
	RefHandle    RefKind = "handle"
	RefName      RefKind = "name"
)

// ChannelRef is a channel reference as a user wrote it, classified by the
// way it has to be resolved to a channel id.
type ChannelRef struct {
	Kind  RefKind
	Value string
}

var (
	channelIDPattern = regexp.MustCompile(`^UC[0-9A-Za-z_-]{22}$`)
	videoIDPattern   = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)
)

// ParseChannelRef understands /channel/<id>, /@handle, /c/<name>,
// /user/<name> and /<name> urls, as well as bare ids and handles.
func ParseChannelRef(raw string) ChannelRef {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, "@"):
		return ChannelRef{Kind: RefHandle, Value: strings.TrimPrefix(raw, "@")}
	case channelIDPattern.MatchString(raw):
		return ChannelRef{Kind: RefChannelID, Value: raw}
	case !strings.Contains(raw, "/"):
		return ChannelRef{Kind: RefName, Value: raw}
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ChannelRef{Kind: RefName, Value: lastSegment(raw)}
	}

	segments := []string{}
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 {
		return ChannelRef{Kind: RefName, Value: u.Host}
	}

	for i, s := range segments {
		switch {
		case strings.HasPrefix(s, "@"):
			return ChannelRef{Kind: RefHandle, Value: strings.TrimPrefix(s, "@")}
		case s == "channel" && i+1 < len(segments):
			return ChannelRef{Kind: RefChannelID, Value: segments[i+1]}
		case (s == "c" || s == "user") && i+1 < len(segments):
			return ChannelRef{Kind: RefName, Value: segments[i+1]}
		}
	}

	return ChannelRef{Kind: RefName, Value: segments[0]}
}

func lastSegment(s string) string {
	s = strings.TrimRight(s, "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		return s[i+1:]
	}
	return s
}

// VideoIDFromURL extracts the video id from watch, youtu.be, shorts and live
// urls. A bare id is returned as is.
func VideoIDFromURL(raw string) (model.YoutubeVideoID, bool) {
	raw = strings.TrimSpace(raw)
	if videoIDPattern.MatchString(raw) {
		return model.YoutubeVideoID(raw), true
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false
	}
	host := strings.TrimPrefix(u.Host, "www.")
	host = strings.TrimPrefix(host, "m.")

	var id string
	switch {
	case host == "youtu.be":
		id = strings.Trim(u.Path, "/")
	case host == "youtube.com" && u.Path == "/watch":
		id = u.Query().Get("v")
	case host == "youtube.com" && (strings.HasPrefix(u.Path, "/shorts/") || strings.HasPrefix(u.Path, "/live/")):
		id = lastSegment(u.Path)
	}
	if !videoIDPattern.MatchString(id) {
		return "", false
	}

	return model.YoutubeVideoID(id), true
}
