package tweet

import (
	"fmt"
	"regexp"
	"strings"
)

// LinkKind tags the classification of one href-like string. The zero value
// means the string was blank and never evaluated, which is distinct from
// LinkInvalid.
type LinkKind int

const (
	LinkUnevaluated LinkKind = iota
	LinkInvalid
	LinkHelp
	LinkShortened
	LinkHashtag
	LinkBare
	LinkStatus
	LinkStatusPhoto
	LinkStatusRetweet
	LinkStatusLike
	LinkStatusReply
)

func (k LinkKind) String() string {
	switch k {
	case LinkInvalid:
		return "invalid"
	case LinkHelp:
		return "help"
	case LinkShortened:
		return "shortened"
	case LinkHashtag:
		return "hashtag"
	case LinkBare:
		return "bare"
	case LinkStatus:
		return "status"
	case LinkStatusPhoto:
		return "status_photo"
	case LinkStatusRetweet:
		return "status_retweet"
	case LinkStatusLike:
		return "status_like"
	case LinkStatusReply:
		return "status_reply"
	}
	return "unevaluated"
}

const helpCenterMarker = "help.twitter.com/using-twitter"

var (
	shortenedRegex = regexp.MustCompile(`https?://t\.co/(\w+)\??(\w+)?`)
	hashtagRegex   = regexp.MustCompile(`/hashtag/([a-zA-Z0-9_-]+)\?`)
	bareRegex      = regexp.MustCompile(`^/([a-zA-Z0-9_]+)$`)
	photoRegex     = regexp.MustCompile(`/?([a-zA-Z0-9_]+)/status/(\d+)/photo/(\d+)`)
	retweetRegex   = regexp.MustCompile(`/?([a-zA-Z0-9_]+)/status/(\d+)/retweet`)
	likeRegex      = regexp.MustCompile(`/?([a-zA-Z0-9_]+)/status/(\d+)/like`)
	replyRegex     = regexp.MustCompile(`/?([a-zA-Z0-9_]+)/status/(\d+)/repl`)
	statusRegex    = regexp.MustCompile(`/?([a-zA-Z0-9_]+)/status/(\d+)(?:/)?(.*)?`)
)

// Link is the immutable parse result over one href string. Capture groups
// are kept verbatim. Which fields are populated depends on Kind.
type Link struct {
	Source string
	Kind   LinkKind
	Err    string

	Handle     string
	StatusID   string
	PhotoIndex string
	Hashtag    string
	ShortCode  string
	ShortExtra string
	Extra      string
}

// ParseLink classifies source by trying each pattern in a fixed priority
// order; the first match wins. A blank source yields the unevaluated zero
// value, anything unmatched yields LinkInvalid with an error message.
func ParseLink(source string) Link {
	source = strings.TrimSpace(source)
	if source == "" {
		return Link{}
	}

	link := Link{Source: source}

	if strings.Contains(source, helpCenterMarker) {
		link.Kind = LinkHelp
		return link
	}
	if m := shortenedRegex.FindStringSubmatch(source); m != nil {
		link.Kind = LinkShortened
		link.ShortCode = m[1]
		link.ShortExtra = m[2]
		return link
	}
	if m := hashtagRegex.FindStringSubmatch(source); m != nil {
		link.Kind = LinkHashtag
		link.Hashtag = m[1]
		return link
	}
	if m := bareRegex.FindStringSubmatch(source); m != nil {
		link.Kind = LinkBare
		link.Handle = m[1]
		return link
	}
	if m := photoRegex.FindStringSubmatch(source); m != nil {
		link.Kind = LinkStatusPhoto
		link.Handle = m[1]
		link.StatusID = m[2]
		link.PhotoIndex = m[3]
		return link
	}
	if m := retweetRegex.FindStringSubmatch(source); m != nil {
		link.Kind = LinkStatusRetweet
		link.Handle = m[1]
		link.StatusID = m[2]
		return link
	}
	if m := likeRegex.FindStringSubmatch(source); m != nil {
		link.Kind = LinkStatusLike
		link.Handle = m[1]
		link.StatusID = m[2]
		return link
	}
	if m := replyRegex.FindStringSubmatch(source); m != nil {
		link.Kind = LinkStatusReply
		link.Handle = m[1]
		link.StatusID = m[2]
		return link
	}
	if m := statusRegex.FindStringSubmatch(source); m != nil {
		link.Kind = LinkStatus
		link.Handle = m[1]
		link.StatusID = m[2]
		link.Extra = m[3]
		return link
	}

	link.Kind = LinkInvalid
	link.Err = fmt.Sprintf("cannot parse %s", source)
	return link
}

// Valid reports whether parsing produced a recognized classification.
func (l Link) Valid() bool {
	return l.Kind != LinkUnevaluated && l.Kind != LinkInvalid
}

// IsStatus reports whether the link points at a specific status, including
// the photo and interaction sub-kinds.
func (l Link) IsStatus() bool {
	switch l.Kind {
	case LinkStatus, LinkStatusPhoto, LinkStatusRetweet, LinkStatusLike, LinkStatusReply:
		return true
	}
	return false
}

// IsInteraction reports whether the link is a retweet, like or reply action
// on a status rather than the status itself.
func (l Link) IsInteraction() bool {
	switch l.Kind {
	case LinkStatusRetweet, LinkStatusLike, LinkStatusReply:
		return true
	}
	return false
}

// StatusPath renders the canonical permalink path for a status link.
func (l Link) StatusPath() string {
	return fmt.Sprintf("/%s/status/%s", l.Handle, l.StatusID)
}
