// Package htmlparse reads one rendered tweet element into a normalized
// record. The markup is hostile and changes under us, so every field group
// is recovered through its own ordered chain of strategies; when one chain
// is exhausted the field keeps its default and a soft error is attached to
// the record.
package htmlparse

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"tweetwatch/lib/fallback"
	"tweetwatch/lib/htmlutil"
	"tweetwatch/lib/textutil"
	"tweetwatch/lib/tweet"
)

// Extract reads one content element (usually an article node) into a tweet
// record with its embedded author. Field groups are independent: a chain
// failing in one group never blocks the others.
func Extract(sel *goquery.Selection) *tweet.Tweet {
	record := tweet.NewTweet()
	user := tweet.NewUser()
	record.User = user

	extractID(sel, record)
	extractInteractions(sel, record)
	extractViews(sel, record)
	extractText(sel, record)
	extractPhoto(sel, record)
	extractPermalink(sel, record)
	extractDate(sel, record)
	extractAvatar(sel, record, user)
	extractNames(sel, record, user)
	extractVerified(sel, user)

	return record
}

// statusAnchors returns every anchor under sel whose href classifies as a
// status link, paired with its parse result.
func statusAnchors(sel *goquery.Selection) []tweet.Link {
	var links []tweet.Link
	sel.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		link := tweet.ParseLink(href)
		if link.Valid() && link.IsStatus() {
			links = append(links, link)
		}
	})
	return links
}

type idStrategy struct {
	id     string
	handle string
}

func (s idStrategy) Valid() bool { return s.id != "" }

func extractID(sel *goquery.Selection, record *tweet.Tweet) {
	chain := []func() idStrategy{
		// a timestamp element whose parent is a permalink anchor is the
		// most stable id carrier
		func() idStrategy {
			var out idStrategy
			sel.Find("time").EachWithBreak(func(_ int, t *goquery.Selection) bool {
				parent := t.Parent()
				if goquery.NodeName(parent) != "a" {
					return true
				}
				link := tweet.ParseLink(parent.AttrOr("href", ""))
				if link.Valid() && link.IsStatus() && !link.IsInteraction() {
					out = idStrategy{id: link.StatusID, handle: link.Handle}
					return false
				}
				return true
			})
			return out
		},
		// interaction anchors carry the same status id; historically
		// unreliable, kept as a last resort only
		func() idStrategy {
			for _, link := range statusAnchors(sel) {
				if link.IsInteraction() {
					return idStrategy{id: link.StatusID, handle: link.Handle}
				}
			}
			return idStrategy{}
		},
	}

	fallback.Resolve(chain, func(s idStrategy) {
		record.Set("tweetid", s.id)
		record.Set("screenname", s.handle)
	}, func() {
		record.AddError("could not find tweet id")
	})
}

var (
	tripleCountRegex  = regexp.MustCompile(`(\d+) [^,]*, (\d+) [^,]*, (\d+) `)
	replyCountRegex   = regexp.MustCompile(`(?i)(\d+) repl`)
	retweetCountRegex = regexp.MustCompile(`(?i)(\d+) (?:retweet|repost)`)
	likeCountRegex    = regexp.MustCompile(`(?i)(\d+) like`)
)

type interactionStrategy struct {
	replies  string
	retweets string
	likes    string
}

func (s interactionStrategy) Valid() bool {
	return s.replies != "" || s.retweets != "" || s.likes != ""
}

func extractInteractions(sel *goquery.Selection, record *tweet.Tweet) {
	chain := []func() interactionStrategy{
		// one aria-label carrying all three counts at once
		func() interactionStrategy {
			var out interactionStrategy
			sel.Find("div[aria-label]").EachWithBreak(func(_ int, d *goquery.Selection) bool {
				m := tripleCountRegex.FindStringSubmatch(d.AttrOr("aria-label", ""))
				if m == nil {
					return true
				}
				out = interactionStrategy{replies: m[1], retweets: m[2], likes: m[3]}
				return false
			})
			return out
		},
		// one anchor per interaction, count rendered in a nested span
		func() interactionStrategy {
			var out interactionStrategy
			sel.Find(`a[role="link"]`).Each(func(_ int, a *goquery.Selection) {
				link := tweet.ParseLink(a.AttrOr("href", ""))
				if !link.IsInteraction() {
					return
				}
				count := textutil.ParseNumericPhrase(
					a.Find("div > span > span > span").First().Text(),
				).FirstNumber()
				if count == "" {
					return
				}
				switch link.Kind {
				case tweet.LinkStatusReply:
					out.replies = count
				case tweet.LinkStatusRetweet:
					out.retweets = count
				case tweet.LinkStatusLike:
					out.likes = count
				}
			})
			return out
		},
		// independent single-count labels scattered over the element
		func() interactionStrategy {
			var out interactionStrategy
			sel.Find("[aria-label]").Each(func(_ int, d *goquery.Selection) {
				label := d.AttrOr("aria-label", "")
				if m := replyCountRegex.FindStringSubmatch(label); m != nil && out.replies == "" {
					out.replies = m[1]
				}
				if m := retweetCountRegex.FindStringSubmatch(label); m != nil && out.retweets == "" {
					out.retweets = m[1]
				}
				if m := likeCountRegex.FindStringSubmatch(label); m != nil && out.likes == "" {
					out.likes = m[1]
				}
			})
			return out
		},
	}

	fallback.Resolve(chain, func(s interactionStrategy) {
		if s.replies != "" {
			record.Set("replycount", s.replies)
		}
		if s.retweets != "" {
			record.Set("retweetcount", s.retweets)
		}
		if s.likes != "" {
			record.Set("favoritecount", s.likes)
		}
		record.Set("tweetstatinitialized", "true")
	}, func() {
		record.AddError("could not find interaction counts")
	})
}

type viewsStrategy struct {
	views string
}

func (s viewsStrategy) Valid() bool { return s.views != "" }

func extractViews(sel *goquery.Selection, record *tweet.Tweet) {
	chain := []func() viewsStrategy{
		func() viewsStrategy {
			var out viewsStrategy
			sel.Find("a[aria-label]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
				if !strings.Contains(a.AttrOr("href", ""), "analytics") {
					return true
				}
				n := textutil.ParseNumericPhrase(a.AttrOr("aria-label", "")).FirstNumber()
				if n == "" {
					return true
				}
				out.views = n
				return false
			})
			return out
		},
	}

	fallback.Resolve(chain, func(s viewsStrategy) {
		record.Set("viewscount", s.views)
	}, func() {
		record.AddError("could not find view count")
	})
}

type textStrategy struct {
	text string
	html string
	lang string
}

func (s textStrategy) Valid() bool { return s.text != "" }

func extractText(sel *goquery.Selection, record *tweet.Tweet) {
	chain := []func() textStrategy{
		// the tweet body is the container whose lang attribute marks the
		// written language
		func() textStrategy {
			var out textStrategy
			sel.Find("div > div > span").EachWithBreak(func(_ int, span *goquery.Selection) bool {
				parent := span.Parent()
				lang, ok := parent.Attr("lang")
				if !ok {
					return true
				}
				html, err := parent.Html()
				if err != nil {
					return true
				}
				out = textStrategy{
					text: parent.Text(),
					html: html,
					lang: lang,
				}
				return false
			})
			return out
		},
		func() textStrategy {
			body := sel.Find("div[lang]").First()
			if body.Length() == 0 {
				return textStrategy{}
			}
			html, _ := body.Html()
			return textStrategy{
				text: body.Text(),
				html: html,
				lang: body.AttrOr("lang", ""),
			}
		},
	}

	fallback.Resolve(chain, func(s textStrategy) {
		record.Set("tweettext", s.text)
		record.Set("tweethtml", s.html)
		record.Set("tweetlanguage", s.lang)
	}, func() {
		record.AddError("could not find tweet text")
	})
}

type photoStrategy struct {
	link  string
	image string
}

func (s photoStrategy) Valid() bool { return s.link != "" || s.image != "" }

func extractPhoto(sel *goquery.Selection, record *tweet.Tweet) {
	chain := []func() photoStrategy{
		func() photoStrategy {
			var out photoStrategy
			sel.Find("div > div > a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
				href := a.AttrOr("href", "")
				link := tweet.ParseLink(href)
				if link.Kind != tweet.LinkStatusPhoto {
					return true
				}
				out.link = href
				img := a.Parent().Find("div > div > img").First()
				if img.Length() == 0 {
					img = a.Find("img").First()
				}
				out.image = img.AttrOr("src", "")
				return false
			})
			return out
		},
	}

	fallback.Resolve(chain, func(s photoStrategy) {
		record.Set("tweetphoto_link", s.link)
		record.Set("tweetphoto_image", s.image)
	}, func() {
		record.AddError("could not find tweet photo")
	})
}

type permalinkStrategy struct {
	path string
}

func (s permalinkStrategy) Valid() bool { return s.path != "" }

func extractPermalink(sel *goquery.Selection, record *tweet.Tweet) {
	chain := []func() permalinkStrategy{
		func() permalinkStrategy {
			var out permalinkStrategy
			sel.Find("time").EachWithBreak(func(_ int, t *goquery.Selection) bool {
				parent := t.Parent()
				if goquery.NodeName(parent) != "a" {
					return true
				}
				link := tweet.ParseLink(parent.AttrOr("href", ""))
				if link.Valid() && link.IsStatus() && !link.IsInteraction() {
					out.path = link.Source
					return false
				}
				return true
			})
			return out
		},
		func() permalinkStrategy {
			var out permalinkStrategy
			sel.Find(`div > div > a[role="link"]`).EachWithBreak(func(_ int, a *goquery.Selection) bool {
				link := tweet.ParseLink(a.AttrOr("href", ""))
				if link.Valid() && link.IsStatus() {
					out.path = link.StatusPath()
					return false
				}
				return true
			})
			return out
		},
	}

	fallback.Resolve(chain, func(s permalinkStrategy) {
		record.Set("permalinkpath", s.path)
	}, func() {
		record.AddError("could not find permalink")
	})
}

type dateStrategy struct {
	datetime string
}

func (s dateStrategy) Valid() bool { return s.datetime != "" }

func extractDate(sel *goquery.Selection, record *tweet.Tweet) {
	chain := []func() dateStrategy{
		func() dateStrategy {
			return dateStrategy{
				datetime: sel.Find("time[datetime]").First().AttrOr("datetime", ""),
			}
		},
	}

	fallback.Resolve(chain, func(s dateStrategy) {
		record.Set("datestring", s.datetime)
	}, func() {
		record.AddError("could not find date")
	})
}

type avatarStrategy struct {
	src string
}

func (s avatarStrategy) Valid() bool { return s.src != "" }

func extractAvatar(sel *goquery.Selection, record *tweet.Tweet, user *tweet.User) {
	chain := []func() avatarStrategy{
		func() avatarStrategy {
			var out avatarStrategy
			sel.Find("div > div > div > div > img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
				src := img.AttrOr("src", "")
				if strings.Contains(src, "profile_images") {
					out.src = src
					return false
				}
				return true
			})
			return out
		},
		func() avatarStrategy {
			return avatarStrategy{
				src: sel.Find(`img[src*="profile_images"]`).First().AttrOr("src", ""),
			}
		},
	}

	fallback.Resolve(chain, func(s avatarStrategy) {
		record.Set("avatarURL", s.src)
		user.Set("avatarURL", s.src)
	}, func() {
		record.AddError("could not find avatar")
	})
}

type nameStrategy struct {
	handle      string
	displayName string
}

func (s nameStrategy) Valid() bool { return s.handle != "" }

func extractNames(sel *goquery.Selection, record *tweet.Tweet, user *tweet.User) {
	chain := []func() nameStrategy{
		func() nameStrategy {
			var out nameStrategy
			sel.Find(`a[role="link"]`).EachWithBreak(func(_ int, a *goquery.Selection) bool {
				link := tweet.ParseLink(a.AttrOr("href", ""))
				if link.Kind != tweet.LinkBare {
					return true
				}
				out.handle = link.Handle
				if span := a.Find("span").First(); len(span.Nodes) > 0 {
					out.displayName = htmlutil.CleanText(span.Nodes[0])
				}
				return false
			})
			return out
		},
	}

	fallback.Resolve(chain, func(s nameStrategy) {
		if s.displayName == "" {
			s.displayName = s.handle
		}
		record.Set("screenname", s.handle)
		record.Set("fullname", s.displayName)
		user.Set("handle", s.handle)
		user.Set("displayName", s.displayName)
	}, func() {
		record.AddError("could not find author names")
	})
}

type verifiedStrategy struct {
	label string
}

func (s verifiedStrategy) Valid() bool { return s.label != "" }

func extractVerified(sel *goquery.Selection, user *tweet.User) {
	chain := []func() verifiedStrategy{
		func() verifiedStrategy {
			var out verifiedStrategy
			sel.Find("svg[aria-label]").EachWithBreak(func(_ int, svg *goquery.Selection) bool {
				if strings.Contains(svg.AttrOr("data-testid", ""), "verified") {
					out.label = svg.AttrOr("aria-label", "")
					return false
				}
				return true
			})
			return out
		},
	}

	fallback.Resolve(chain, func(s verifiedStrategy) {
		user.Set("verifiedStatus", "VERIFIED")
	}, nil)
}
