// Package tweet holds the canonical record model: normalized tweet and user
// records, the link classifier and the deduplicating collection.
package tweet

import (
	"fmt"
	"strings"
)

// ErrDelimiter joins accumulated record errors into the single exported
// "errors" attribute.
const ErrDelimiter = " ;;; "

// tweetDefaults declares every tweet attribute and its default. A tweet
// always carries all of these keys; extraction only ever overwrites them.
var tweetDefaults = map[string]string{
	"avatarURL":            "",
	"componentcontext":     "",
	"conversationid":       "0",
	"datestring":           "",
	"disclosuretype":       "",
	"errors":               "",
	"favoritecount":        "0",
	"followsyou":           "",
	"fullname":             "",
	"hascards":             "",
	"hasparenttweet":       "",
	"innertweetid":         "",
	"innertweetrawhref":    "",
	"is_pinned":            "",
	"is_toptweet":          "",
	"isreplyto":            "",
	"itemid":               "",
	"iterationindex":       "0",
	"iterationnumber":      "0",
	"name":                 "",
	"nexttweetid":          "0",
	"permalinkpath":        "",
	"photourl":             "",
	"previoustweetid":      "0",
	"quality":              string(QualityUnknown),
	"repliedtohandle":      "",
	"repliedtouserid":      "0",
	"replycount":           "0",
	"replytousersjson":     "",
	"retweetcount":         "0",
	"retweetid":            "0",
	"screenname":           "",
	"suggestionjson":       "",
	"time":                 "0",
	"tweetclasses":         "",
	"tweethtml":            "",
	"tweetid":              "0",
	"tweetlanguage":        "",
	"tweetmentions":        "",
	"tweetnonce":           "",
	"tweetphoto_image":     "",
	"tweetphoto_link":      "",
	"tweetstatinitialized": "",
	"tweettext":            "",
	"userid":               "0",
	"username":             "",
	"verifiedText":         "",
	"videothumburl":        "",
	"viewscount":           "0",
	"youblock":             "",
	"youfollow":            "",
}

// Tweet is one normalized post record. All attributes are strings and all
// declared keys are always present.
type Tweet struct {
	attrs map[string]string
	// User is the embedded author record when extraction recovered one.
	User *User
}

func NewTweet() *Tweet {
	attrs := make(map[string]string, len(tweetDefaults))
	for k, v := range tweetDefaults {
		attrs[k] = v
	}
	return &Tweet{attrs: attrs}
}

// TweetKeys returns the declared attribute names in no particular order.
func TweetKeys() []string {
	keys := make([]string, 0, len(tweetDefaults))
	for k := range tweetDefaults {
		keys = append(keys, k)
	}
	return keys
}

func (t *Tweet) ID() string { return t.attrs["tweetid"] }

// String renders a compact one-line summary for logs and tables.
func (t *Tweet) String() string {
	txt := t.attrs["tweettext"]
	if len(txt) > 40 {
		txt = txt[:40] + "..."
	}
	return fmt.Sprintf("id=%s q=%s txt=%q", t.attrs["tweetid"], t.attrs["quality"], txt)
}

// HasID reports whether an id was ever recovered for this record.
func (t *Tweet) HasID() bool {
	return !isEmptyOrZero(t.attrs["tweetid"])
}

func (t *Tweet) Get(key string) string { return t.attrs[key] }

// Set writes a declared attribute. Unknown keys are ignored so hostile
// source keys cannot grow the record.
func (t *Tweet) Set(key, value string) {
	if _, ok := tweetDefaults[key]; !ok {
		return
	}
	t.attrs[key] = value
}

// SetAll applies every declared key present in values.
func (t *Tweet) SetAll(values map[string]string) {
	for k, v := range values {
		t.Set(k, v)
	}
}

// AddError appends a soft extraction error to the record. The field that
// failed keeps its default; the run continues.
func (t *Tweet) AddError(msg string) {
	if t.attrs["errors"] == "" {
		t.attrs["errors"] = msg
		return
	}
	t.attrs["errors"] += ErrDelimiter + msg
}

func (t *Tweet) Errors() []string {
	if t.attrs["errors"] == "" {
		return nil
	}
	return strings.Split(t.attrs["errors"], ErrDelimiter)
}

// Attrs returns a copy of the record's attributes.
func (t *Tweet) Attrs() map[string]string {
	out := make(map[string]string, len(t.attrs))
	for k, v := range t.attrs {
		out[k] = v
	}
	return out
}

// fillGapsFrom copies other's values into t wherever t still holds an
// empty-or-zero default and other does not.
func (t *Tweet) fillGapsFrom(other *Tweet) {
	for key, incoming := range other.attrs {
		if isEmptyOrZero(t.attrs[key]) && !isEmptyOrZero(incoming) {
			t.attrs[key] = incoming
		}
	}
	if t.User == nil {
		t.User = other.User
	} else if other.User != nil {
		t.User.fillGapsFrom(other.User)
	}
}

func isEmptyOrZero(v string) bool {
	return v == "" || v == "0"
}
