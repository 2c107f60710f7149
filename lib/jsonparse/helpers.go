package jsonparse

import (
	"strconv"
	"strings"
	"time"

	"tweetwatch/lib/mapping"
	"tweetwatch/lib/tweet"
)

// mediaObject accepts entities.media either as a bare object or as the
// first element of an array, which varies by endpoint version.
func mediaObject(source map[string]any) (map[string]any, bool) {
	media, ok := get(source, "entities", "media")
	if !ok {
		return nil, false
	}
	if obj, ok := media.(map[string]any); ok {
		return obj, true
	}
	if arr, ok := media.([]any); ok && len(arr) > 0 {
		obj, ok := arr[0].(map[string]any)
		return obj, ok
	}
	return nil, false
}

// createdAtEpoch converts the source timestamp format to epoch seconds.
// The classic format is tried first, RFC3339 second; anything else yields
// the "0" default.
func createdAtEpoch(createdAt string) string {
	for _, layout := range []string{"Mon Jan 02 15:04:05 -0700 2006", time.RFC3339} {
		if parsed, err := time.Parse(layout, createdAt); err == nil {
			return strconv.FormatInt(parsed.Unix(), 10)
		}
	}
	return "0"
}

var tweetFields = []mapping.Field{
	{TargetKey: "tweetid", SourceKey: "id_str", Default: "0"},
	{TargetKey: "userid", SourceKey: "user_id_str", Default: "0"},
	{TargetKey: "datestring", SourceKey: "created_at", Default: ""},
	{TargetKey: "tweettext", SourceKey: "full_text", Default: ""},
	{TargetKey: "tweetlanguage", SourceKey: "lang", Default: ""},
	{TargetKey: "conversationid", SourceKey: "conversation_id_str", Default: "0"},
	{TargetKey: "isreplyto", SourceKey: "in_reply_to_status_id_str", Default: ""},
	{TargetKey: "repliedtouserid", SourceKey: "in_reply_to_user_id_str", Default: "0"},
	{TargetKey: "repliedtohandle", SourceKey: "in_reply_to_screen_name", Default: ""},
	{TargetKey: "favoritecount", SourceKey: "favorite_count", Default: "0"},
	{TargetKey: "replycount", SourceKey: "reply_count", Default: "0"},
	{TargetKey: "retweetcount", SourceKey: "retweet_count", Default: "0"},
	{
		TargetKey: "time",
		Default:   "0",
		Importer: func(target map[string]string, source map[string]any) {
			if createdAt, ok := source["created_at"].(string); ok {
				target["time"] = createdAtEpoch(createdAt)
			}
		},
	},
	{
		TargetKey: "tweetmentions",
		Default:   "",
		Importer: func(target map[string]string, source map[string]any) {
			mentions, ok := getArray(source, "entities", "user_mentions")
			if !ok {
				return
			}
			var handles []string
			for _, mention := range mentions {
				if handle := getString(mention, "screen_name"); handle != "" {
					handles = append(handles, handle)
				}
			}
			target["tweetmentions"] = strings.Join(handles, ",")
		},
	},
	{
		TargetKey: "tweetphoto_link",
		Default:   "",
		Importer: func(target map[string]string, source map[string]any) {
			if media, ok := mediaObject(source); ok {
				target["tweetphoto_link"] = getString(media, "expanded_url")
			}
		},
	},
	{
		TargetKey: "tweetphoto_image",
		Default:   "",
		Importer: func(target map[string]string, source map[string]any) {
			media, ok := mediaObject(source)
			if !ok {
				return
			}
			if url := getString(media, "media_url_https"); url != "" {
				target["tweetphoto_image"] = url
				return
			}
			target["tweetphoto_image"] = getString(media, "media_url")
		},
	},
	{
		TargetKey: "videothumburl",
		Default:   "",
		Importer: func(target map[string]string, source map[string]any) {
			media, ok := mediaObject(source)
			if !ok || !has(media, "video_info") {
				return
			}
			if url := getString(media, "media_url_https"); url != "" {
				target["videothumburl"] = url
				return
			}
			target["videothumburl"] = getString(media, "media_url")
		},
	},
	{
		TargetKey: "hascards",
		Default:   "",
		Importer: func(target map[string]string, source map[string]any) {
			if has(source, "card") {
				target["hascards"] = "1"
			} else {
				target["hascards"] = "0"
			}
		},
	},
}

// TweetFromJSON builds a normalized tweet record from one raw tweet
// object. The descriptors run against the top-level object first, then
// against its legacy sub-object, the legacy pass only filling attributes
// the top-level pass left at their default.
func TweetFromJSON(obj map[string]any) *tweet.Tweet {
	attrs := mapping.Import(tweetFields, obj)
	if legacy, ok := getMap(obj, "legacy"); ok {
		mapping.FillGaps(attrs, mapping.Import(tweetFields, legacy))
	}

	if mapping.IsEmptyOrZero(attrs["tweetid"]) {
		if id, ok := obj["id"]; ok && isNumeric(id) {
			attrs["tweetid"] = mapping.AsString(id)
		} else if restID, ok := obj["rest_id"]; ok && isNumeric(restID) {
			attrs["tweetid"] = mapping.AsString(restID)
		}
	}

	if quoted, ok := get(obj, "quoted_status_result", "result", "rest_id"); ok {
		attrs["innertweetid"] = mapping.AsString(quoted)
	}
	if href := getString(obj, "legacy", "quoted_status_permalink", "expanded"); href != "" {
		attrs["innertweetrawhref"] = href
	}

	record := tweet.NewTweet()
	record.SetAll(attrs)
	return record
}

var userFields = []mapping.Field{
	{TargetKey: "id", SourceKey: "id_str", Default: "0"},
	{TargetKey: "handle", SourceKey: "screen_name", Default: "placeholder_handle"},
	{TargetKey: "displayName", SourceKey: "name", Default: ""},
	{TargetKey: "avatarURL", SourceKey: "profile_image_url_https", Default: ""},
	{TargetKey: "numTotalTweets", SourceKey: "statuses_count", Default: "0"},
	{TargetKey: "numFollowers", SourceKey: "followers_count", Default: "0"},
	{TargetKey: "numFollowing", SourceKey: "friends_count", Default: "0"},
	{TargetKey: "canDM", SourceKey: "can_dm", Default: ""},
	{TargetKey: "canMediaTag", SourceKey: "can_media_tag", Default: ""},
	{TargetKey: "advertiserAccountType", SourceKey: "advertiser_account_type", Default: ""},
	{TargetKey: "requireSomeConsent", SourceKey: "require_some_consent", Default: ""},
	{TargetKey: "hasGraduatedAccess", SourceKey: "has_graduated_access", Default: ""},
	{TargetKey: "superFollowEligible", SourceKey: "super_follow_eligible", Default: ""},
	{
		TargetKey: "verifiedStatus",
		Default:   "UNKNOWN",
		Importer: func(target map[string]string, source map[string]any) {
			if mapping.AsString(source["verified"]) == "true" {
				target["verifiedStatus"] = "VERIFIED"
			}
		},
	},
	{
		TargetKey: "blueSubscriber",
		Default:   "",
		Importer: func(target map[string]string, source map[string]any) {
			if value, ok := source["ext_is_blue_verified"]; ok {
				target["blueSubscriber"] = mapping.AsString(value)
				return
			}
			if value, ok := source["is_blue_verified"]; ok {
				target["blueSubscriber"] = mapping.AsString(value)
			}
		},
	},
	{
		TargetKey: "withheldInCountries",
		Default:   "",
		Importer: func(target map[string]string, source map[string]any) {
			countries, ok := getArray(source, "withheld_in_countries")
			if !ok {
				return
			}
			var out []string
			for _, country := range countries {
				out = append(out, mapping.AsString(country))
			}
			target["withheldInCountries"] = strings.Join(out, tweet.ErrDelimiter)
		},
	},
}

// UserFromJSON builds a normalized user record, with the same top-level
// then legacy two-pass merge as TweetFromJSON.
func UserFromJSON(obj map[string]any) *tweet.User {
	attrs := mapping.Import(userFields, obj)
	if legacy, ok := getMap(obj, "legacy"); ok {
		legacyAttrs := mapping.Import(userFields, legacy)
		for key, value := range legacyAttrs {
			if userGap(key, attrs[key]) && !userGap(key, value) {
				attrs[key] = value
			}
		}
	}

	if mapping.IsEmptyOrZero(attrs["id"]) {
		if id, ok := obj["id"]; ok && isNumeric(id) {
			attrs["id"] = mapping.AsString(id)
		} else if restID, ok := obj["rest_id"]; ok && isNumeric(restID) {
			attrs["id"] = mapping.AsString(restID)
		}
	}

	record := tweet.NewUser()
	record.SetAll(attrs)
	return record
}

func userGap(key, value string) bool {
	if mapping.IsEmptyOrZero(value) {
		return true
	}
	switch key {
	case "handle":
		return value == "placeholder_handle"
	case "verifiedStatus":
		return value == "UNKNOWN"
	}
	return false
}
