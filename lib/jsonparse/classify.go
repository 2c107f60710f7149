// Package jsonparse classifies intercepted network payloads into known
// shapes and decodes the tweet, user and timeline-instruction objects they
// carry. Shapes are recognized structurally and in a fixed order; payloads
// matching nothing are dropped with a diagnostic, never failed.
package jsonparse

import (
	"log/slog"
	"sort"
)

type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeIgnored
	ShapeIncompleteUserList
	ShapeIncompleteUser
	ShapeGlobalTimeline
	ShapeUserList
	ShapeThreadedConversation
	ShapeTimelineV2
)

func (s Shape) String() string {
	switch s {
	case ShapeIgnored:
		return "ignored"
	case ShapeIncompleteUserList:
		return "incomplete_user_list"
	case ShapeIncompleteUser:
		return "incomplete_user"
	case ShapeGlobalTimeline:
		return "global_timeline"
	case ShapeUserList:
		return "user_list"
	case ShapeThreadedConversation:
		return "threaded_conversation"
	case ShapeTimelineV2:
		return "timeline_v2"
	}
	return "unknown"
}

// Classified is the raw yield of one payload: which shape matched and the
// undecoded tweet/user/instruction objects harvested from it.
type Classified struct {
	Shape        Shape
	Tweets       []map[string]any
	Users        []map[string]any
	Instructions []map[string]any
}

// Classify evaluates the shape predicates in priority order against one
// decoded payload; the first match wins.
func Classify(v any) Classified {
	// capture envelopes wrap the payload one level down
	if inner, ok := get(v, "JSON"); ok {
		v = inner
	}

	if v == nil {
		return Classified{Shape: ShapeIgnored}
	}
	if arr, ok := v.([]any); ok && len(arr) < 4 {
		return Classified{Shape: ShapeIgnored}
	}

	if shouldIgnore(v) {
		return Classified{Shape: ShapeIgnored}
	}

	if c, ok := classifyIncompleteUserList(v); ok {
		return c
	}
	if c, ok := classifyIncompleteUser(v); ok {
		return c
	}
	if c, ok := classifyGlobalTimeline(v); ok {
		return c
	}
	if c, ok := classifyUserList(v); ok {
		return c
	}
	if c, ok := classifyThreadedConversation(v); ok {
		return c
	}
	if c, ok := classifyTimelineV2(v); ok {
		return c
	}

	slog.Debug("unrecognized payload shape", "keys", topLevelKeys(v))
	return Classified{Shape: ShapeUnknown}
}

// shouldIgnore recognizes payloads that are well formed but carry nothing
// extractable: screen-name lookups, animation descriptors, settings blobs,
// nudge-domain suggestions and hashflag arrays.
func shouldIgnore(v any) bool {
	if has(v, "data", "user_result_by_screen_name") {
		return true
	}
	if has(v, "w") && has(v, "h") && (has(v, "nm") || has(v, "assets")) {
		return true
	}
	if has(v, "discoverable_by_email") {
		return true
	}
	if has(v, "data", "viewer", "article_nudge_domains") {
		return true
	}
	if arr, ok := v.([]any); ok && len(arr) > 0 && has(arr[0], "starting_timestamp_ms") {
		return true
	}
	return false
}

func classifyIncompleteUserList(v any) (Classified, bool) {
	users, ok := getArray(v, "data", "users")
	if !ok || len(users) == 0 || !has(users[0], "result") {
		return Classified{}, false
	}

	c := Classified{Shape: ShapeIncompleteUserList}
	for _, entry := range users {
		if result, ok := getMap(entry, "result"); ok {
			c.Users = append(c.Users, swapUserID(result))
		}
	}
	return c, true
}

func classifyIncompleteUser(v any) (Classified, bool) {
	result, ok := getMap(v, "data", "user", "result")
	if !ok || has(result, "timeline_v2") {
		return Classified{}, false
	}
	return Classified{
		Shape: ShapeIncompleteUser,
		Users: []map[string]any{swapUserID(result)},
	}, true
}

func classifyGlobalTimeline(v any) (Classified, bool) {
	if !has(v, "globalObjects") && !has(v, "timeline") {
		return Classified{}, false
	}

	c := Classified{Shape: ShapeGlobalTimeline}
	c.Tweets = append(c.Tweets, mapValues(v, "globalObjects", "tweets")...)
	c.Tweets = append(c.Tweets, mapValues(v, "timeline", "tweets")...)
	for _, user := range append(mapValues(v, "globalObjects", "users"), mapValues(v, "timeline", "users")...) {
		c.Users = append(c.Users, swapUserID(user))
	}
	if instructions, ok := getArray(v, "timeline", "instructions"); ok {
		for _, instruction := range instructions {
			if obj, ok := instruction.(map[string]any); ok {
				c.Instructions = append(c.Instructions, obj)
			}
		}
	}
	return c, true
}

func classifyUserList(v any) (Classified, bool) {
	arr, ok := v.([]any)
	if !ok || len(arr) == 0 || !has(arr[0], "token") {
		return Classified{}, false
	}

	c := Classified{Shape: ShapeUserList}
	for _, entry := range arr {
		if user, ok := getMap(entry, "user"); ok {
			c.Users = append(c.Users, swapUserID(user))
		}
	}
	return c, true
}

func classifyThreadedConversation(v any) (Classified, bool) {
	instructions, ok := getArray(v, "data", "threaded_conversation_with_injections_v2", "instructions")
	if !ok {
		return Classified{}, false
	}
	return Classified{
		Shape:        ShapeThreadedConversation,
		Instructions: instructionObjects(instructions),
	}, true
}

func classifyTimelineV2(v any) (Classified, bool) {
	instructions, ok := getArray(v, "data", "user", "result", "timeline_v2", "timeline", "instructions")
	if !ok {
		return Classified{}, false
	}
	return Classified{
		Shape:        ShapeTimelineV2,
		Instructions: instructionObjects(instructions),
	}, true
}

func instructionObjects(arr []any) []map[string]any {
	var out []map[string]any
	for _, v := range arr {
		if obj, ok := v.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

// mapValues harvests the values of an id-keyed object in sorted key order
// so batch output stays deterministic.
func mapValues(v any, path ...string) []map[string]any {
	obj, ok := getMap(v, path...)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []map[string]any
	for _, k := range keys {
		if value, ok := obj[k].(map[string]any); ok {
			out = append(out, value)
		}
	}
	return out
}

// swapUserID corrects user objects whose primary id field holds an opaque
// token while the real numeric id sits under rest_id. The object is copied,
// never mutated in place.
func swapUserID(user map[string]any) map[string]any {
	id, hasID := user["id"]
	restID, hasRest := user["rest_id"]
	if !hasID || !hasRest || !isNumeric(restID) || isNumeric(id) {
		return user
	}

	out := make(map[string]any, len(user))
	for k, v := range user {
		out[k] = v
	}
	out["id"] = restID
	out["rest_id"] = id
	return out
}

func topLevelKeys(v any) []string {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
