package jsonparse

import (
	"fmt"
	"strings"

	"tweetwatch/lib/mapping"
)

// TimelineItem is one module entry's provenance: a tweet id paired with the
// conversation section the module claimed it belongs to.
type TimelineItem struct {
	TweetID             string
	DisplayType         string
	ConversationSection string
}

// AddEntries is the decoded form of a TimelineAddEntries instruction.
type AddEntries struct {
	Tweets []map[string]any
	Users  []map[string]any
	Items  []TimelineItem
}

// TerminateTimeline carries only the direction flag of a
// TimelineTerminateTimeline instruction.
type TerminateTimeline struct {
	Direction string
}

// Instruction is one decoded timeline instruction: either AddEntries or
// TerminateTimeline.
type Instruction interface {
	isInstruction()
}

func (AddEntries) isInstruction()        {}
func (TerminateTimeline) isInstruction() {}

// DecodeInstruction decodes one raw instruction object. Nil with a nil
// error means the instruction is recognized but carries nothing for us.
func DecodeInstruction(obj map[string]any) (Instruction, error) {
	switch getString(obj, "type") {
	case "TimelineAddEntries":
		return decodeAddEntries(obj), nil
	case "TimelineTerminateTimeline":
		return TerminateTimeline{Direction: getString(obj, "direction")}, nil
	case "":
	default:
		return nil, fmt.Errorf("unknown instruction type %q", getString(obj, "type"))
	}

	// legacy instructions key the payload by operation name instead
	if terminate, ok := getMap(obj, "terminateTimeline"); ok {
		return TerminateTimeline{Direction: getString(terminate, "direction")}, nil
	}
	for _, ignored := range []string{
		"addEntries",
		"clearCache",
		"clearEntriesUnreadState",
		"markEntriesUnreadGreaterThanSortIndex",
	} {
		if has(obj, ignored) {
			return nil, nil
		}
	}

	return nil, fmt.Errorf("unknown instruction with keys %v", topLevelKeys(obj))
}

func decodeAddEntries(obj map[string]any) AddEntries {
	var out AddEntries

	entries, _ := getArray(obj, "entries")
	for _, rawEntry := range entries {
		entry, ok := rawEntry.(map[string]any)
		if !ok {
			continue
		}

		switch getString(entry, "content", "entryType") {
		case "TimelineTimelineCursor":
			// pagination tokens, nothing to extract
		case "TimelineTimelineItem":
			decodeTimelineItem(&out, entry)
		case "TimelineTimelineModule":
			decodeTimelineModule(&out, entry)
		}
	}

	return out
}

func decodeTimelineItem(out *AddEntries, entry map[string]any) {
	if result, ok := getMap(entry, "content", "itemContent", "tweet_results", "result"); ok {
		harvestTweetResult(out, result)
	}
	if user, ok := getMap(entry, "core", "user_results", "result"); ok {
		out.Users = append(out.Users, swapUserID(user))
	}
	if strings.Contains(getString(entry, "entryId"), "whoToFollow") {
		return
	}
	items, _ := getArray(entry, "content", "items")
	for _, rawItem := range items {
		if result, ok := getMap(rawItem, "item", "itemContent", "tweet_results", "result"); ok {
			harvestTweetResult(out, result)
		}
	}
}

func decodeTimelineModule(out *AddEntries, entry map[string]any) {
	displayType := getString(entry, "content", "displayType")

	items, _ := getArray(entry, "content", "items")
	for _, rawItem := range items {
		item, ok := rawItem.(map[string]any)
		if !ok {
			continue
		}

		result, hasResult := getMap(item, "item", "itemContent", "tweet_results", "result")
		if hasResult {
			harvestTweetResult(out, result)
		}

		timelineItem := TimelineItem{
			DisplayType:         displayType,
			ConversationSection: getString(item, "item", "clientEventInfo", "details", "conversationDetails", "conversationSection"),
		}
		if hasResult {
			timelineItem.TweetID = mapping.AsString(result["rest_id"])
			if inner, ok := getMap(result, "tweet"); ok && timelineItem.TweetID == "" {
				timelineItem.TweetID = mapping.AsString(inner["rest_id"])
			}
		}
		if timelineItem.TweetID != "" || timelineItem.ConversationSection != "" {
			out.Items = append(out.Items, timelineItem)
		}
	}
}

// harvestTweetResult pulls one tweet_results.result union value apart:
// unwraps one level of visibility wrapper, collects the tweet object and
// any embedded author object.
func harvestTweetResult(out *AddEntries, result map[string]any) {
	if inner, ok := getMap(result, "tweet"); ok {
		result = inner
	}
	if typename := getString(result, "__typename"); typename != "" && typename != "Tweet" {
		return
	}

	out.Tweets = append(out.Tweets, result)
	if user, ok := getMap(result, "core", "user_results", "result"); ok {
		out.Users = append(out.Users, swapUserID(user))
	}
}
