package jsonparse

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"tweetwatch/lib/tweet"
)

var tracer = otel.Tracer("jsonparse")

// BatchResult is everything one batch of intercepted payloads yielded.
type BatchResult struct {
	Collection *tweet.Collection
	Qualities  []tweet.QualityPair
	// Errors holds the per-index parse failures; a bad payload never
	// stops the rest of the batch.
	Errors []string
}

// ParseBatch decodes each raw payload independently, classifies it and
// folds every recognized tweet, user and instruction into one collection.
func ParseBatch(ctx context.Context, payloads []string) BatchResult {
	ctx, span := tracer.Start(ctx, "ParseBatch")
	defer span.End()
	span.SetAttributes(attribute.Int("payload_count", len(payloads)))

	result := BatchResult{Collection: tweet.NewCollection()}

	for i, payload := range payloads {
		decoder := json.NewDecoder(strings.NewReader(payload))
		decoder.UseNumber()

		var value any
		if err := decoder.Decode(&value); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Cannot parse string at position %d", i))
			continue
		}

		Fold(ctx, &result, Classify(value))
	}

	return result
}

// Fold merges one classified payload's yield into the running result.
func Fold(ctx context.Context, result *BatchResult, classified Classified) {
	if classified.Shape == ShapeIgnored || classified.Shape == ShapeUnknown {
		return
	}

	for _, raw := range classified.Tweets {
		result.Collection.AddTweet(TweetFromJSON(raw))
	}
	for _, raw := range classified.Users {
		result.Collection.AddUser(UserFromJSON(raw))
	}

	for _, raw := range classified.Instructions {
		instruction, err := DecodeInstruction(raw)
		if err != nil {
			slog.DebugContext(ctx, "skipping instruction", "reason", err)
			continue
		}

		switch decoded := instruction.(type) {
		case AddEntries:
			for _, rawTweet := range decoded.Tweets {
				result.Collection.AddTweet(TweetFromJSON(rawTweet))
			}
			for _, rawUser := range decoded.Users {
				result.Collection.AddUser(UserFromJSON(rawUser))
			}
			for _, item := range decoded.Items {
				result.Qualities = append(result.Qualities, tweet.QualityPair{
					TweetID: item.TweetID,
					Section: item.ConversationSection,
				})
			}
		case TerminateTimeline:
			slog.DebugContext(ctx, "timeline terminated", "direction", decoded.Direction)
		}
	}
}

// Export renders the batch as the flat record sequence handed across the
// system boundary: the qualities record first, then tweets, then users.
func (r BatchResult) Export() []map[string]string {
	out := []map[string]string{tweet.ExportQualities(r.Qualities)}
	for _, t := range r.Collection.Tweets() {
		out = append(out, tweet.ExportTweet(t))
	}
	for _, u := range r.Collection.Users() {
		out = append(out, tweet.ExportUser(u))
	}
	return out
}
