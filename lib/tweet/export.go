package tweet

// Flat map export. Every record crossing the system boundary is a string
// map tagged with a map_type discriminator.

const (
	MapTypeTweet     = "tweet"
	MapTypeUser      = "user"
	MapTypeMetadata  = "metadata"
	MapTypeQualities = "tweetid_to_supposed_qualities"
)

// ExportTweet flattens a tweet record, embedding its author's attributes
// under a user__ prefix when one is attached.
func ExportTweet(t *Tweet) map[string]string {
	out := t.Attrs()
	out["map_type"] = MapTypeTweet
	if t.User != nil {
		for k, v := range t.User.Attrs() {
			out["user__"+k] = v
		}
	}
	return out
}

func ExportUser(u *User) map[string]string {
	out := u.Attrs()
	out["map_type"] = MapTypeUser
	return out
}

// QualityPair records which conversation section a timeline module claimed
// a tweet belongs to, before the tweet itself was ever extracted.
type QualityPair struct {
	TweetID string
	Section string
}

// ExportQualities aggregates provenance pairs into the single
// tweetid_to_supposed_qualities record. A tweet claimed by several sections
// gets the sections joined with the record error delimiter.
func ExportQualities(pairs []QualityPair) map[string]string {
	out := map[string]string{"map_type": MapTypeQualities}
	for _, p := range pairs {
		if p.TweetID == "" {
			continue
		}
		if existing, ok := out[p.TweetID]; ok {
			out[p.TweetID] = existing + ErrDelimiter + p.Section
		} else {
			out[p.TweetID] = p.Section
		}
	}
	return out
}
