package tweet

import "fmt"

// AddResult reports what AddTweet did with a record.
type AddResult int

const (
	NotAdded AddResult = iota
	Appended
	Merged
)

func (r AddResult) String() string {
	switch r {
	case Appended:
		return "appended"
	case Merged:
		return "merged"
	}
	return "not_added"
}

// Collection is an insertion-ordered set of tweets keyed by id. Users are
// kept in a parallel set keyed the same way. Never holds two tweets with
// the same id.
type Collection struct {
	tweets  []*Tweet
	byID    map[string]*Tweet
	users   []*User
	userIDs map[string]*User
}

func NewCollection() *Collection {
	return &Collection{
		byID:    make(map[string]*Tweet),
		userIDs: make(map[string]*User),
	}
}

// AddTweet inserts or merges t. Records with no recovered id are refused.
// Merging only fills gaps: attributes already populated on the stored
// record are never overwritten, so arrival order does not change which
// values end up filled.
func (c *Collection) AddTweet(t *Tweet) AddResult {
	if t == nil || !t.HasID() {
		return NotAdded
	}
	existing, ok := c.byID[t.ID()]
	if !ok {
		c.tweets = append(c.tweets, t)
		c.byID[t.ID()] = t
		return Appended
	}
	existing.fillGapsFrom(t)
	return Merged
}

// AddUser inserts or gap-merges a user record by id.
func (c *Collection) AddUser(u *User) AddResult {
	if u == nil || isEmptyOrZero(u.ID()) {
		return NotAdded
	}
	existing, ok := c.userIDs[u.ID()]
	if !ok {
		c.users = append(c.users, u)
		c.userIDs[u.ID()] = u
		return Appended
	}
	existing.fillGapsFrom(u)
	return Merged
}

// Tweets returns the stored records in insertion order. The slice is a
// copy; the records are not.
func (c *Collection) Tweets() []*Tweet {
	out := make([]*Tweet, len(c.tweets))
	copy(out, c.tweets)
	return out
}

func (c *Collection) Users() []*User {
	out := make([]*User, len(c.users))
	copy(out, c.users)
	return out
}

func (c *Collection) Get(id string) (*Tweet, bool) {
	t, ok := c.byID[id]
	return t, ok
}

func (c *Collection) Len() int { return len(c.tweets) }

func (c *Collection) String() string {
	return fmt.Sprintf("tweets=%d users=%d", len(c.tweets), len(c.users))
}
