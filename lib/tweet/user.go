package tweet

import (
	"fmt"
	"strings"
)

var userDefaults = map[string]string{
	"id":                    "0",
	"handle":                "placeholder_handle",
	"displayName":           "",
	"verifiedStatus":        "UNKNOWN",
	"avatarURL":             "",
	"numTotalTweets":        "0",
	"numFollowers":          "0",
	"numFollowing":          "0",
	"canDM":                 "",
	"canMediaTag":           "",
	"advertiserAccountType": "",
	"withheldInCountries":   "",
	"blueSubscriber":        "",
	"requireSomeConsent":    "",
	"hasGraduatedAccess":    "",
	"superFollowEligible":   "",
	"errors":                "",
}

// User is one normalized account record, with the same always-defaulted
// attribute contract as Tweet.
type User struct {
	attrs map[string]string
}

func NewUser() *User {
	attrs := make(map[string]string, len(userDefaults))
	for k, v := range userDefaults {
		attrs[k] = v
	}
	return &User{attrs: attrs}
}

func UserKeys() []string {
	keys := make([]string, 0, len(userDefaults))
	for k := range userDefaults {
		keys = append(keys, k)
	}
	return keys
}

func (u *User) ID() string { return u.attrs["id"] }

func (u *User) String() string {
	return fmt.Sprintf("id=%s handle=%s", u.attrs["id"], u.attrs["handle"])
}

func (u *User) Get(key string) string { return u.attrs[key] }

func (u *User) Set(key, value string) {
	if _, ok := userDefaults[key]; !ok {
		return
	}
	u.attrs[key] = value
}

func (u *User) SetAll(values map[string]string) {
	for k, v := range values {
		u.Set(k, v)
	}
}

func (u *User) AddError(msg string) {
	if u.attrs["errors"] == "" {
		u.attrs["errors"] = msg
		return
	}
	u.attrs["errors"] += ErrDelimiter + msg
}

func (u *User) Errors() []string {
	if u.attrs["errors"] == "" {
		return nil
	}
	return strings.Split(u.attrs["errors"], ErrDelimiter)
}

func (u *User) Attrs() map[string]string {
	out := make(map[string]string, len(u.attrs))
	for k, v := range u.attrs {
		out[k] = v
	}
	return out
}

func (u *User) fillGapsFrom(other *User) {
	for key, incoming := range other.attrs {
		if userGapValue(key, u.attrs[key]) && !userGapValue(key, incoming) {
			u.attrs[key] = incoming
		}
	}
}

// userGapValue treats declared placeholder defaults as gaps alongside the
// usual empty-or-zero values.
func userGapValue(key, v string) bool {
	if isEmptyOrZero(v) {
		return true
	}
	return v == userDefaults[key] && (key == "handle" || key == "verifiedStatus")
}
