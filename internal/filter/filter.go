package filter

import (
	"strings"

	"memescout/internal/model"
	"memescout/internal/util"
)

var bioKeywords = []string{"meme", "memes"}

// Qualifies reports whether an account looks like a meme creator worth
// analyzing: it must clear the follower floor and mention memes in its bio
// (case-insensitive). Accounts with an empty bio never qualify.
func Qualifies(a model.Account, minFollowers int) bool {
	if a.FollowersCount < minFollowers {
		return false
	}
	if strings.TrimSpace(a.Bio) == "" {
		return false
	}
	return util.ContainsAnyCaseInsensitive(a.Bio, bioKeywords)
}
