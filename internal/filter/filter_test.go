package filter

import (
	"testing"

	"memescout/internal/model"
)

func TestQualifies(t *testing.T) {
	cases := []struct {
		name         string
		bio          string
		followers    int
		minFollowers int
		want         bool
	}{
		{"meme bio above floor", "I love memes!", 10000, 5000, true},
		{"meme bio below floor", "I love memes!", 100, 5000, false},
		{"case insensitive", "Daily MEMES and more", 6000, 5000, true},
		{"singular keyword", "the meme economy", 6000, 5000, true},
		{"no keyword", "photographer and traveler", 10000, 5000, false},
		{"empty bio", "", 10000, 5000, false},
		{"whitespace bio", "   ", 10000, 5000, false},
		{"exact floor", "memes", 5000, 5000, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a := model.Account{ID: "1", Bio: c.bio, FollowersCount: c.followers}
			if got := Qualifies(a, c.minFollowers); got != c.want {
				t.Fatalf("Qualifies(%q, %d followers, floor %d) = %v, want %v", c.bio, c.followers, c.minFollowers, got, c.want)
			}
		})
	}
}
