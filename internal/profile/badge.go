package profile

// Badges lists the valid badges for favourite artists, in rank order.
// Shiny is the highest tier.
var Badges = []string{
	"Bronze",
	"Silver",
	"Gold",
	"Platinum",
	"Diamond",
	"Legendary",
	"VIP",
	"Shiny",
}

// BadgeEmojis maps badges to their display emojis.
var BadgeEmojis = map[string]string{
	"Bronze":    "🟫",
	"Silver":    "⬜",
	"Gold":      "🟨",
	"Platinum":  "🟪",
	"Diamond":   "🟦",
	"Legendary": "🟥",
	"VIP":       "🟩",
	"Shiny":     "✨",
}

// BadgeRank returns the rank of a badge for sorting, -1 for unknown badges.
func BadgeRank(badge string) int {
	for i, b := range Badges {
		if b == badge {
			return i
		}
	}
	return -1
}

// ValidBadge reports whether badge is one of the known badges.
func ValidBadge(badge string) bool {
	return BadgeRank(badge) >= 0
}
