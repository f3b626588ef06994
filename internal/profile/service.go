package profile

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// sectionLimit caps how many entries a profile section displays.
const sectionLimit = 15

// Summary is a user's rendered collection overview.
type Summary struct {
	UserID    string
	Username  string
	Epics     []Epic
	Favorites []FavArtist
	Wishes    []Wish
}

// Service assembles profile summaries across the collection repositories.
type Service struct {
	users   *UserRepository
	epics   *EpicRepository
	wishes  *WishRepository
	artists *ArtistRepository
}

func NewService(db *sqlx.DB) *Service {
	return &Service{
		users:   NewUserRepository(db),
		epics:   NewEpicRepository(db),
		wishes:  NewWishRepository(db),
		artists: NewArtistRepository(db),
	}
}

// Summary loads the user's full profile with each list in its effective
// display order.
func (s *Service) Summary(ctx context.Context, userID string) (*Summary, error) {
	summary := &Summary{UserID: userID}

	user, err := s.users.Find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user != nil && user.Username.Valid {
		summary.Username = user.Username.String
	}

	if summary.Epics, err = s.epics.List(ctx, userID); err != nil {
		return nil, err
	}
	if summary.Favorites, err = s.artists.List(ctx, userID); err != nil {
		return nil, err
	}
	if summary.Wishes, err = s.wishes.List(ctx, userID); err != nil {
		return nil, err
	}
	return summary, nil
}

// Render formats a summary as display text: capped sections with an
// overflow marker, matching the bot's profile embed layout.
func Render(s *Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🎵 Soundmap Collection of %s\n", s.UserID)
	if s.Username != "" {
		fmt.Fprintf(&b, "👤 SM-Username: %s\n", s.Username)
	}

	fmt.Fprintf(&b, "\n💎 Epics (%d)\n", len(s.Epics))
	if len(s.Epics) == 0 {
		b.WriteString("No epics\n")
	}
	for i, e := range s.Epics {
		if i == sectionLimit {
			fmt.Fprintf(&b, "… %d more\n", len(s.Epics)-sectionLimit)
			break
		}
		fmt.Fprintf(&b, "%s – %s #%d\n", e.ArtistName, e.Title, e.EpicNumber)
	}

	fmt.Fprintf(&b, "\n🌟 Favorite Artists (%d)\n", len(s.Favorites))
	if len(s.Favorites) == 0 {
		b.WriteString("No favorite artists\n")
	}
	for i, a := range s.Favorites {
		if i == sectionLimit {
			fmt.Fprintf(&b, "… %d more\n", len(s.Favorites)-sectionLimit)
			break
		}
		line := a.Name
		if a.Badge.Valid {
			line += fmt.Sprintf(" — %s %s", BadgeEmojis[a.Badge.String], a.Badge.String)
		}
		b.WriteString(line + "\n")
	}

	fmt.Fprintf(&b, "\n🎯 Wishlist (%d)\n", len(s.Wishes))
	if len(s.Wishes) == 0 {
		b.WriteString("No wishes\n")
	}
	for i, w := range s.Wishes {
		if i == sectionLimit {
			fmt.Fprintf(&b, "… %d more\n", len(s.Wishes)-sectionLimit)
			break
		}
		line := fmt.Sprintf("%s – %s", w.ArtistName, w.Title)
		if w.Note.Valid {
			line += fmt.Sprintf(" — %s", w.Note.String)
		}
		b.WriteString(line + "\n")
	}

	return b.String()
}
