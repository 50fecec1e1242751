// ABOUTME: Party and User records persisted in the parties and currentUser slots
// ABOUTME: Handles the millisecond-epoch JSON layout and the on-demand expiry countdown

package session

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Party is a named, password-protected session that scopes shared media.
type Party struct {
	Name      string
	Password  string // as produced by the configured CredentialChecker
	CreatedAt time.Time
	ExpiresAt *time.Time // nil never expires
}

type partyJSON struct {
	Name      string `json:"name"`
	Password  string `json:"password"`
	CreatedAt int64  `json:"createdAt"`
	ExpiresAt *int64 `json:"expiresAt,omitempty"`
}

// MarshalJSON encodes timestamps as millisecond epochs.
func (p Party) MarshalJSON() ([]byte, error) {
	raw := partyJSON{
		Name:      p.Name,
		Password:  p.Password,
		CreatedAt: p.CreatedAt.UnixMilli(),
	}
	if p.ExpiresAt != nil {
		ms := p.ExpiresAt.UnixMilli()
		raw.ExpiresAt = &ms
	}
	return json.Marshal(raw)
}

// UnmarshalJSON decodes millisecond epoch timestamps.
func (p *Party) UnmarshalJSON(data []byte) error {
	var raw partyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Party{
		Name:      raw.Name,
		Password:  raw.Password,
		CreatedAt: time.UnixMilli(raw.CreatedAt),
	}
	// Older records store 0 for "no expiry"
	if raw.ExpiresAt != nil && *raw.ExpiresAt != 0 {
		t := time.UnixMilli(*raw.ExpiresAt)
		p.ExpiresAt = &t
	}
	return nil
}

// Active reports whether the party has not expired at now.
func (p Party) Active(now time.Time) bool {
	return p.ExpiresAt == nil || p.ExpiresAt.After(now)
}

// Countdown is the time remaining before a party expires.
type Countdown struct {
	Days    int
	Hours   int
	Minutes int
	Seconds int
}

func (c Countdown) String() string {
	return fmt.Sprintf("%dd %02dh %02dm %02ds", c.Days, c.Hours, c.Minutes, c.Seconds)
}

// TimeLeft returns the countdown to expiry. It returns false when the party
// has no expiry or has already expired.
func (p Party) TimeLeft(now time.Time) (Countdown, bool) {
	if p.ExpiresAt == nil {
		return Countdown{}, false
	}
	remaining := p.ExpiresAt.Sub(now)
	if remaining <= 0 {
		return Countdown{}, false
	}

	day := 24 * time.Hour
	return Countdown{
		Days:    int(remaining / day),
		Hours:   int(remaining % day / time.Hour),
		Minutes: int(remaining % time.Hour / time.Minute),
		Seconds: int(remaining % time.Minute / time.Second),
	}, true
}

// User is the identity remembered for the party this device last joined.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar,omitempty"`
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// partyEmail derives the placeholder address shown for a party identity.
func partyEmail(name string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(name), "-") + "@party.com"
}

func partyAvatar(name string) string {
	return "https://api.dicebear.com/7.x/avataaars/svg?seed=" + url.QueryEscape(name)
}

// sameName compares party names the way every lookup does: case-insensitively.
func sameName(a, b string) bool {
	return strings.EqualFold(a, b)
}
