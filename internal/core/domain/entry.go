package domain

// DefaultRating is the rating assigned to an entry that has never been matched.
const DefaultRating = 1500

// NameEntry represents a candidate name in the voting pool.
type NameEntry struct {
	ID          string  `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Description string  `json:"description,omitempty" db:"description"`
	IsHidden    bool    `json:"is_hidden" db:"is_hidden"`
	LockedIn    bool    `json:"locked_in" db:"locked_in"`
	Rating      float64 `json:"rating" db:"rating"`
	Wins        int     `json:"wins" db:"wins"`
	Losses      int     `json:"losses" db:"losses"`
}

// Votable reports whether the entry participates in matchups.
// Hidden entries are invisible to voters; locked-in entries are
// finalized choices excluded from further voting.
func (e NameEntry) Votable() bool {
	return !e.IsHidden && !e.LockedIn
}

// VotableEntries filters a pool down to the entries eligible for a tournament.
func VotableEntries(entries []NameEntry) []NameEntry {
	out := make([]NameEntry, 0, len(entries))
	for _, e := range entries {
		if e.Votable() {
			out = append(out, e)
		}
	}
	return out
}

// EntryRating is the mutable rating state tracked per entry during a tournament.
type EntryRating struct {
	Rating float64 `json:"rating"`
	Wins   int     `json:"wins"`
	Losses int     `json:"losses"`
}

// RatingMap maps entry IDs to their current rating state.
type RatingMap map[string]EntryRating

// NewRatingMap seeds a rating map from a pool of entries.
func NewRatingMap(entries []NameEntry) RatingMap {
	m := make(RatingMap, len(entries))
	for _, e := range entries {
		r := e.Rating
		if r == 0 {
			r = DefaultRating
		}
		m[e.ID] = EntryRating{Rating: r, Wins: e.Wins, Losses: e.Losses}
	}
	return m
}

// Clone returns a deep copy. Undo snapshots depend on this being independent
// of the original.
func (m RatingMap) Clone() RatingMap {
	c := make(RatingMap, len(m))
	for id, r := range m {
		c[id] = r
	}
	return c
}
