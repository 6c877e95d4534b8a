package models

import "unicode/utf8"

// Word is one accepted turn. Immutable once appended to a game.
type Word struct {
	Word     string  `json:"word"`
	Score    float64 `json:"score"`
	Duration float64 `json:"duration"` // seconds taken
	PlayerID string  `json:"playerId"`
}

// LastRune returns the trailing character of s as a string, or "" for an empty s.
// An invalid trailing byte is returned as is, so a played word always has a
// last letter.
func LastRune(s string) string {
	if s == "" {
		return ""
	}
	_, size := utf8.DecodeLastRuneInString(s)
	return s[len(s)-size:]
}
