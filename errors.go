package main

import (
	"errors"
)

// Room errors that reach a client. Player-facing text stays in Hebrew to
// match the shipped mobile and host clients.
var (
	errMissingCode       = errors.New("missing room code")
	errInvalidRoomCode   = errors.New("invalid room code")
	errRoomFull          = errors.New("room full")
	errSelfVote          = errors.New("vote for own submission")
	errTooSimilar        = errors.New("submission too similar to truth")
	errUnknownConnection = errors.New("unknown connection")
)

func userMessage(err error) string {
	switch {
	case errors.Is(err, errMissingCode):
		return "קוד חסר"
	case errors.Is(err, errInvalidRoomCode):
		return "קוד שגוי"
	case errors.Is(err, errRoomFull):
		return "החדר מלא (מקסימום 6 שחקנים)"
	case errors.Is(err, errSelfVote):
		return "אסור להצביע לתשובה של עצמך!"
	case errors.Is(err, errTooSimilar):
		return "זה קרוב מדי לאמת! נסו לשקר טוב יותר..."
	case errors.Is(err, errUnknownConnection):
		return "שגיאת חיבור. נא לרענן את העמוד."
	}
	return err.Error()
}
