package main

// Player holds the data we store server-side for one human, for the
// lifetime of the room. UUID survives reconnects; ID is the current
// connection and is rebound when the same UUID joins again.
type Player struct {
	ID               string `json:"id"`
	UUID             string `json:"uuid"`
	Nickname         string `json:"nickname"`
	Gender           string `json:"gender"`
	FavThing         string `json:"favThing"`
	Specialty        string `json:"specialty"`
	Score            int    `json:"score"`
	RoundScore       int    `json:"roundScore"`
	HeadlinesWritten int    `json:"headlinesWritten"`
	Connected        bool   `json:"connected"`
}

// specialtyTitle builds the byline shown under a player's nickname on the
// host display, inflected by the gender the player picked at registration.
func specialtyTitle(gender, favThing string) string {
	switch gender {
	case "male":
		return "כתב לעינייני " + favThing
	case "female":
		return "כתבת לעינייני " + favThing
	default:
		return "כתב/ת לעינייני " + favThing
	}
}
