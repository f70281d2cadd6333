package main

const (
	truthPoints = 10
	bluffPoints = 5
)

// applyVoteScores awards points for one finalized voting step. A vote for
// the truth pays the voter; a vote for a bluff pays its author. Both
// awards are doubled in the final round. Votes that no longer resolve to
// an option or a player are skipped.
func applyVoteScores(votes map[string]int, options []option, players map[string]*Player, roundNum int) {
	multiplier := 1
	if roundNum == totalRounds {
		multiplier = 2
	}

	for voterID, choice := range votes {
		if choice < 0 || choice >= len(options) {
			continue
		}

		chosen := options[choice]

		if chosen.IsReal {
			if voter, ok := players[voterID]; ok {
				voter.Score += truthPoints * multiplier
				voter.RoundScore += truthPoints * multiplier
			}
			continue
		}

		if author, ok := players[chosen.PlayerID]; ok {
			author.Score += bluffPoints * multiplier
			author.RoundScore += bluffPoints * multiplier
		}
	}
}
