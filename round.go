package main

// roundSchedule maps a round number to how many questions of each
// difficulty tier make up that round. Rounds outside the table fall back
// to the opening schedule.
var roundSchedule = map[int][3]int{
	1: {3, 0, 0},
	2: {2, 1, 0},
	3: {0, 3, 0},
	4: {0, 0, 3},
}

// startRound advances to the next round and enters the writing phase. The
// round counter is checked first: the start-round request after round
// four's leaderboard produces the winner reveal, not a fifth round.
func (r *Room) startRound() {
	r.roundNum++

	if r.roundNum > totalRounds {
		r.revealWinner()
		return
	}

	questions := r.selectQuestions()
	if len(questions) == 0 {
		// Misconfigured bank. Leave the room where it was so the host
		// can fix the data and retry.
		r.log.Error().Int("round", r.roundNum).Msg("no questions available for round")
		r.roundNum--
		return
	}

	r.status = StatusWriting
	r.round = newRoundData()
	r.round.questions = questions

	for _, p := range r.players {
		p.HeadlinesWritten = 0
		p.RoundScore = 0
	}

	writingMS := int(r.cfg.writingTime.Milliseconds())

	r.broadcastAll("move_to_writing", writingPrompt{
		Prompt:      questions[0].Prompt,
		Source:      questions[0].Source,
		QuestionNum: 1,
		Duration:    durationMS(writingMS),
	})

	hostQuestions := make([]hostQuestion, 0, len(questions))
	for _, q := range questions {
		hostQuestions = append(hostQuestions, hostQuestion{Prompt: q.Prompt, Audio: q.Audio})
	}
	r.sendHost("host_phase_writing", hostWritingPayload{
		TotalQuestions: questionsPerRound,
		Questions:      hostQuestions,
		Duration:       writingMS,
		RoundNum:       r.roundNum,
	})

	r.armTimers(r.cfg.writingTime)

	r.log.Info().Int("round", r.roundNum).Int("players", len(r.players)).Msg("round started")
}

// selectQuestions draws this round's questions from the bank according to
// the difficulty schedule, never repeating a question within the session.
// When a tier runs dry it backfills from whatever unused questions remain.
func (r *Room) selectQuestions() []QuestionRecord {
	all := r.bank.All()

	schedule, ok := roundSchedule[r.roundNum]
	if !ok {
		schedule = roundSchedule[1]
	}

	picked := make([]int, 0, questionsPerRound)
	inPicked := func(idx int) bool {
		for _, p := range picked {
			if p == idx {
				return true
			}
		}
		return false
	}

	pickByDifficulty := func(difficulty, count int) {
		if count == 0 {
			return
		}
		var available []int
		for idx, q := range all {
			if q.Difficulty == difficulty && !r.used[idx] && !inPicked(idx) {
				available = append(available, idx)
			}
		}
		r.rng.Shuffle(len(available), func(i, j int) {
			available[i], available[j] = available[j], available[i]
		})
		if count > len(available) {
			count = len(available)
		}
		picked = append(picked, available[:count]...)
	}

	for tier, count := range schedule {
		pickByDifficulty(tier+1, count)
	}

	if len(picked) < questionsPerRound {
		var extra []int
		for idx := range all {
			if !r.used[idx] && !inPicked(idx) {
				extra = append(extra, idx)
			}
		}
		r.rng.Shuffle(len(extra), func(i, j int) {
			extra[i], extra[j] = extra[j], extra[i]
		})
		missing := questionsPerRound - len(picked)
		if missing > len(extra) {
			missing = len(extra)
		}
		picked = append(picked, extra[:missing]...)
	}

	questions := make([]QuestionRecord, 0, len(picked))
	for _, idx := range picked {
		r.used[idx] = true
		questions = append(questions, all[idx])
	}
	return questions
}

func (r *Room) handleSubmitHeadline(c *client, text string) {
	if r.status != StatusWriting {
		return
	}

	p, ok := r.players[c.id]
	if !ok {
		r.send(c, "submit_error", userMessage(errUnknownConnection))
		return
	}

	if p.HeadlinesWritten < questionsPerRound {
		idx := p.HeadlinesWritten

		if idx < len(r.round.questions) && tooSimilar(text, r.round.questions[idx].Missing) {
			r.send(c, "submit_error", userMessage(errTooSimilar))
			return
		}

		r.round.submissions[idx] = append(r.round.submissions[idx], option{
			PlayerID: p.ID,
			Text:     text,
		})
		p.HeadlinesWritten++

		if next := p.HeadlinesWritten; next < questionsPerRound && next < len(r.round.questions) {
			r.send(c, "move_to_writing", writingPrompt{
				Prompt:      r.round.questions[next].Prompt,
				Source:      r.round.questions[next].Source,
				QuestionNum: next + 1,
			})
		} else {
			r.send(c, "wait_for_others", nil)
		}
	}

	r.sendHost("update_submission_count", r.totalSubmissions()/questionsPerRound)
	r.sendHost("player_done_writing", doneWritingPayload{PlayerID: p.ID, Count: p.HeadlinesWritten})

	r.checkWritingQuorum()
}

func (r *Room) totalSubmissions() int {
	total := 0
	for i := range r.round.submissions {
		total += len(r.round.submissions[i])
	}
	return total
}

// checkWritingQuorum advances to voting once every roster seat has filed
// all three headlines. Disconnected players still count toward the
// denominator; the phase timer covers the case where they never return.
func (r *Room) checkWritingQuorum() {
	if r.status != StatusWriting || len(r.players) == 0 {
		return
	}
	if r.totalSubmissions() == len(r.players)*questionsPerRound {
		r.stopTimers()
		r.round.votingStep = 0
		r.startVoting()
	}
}

// startVoting enters the voting phase for the current step: the question's
// submissions plus the one truth option, shuffled so position says nothing
// about authorship.
func (r *Room) startVoting() {
	r.status = StatusVoting
	r.round.votes = make(map[string]int)
	r.round.stepResultsShown = false

	step := r.round.votingStep
	if step >= len(r.round.questions) {
		r.log.Error().Int("round", r.roundNum).Int("step", step).Msg("no question data for voting step")
		return
	}
	question := r.round.questions[step]

	options := make([]option, 0, len(r.round.submissions[step])+1)
	options = append(options, r.round.submissions[step]...)
	options = append(options, option{PlayerID: truthPlayerID, Text: question.Missing, IsReal: true})
	r.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	r.round.currentOptions = options

	votingMS := int(r.cfg.votingTime.Milliseconds())

	r.sendHost("start_voting_display", votingDisplayPayload{
		Question: question.Prompt,
		Options:  options,
		Step:     step + 1,
		Duration: votingMS,
		Audio:    question.Audio,
	})
	r.broadcastAll("move_to_voting_screen", votingScreenPayload{
		Options:  options,
		Duration: durationMS(votingMS),
	})

	r.armTimers(r.cfg.votingTime)

	r.log.Info().Int("round", r.roundNum).Int("step", step+1).Int("options", len(options)).Msg("voting started")
}

func (r *Room) handleSubmitVote(c *client, optionIndex int) {
	if r.status != StatusVoting {
		return
	}

	p, ok := r.players[c.id]
	if !ok {
		return
	}

	if optionIndex < 0 || optionIndex >= len(r.round.currentOptions) {
		return
	}

	if r.round.currentOptions[optionIndex].PlayerID == p.ID {
		r.send(c, "submit_error", userMessage(errSelfVote))
		return
	}

	r.round.votes[p.ID] = optionIndex
	r.sendHost("host_player_voted", playerVotedPayload{PlayerID: p.ID, Nickname: p.Nickname})

	r.checkVotingQuorum()
}

func (r *Room) checkVotingQuorum() {
	if r.status != StatusVoting || len(r.players) == 0 {
		return
	}
	if len(r.round.votes) >= len(r.players) {
		r.finalizeStep()
	}
}

// finalizeStep closes the current voting step: scores the votes and sends
// the full reveal to the host. The quorum path and the timeout path race
// here, so the one-shot flag is checked rather than trusting that timer
// cancellation won.
func (r *Room) finalizeStep() {
	r.stopTimers()

	if r.round.stepResultsShown {
		return
	}
	r.round.stepResultsShown = true

	applyVoteScores(r.round.votes, r.round.currentOptions, r.players, r.roundNum)

	step := r.round.votingStep
	if step >= len(r.round.questions) {
		r.log.Error().Int("round", r.roundNum).Int("step", step).Msg("no question data for step results")
		return
	}
	question := r.round.questions[step]

	r.sendHost("game_over_results", stepResultsPayload{
		Question:   question.Prompt,
		Original:   question.Original,
		Source:     question.Source,
		Audio:      question.Audio,
		Options:    r.round.currentOptions,
		Votes:      r.round.votes,
		Players:    r.players,
		IsLastStep: step == questionsPerRound-1,
	})

	r.log.Info().Int("round", r.roundNum).Int("step", step+1).Int("votes", len(r.round.votes)).Msg("voting step finalized")
}

// handleNextPhase is the host advancing past a finalized voting step:
// either the next question, the leaderboard between rounds, or the winner
// reveal after the final round.
func (r *Room) handleNextPhase() {
	if r.status != StatusVoting {
		return
	}

	if r.round.votingStep < questionsPerRound-1 {
		r.round.votingStep++
		r.startVoting()
		return
	}

	if r.roundNum == totalRounds {
		r.revealWinner()
		return
	}

	r.sendHost("show_leaderboard", nil)
}

func (r *Room) revealWinner() {
	r.stopTimers()
	r.status = StatusWinner
	r.sendHost("game_winner_reveal", r.playerList())
	r.log.Info().Msg("game over, winner revealed")
}
