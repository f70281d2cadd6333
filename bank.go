package main

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// QuestionRecord is one fill-in-the-blank headline, loaded once and never
// mutated afterwards.
type QuestionRecord struct {
	Prompt     string
	Missing    string
	Original   string
	Source     string
	Difficulty int
	Audio      string
}

// Bank is the question store the room draws from.
type Bank interface {
	All() []QuestionRecord
}

type staticBank struct {
	questions []QuestionRecord
}

func (b *staticBank) All() []QuestionRecord {
	return b.questions
}

// loadQuestionBank reads the questions CSV. A missing or malformed file
// degrades to an empty bank; the room surfaces that at round start instead
// of failing boot.
func loadQuestionBank(path string, logger zerolog.Logger) Bank {
	f, err := os.Open(path)
	if err != nil {
		logger.Error().Err(err).Str("path", path).Msg("failed to open questions file, starting with an empty bank")
		return &staticBank{}
	}
	defer f.Close()

	questions, err := parseQuestions(f)
	if err != nil {
		logger.Error().Err(err).Str("path", path).Msg("failed to parse questions file, starting with an empty bank")
		return &staticBank{}
	}

	logger.Info().Int("count", len(questions)).Str("path", path).Msg("loaded question bank")

	return &staticBank{questions: questions}
}

// parseQuestions reads the delimited format the content pipeline produces:
// a header row, then one question per row with fields in the fixed order
// original, prompt, missing, source, difficulty, audio. Quoted fields may
// escape quotes by doubling them.
func parseQuestions(r io.Reader) ([]QuestionRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, nil
	}

	questions := make([]QuestionRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < 4 {
			continue
		}

		q := QuestionRecord{
			Original:   row[0],
			Prompt:     row[1],
			Missing:    row[2],
			Source:     row[3],
			Difficulty: 1,
		}

		if len(row) > 4 {
			if d, err := strconv.Atoi(strings.TrimSpace(row[4])); err == nil && d > 0 {
				q.Difficulty = d
			}
		}

		if len(row) > 5 {
			if name := strings.TrimSpace(row[5]); name != "" {
				q.Audio = "headline_read/" + name + ".mp3"
			}
		}

		questions = append(questions, q)
	}

	return questions, nil
}
