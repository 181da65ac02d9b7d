// Package tally implements instant-runoff (ranked-choice) vote counting.
//
// The count is a pure function of its inputs: the same candidates and
// ballots always produce the same winner and the same round trace.
// Elimination ties are broken by the lowest candidate id in lexicographic
// order.
package tally

import (
	"sort"

	"github.com/packvote/api/internal/core/domain"
)

// Candidate is one entry a ballot can rank.
type Candidate struct {
	ID              string
	DestinationName string
}

// Ballot is one voter's ranking, highest preference first.
type Ballot struct {
	Ranking []string
}

// Count runs instant-runoff elimination until a candidate holds a strict
// majority of the non-exhausted ballots, or only one candidate remains.
// It returns nil for the winner only when there are no candidates or no
// ballots.
func Count(candidates []Candidate, ballots []Ballot) (*Candidate, []domain.TallyRound) {
	if len(candidates) == 0 || len(ballots) == 0 {
		return nil, nil
	}

	byID := make(map[string]Candidate, len(candidates))
	alive := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
		alive[c.ID] = true
	}

	var rounds []domain.TallyRound
	for number := 1; ; number++ {
		counts := make(map[string]int, len(alive))
		for id := range alive {
			counts[id] = 0
		}

		// A ballot counts for its highest-ranked candidate still alive.
		// Ballots with no alive candidate left are exhausted and drop
		// out of the majority denominator.
		total := 0
		for _, b := range ballots {
			for _, id := range b.Ranking {
				if alive[id] {
					counts[id]++
					total++
					break
				}
			}
		}

		round := domain.TallyRound{
			Round:      number,
			VoteCounts: counts,
			TotalVotes: total,
		}

		if id, ok := majority(counts, total); ok {
			round.Winner = &id
			rounds = append(rounds, round)
			winner := byID[id]
			return &winner, rounds
		}

		if len(alive) == 1 {
			id := soleSurvivor(alive)
			round.Winner = &id
			rounds = append(rounds, round)
			winner := byID[id]
			return &winner, rounds
		}

		eliminated := lowestCandidate(counts)
		delete(alive, eliminated)
		round.Eliminated = &eliminated
		rounds = append(rounds, round)
	}
}

func majority(counts map[string]int, total int) (string, bool) {
	if total == 0 {
		return "", false
	}
	for id, votes := range counts {
		if votes*2 > total {
			return id, true
		}
	}
	return "", false
}

// lowestCandidate returns the candidate with the fewest votes; ties are
// broken by the smallest id so the result is deterministic.
func lowestCandidate(counts map[string]int) string {
	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	lowest := ids[0]
	for _, id := range ids[1:] {
		if counts[id] < counts[lowest] {
			lowest = id
		}
	}
	return lowest
}

func soleSurvivor(alive map[string]bool) string {
	for id := range alive {
		return id
	}
	return ""
}
