package scoring

import (
	"github.com/mcoot/trucogame/internal/dependencies/clock"
	"github.com/mcoot/trucogame/internal/model"
)

// DefaultWinningScore is the match score that ends a match
const DefaultWinningScore = 12

// Service keeps hand, round and match tallies
type Service struct {
	winningScore int
	clock        clock.Clock
}

// New creates a new scoring Service
func New(winningScore int, clock clock.Clock) *Service {
	if winningScore <= 0 {
		winningScore = DefaultWinningScore
	}
	return &Service{
		winningScore: winningScore,
		clock:        clock,
	}
}

// WinningScore returns the match threshold
func (s *Service) WinningScore() int {
	return s.winningScore
}

// RecordHand adds a resolved hand to the round tallies and reports whether
// the round is now decided, and for which team.
//
// Decision order: a team with two hand wins takes the round. A tie on hand
// two or later goes to the winner of the first hand. After the third hand the
// team with more hand wins takes it; failing that the earliest decisive hand,
// and failing that the team of the seat that led the round.
func (s *Service) RecordHand(room *model.Room, result model.HandResult) (bool, model.Team) {
	room.History = append(room.History, result)
	if result.Tie {
		room.TiedHands++
	} else {
		room.HandWins[result.Winner.Index()]++
		if room.HandIndex == 1 {
			room.FirstHandWinner = result.Winner
		}
	}

	for _, team := range []model.Team{model.Team1, model.Team2} {
		if room.HandWins[team.Index()] >= 2 {
			return true, team
		}
	}

	if result.Tie && room.HandIndex >= 2 && room.FirstHandWinner.Valid() {
		return true, room.FirstHandWinner
	}

	if room.HandIndex < model.MaxHands {
		return false, model.NoTeam
	}

	switch {
	case room.HandWins[0] > room.HandWins[1]:
		return true, model.Team1
	case room.HandWins[1] > room.HandWins[0]:
		return true, model.Team2
	}
	for _, h := range room.History {
		if !h.Tie {
			return true, h.Winner
		}
	}
	return true, model.TeamOf(room.RoundLeader)
}

// AwardRound closes the round for the winning team and evaluates match completion
func (s *Service) AwardRound(room *model.Room, winner model.Team, points int) {
	room.Score[winner.Index()] += points
	room.RoundWinner = winner
	room.RoundPoints = points
	room.RoundOver = true
	room.Started = false
	room.RoundsPlayed++

	if room.MatchWinner.Valid() {
		return
	}
	if room.Score[winner.Index()] >= s.winningScore {
		room.MatchWinner = winner
		room.MatchHistory = append(room.MatchHistory, model.MatchSummary{
			Winner:      winner,
			Score:       room.Score,
			Rounds:      room.RoundsPlayed,
			CompletedAt: s.clock.Now(),
		})
	}
}

// RefusalPoints returns what the asking team earns when its call is refused.
// tier is the value the refusal is judged at.
func RefusalPoints(tier int) int {
	if tier <= 3 {
		return 1
	}
	return tier / 2
}

// ResetMatch clears match scores so a new match can start in the same room
func (s *Service) ResetMatch(room *model.Room) {
	room.Score = [2]int{}
	room.MatchWinner = model.NoTeam
	room.RoundsPlayed = 0
}
