package deck

import (
	"log/slog"
	"sort"

	"github.com/mcoot/trucogame/internal/dependencies/random"
	"github.com/mcoot/trucogame/internal/model"
)

// Service deals hands from a shuffled deck
type Service struct {
	random random.Random
	logger *slog.Logger
}

// New creates a new deck Service
func New(random random.Random, logger *slog.Logger) *Service {
	return &Service{
		random: random,
		logger: logger.With(slog.String("component", "deck")),
	}
}

// Deal is the outcome of dealing one round
type Deal struct {
	Hands [model.SeatCount][]model.CardID

	// Retries counts how many times the deal was redone because a seat
	// received only face cards
	Retries int
}

// Deal shuffles the full deck and deals a hand to every seat
func (s *Service) Deal() (*Deal, error) {
	return s.DealFrom(model.FullDeck())
}

// DealFrom deals from the given pool. The pool is not modified.
//
// When a seat is dealt only face cards, exactly those cards are removed from
// the pool, the remainder is reshuffled and every seat is dealt again.
func (s *Service) DealFrom(pool []model.CardID) (*Deal, error) {
	pool = append([]model.CardID(nil), pool...)
	deal := &Deal{}

	for {
		if len(pool) < model.SeatCount*model.HandSize {
			return nil, model.ErrDeckExhausted
		}

		random.Shuffle(s.random, len(pool), func(i, j int) {
			pool[i], pool[j] = pool[j], pool[i]
		})

		var offending []int
		for seat := 0; seat < model.SeatCount; seat++ {
			start := seat * model.HandSize
			deal.Hands[seat] = append([]model.CardID(nil), pool[start:start+model.HandSize]...)
			if model.AllFace(deal.Hands[seat]) {
				offending = append(offending, seat)
			}
		}

		if len(offending) == 0 {
			for seat := range deal.Hands {
				SortHand(deal.Hands[seat])
			}
			return deal, nil
		}

		pool = removeDealt(pool, offending)
		deal.Retries++
		s.logger.Debug("redealing after all-face hand",
			slog.Int("retry", deal.Retries),
			slog.Int("offending_seats", len(offending)),
			slog.Int("pool_size", len(pool)),
		)
	}
}

// SortHand orders a hand by descending rank
func SortHand(hand []model.CardID) {
	sort.SliceStable(hand, func(i, j int) bool {
		return hand[i].Rank() > hand[j].Rank()
	})
}

// removeDealt drops the cards dealt to the given seats from the pool
func removeDealt(pool []model.CardID, seats []int) []model.CardID {
	drop := make(map[int]bool, len(seats)*model.HandSize)
	for _, seat := range seats {
		for k := 0; k < model.HandSize; k++ {
			drop[seat*model.HandSize+k] = true
		}
	}
	kept := make([]model.CardID, 0, len(pool)-len(drop))
	for i, card := range pool {
		if !drop[i] {
			kept = append(kept, card)
		}
	}
	return kept
}
