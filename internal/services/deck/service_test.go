package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/trucogame/internal/dependencies/mocks"
	"github.com/mcoot/trucogame/internal/dependencies/random"
	"github.com/mcoot/trucogame/internal/model"
	"github.com/mcoot/trucogame/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	random  *mocks.MockRandom
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.random = mocks.NewMockRandom()
	s.service = New(s.random, testutil.NopLogger())
}

func (s *ServiceSuite) TestDealGivesThreeCardsToEverySeat() {
	deal, err := s.service.Deal()
	s.Require().NoError(err)

	for seat, hand := range deal.Hands {
		s.Len(hand, model.HandSize, "seat %d", seat)
	}
}

func (s *ServiceSuite) TestDealSortsHandsDescending() {
	deal, err := s.service.Deal()
	s.Require().NoError(err)

	for _, hand := range deal.Hands {
		for i := 1; i < len(hand); i++ {
			s.GreaterOrEqual(hand[i-1].Rank(), hand[i].Rank())
		}
	}
}

func (s *ServiceSuite) TestDealRemovesOffendingCardsAndRedeals() {
	pool := []model.CardID{
		model.CardQueen, model.CardQueen, model.CardJack, model.CardKing,
		model.CardAce, model.CardAce, model.CardAce,
		model.CardTwo, model.CardTwo, model.CardTwo, model.CardTwo,
		model.CardZap, model.CardCopao, model.CardEspadilha, model.CardOuros, model.CardCoringa,
	}

	// With an empty queue every shuffle rotates the pool left by one, so the
	// first deal hands seat 0 Q, J, K.
	deal, err := s.service.DealFrom(pool)
	s.Require().NoError(err)

	s.Equal(1, deal.Retries)
	s.Equal([]model.CardID{model.CardTwo, model.CardAce, model.CardAce}, deal.Hands[0])
	s.Equal([]model.CardID{model.CardTwo, model.CardTwo, model.CardTwo}, deal.Hands[1])
	s.Equal([]model.CardID{model.CardZap, model.CardCopao, model.CardEspadilha}, deal.Hands[2])
	s.Equal([]model.CardID{model.CardOuros, model.CardCoringa, model.CardQueen}, deal.Hands[3])
}

func (s *ServiceSuite) TestDealFromDoesNotModifyPool() {
	pool := model.FullDeck()
	original := append([]model.CardID(nil), pool...)

	_, err := s.service.DealFrom(pool)
	s.Require().NoError(err)
	s.Equal(original, pool)
}

func (s *ServiceSuite) TestDealFromTooSmallPool() {
	_, err := s.service.DealFrom([]model.CardID{model.CardZap, model.CardAce})
	s.ErrorIs(err, model.ErrDeckExhausted)
}

func (s *ServiceSuite) TestDealFromAllFacePoolExhausts() {
	var pool []model.CardID
	for i := 0; i < 4; i++ {
		pool = append(pool, model.CardQueen, model.CardJack, model.CardKing)
	}
	_, err := s.service.DealFrom(pool)
	s.ErrorIs(err, model.ErrDeckExhausted)
}

func TestSeededDealsNeverContainAllFaceHands(t *testing.T) {
	service := New(random.NewSeeded(2024), testutil.NopLogger())
	copies := make(map[model.CardID]int)
	for _, c := range model.FullDeck() {
		copies[c]++
	}

	const deals = 1000
	retries := make(map[int]int)
	for i := 0; i < deals; i++ {
		deal, err := service.Deal()
		require.NoError(t, err)
		assert.LessOrEqual(t, deal.Retries, 4)
		retries[deal.Retries]++

		used := make(map[model.CardID]int)
		for _, hand := range deal.Hands {
			require.Len(t, hand, model.HandSize)
			assert.False(t, model.AllFace(hand), "deal %d produced an all-face hand", i)
			for _, c := range hand {
				used[c]++
			}
		}
		for card, n := range used {
			assert.LessOrEqual(t, n, copies[card], "deal %d over-used %s", i, card.Name())
		}
	}

	// 12 of the 25 cards are faces: roughly a third of deals redeal once
	// and about 7% redeal more than once.
	redealt := deals - retries[0]
	multi := redealt - retries[1]
	t.Logf("redeal distribution over %d deals: %v", deals, retries)
	assert.InDelta(t, 350, redealt, 100, "deals needing a redeal")
	assert.InDelta(t, 70, multi, 40, "deals needing more than one redeal")
}
