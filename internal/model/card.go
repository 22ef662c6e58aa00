package model

// CardID identifies a card in the catalog. The numeric value is also the
// card's rank, so CardPorcao is the lowest card and CardZap the highest.
type CardID int

const (
	CardPorcao CardID = iota
	CardQueen
	CardJack
	CardKing
	CardAce
	CardTwo
	CardThree
	CardCoringa
	CardOuros
	CardEspadilha
	CardCopao
	CardZap

	// CardHidden is the face-down placeholder shown in place of a hidden play
	CardHidden
)

// CardTag is a bit set of card properties
type CardTag uint8

const (
	// TagFace marks the court cards. A dealt hand may not consist only of these.
	TagFace CardTag = 1 << iota
	// TagInverter marks the low card that beats the TagTop card when both are played
	TagInverter
	// TagTop marks the highest card
	TagTop
	// TagPlaceholder marks the face-down placeholder
	TagPlaceholder
)

// CardInfo is the catalog entry for a card
type CardInfo struct {
	Name   string
	Rank   int
	Tags   CardTag
	Copies int // number of copies in a full deck
}

var cardCatalog = [...]CardInfo{
	CardPorcao:    {Name: "Porcão", Rank: 0, Tags: TagInverter, Copies: 1},
	CardQueen:     {Name: "Q", Rank: 1, Tags: TagFace, Copies: 4},
	CardJack:      {Name: "J", Rank: 2, Tags: TagFace, Copies: 4},
	CardKing:      {Name: "K", Rank: 3, Tags: TagFace, Copies: 4},
	CardAce:       {Name: "A", Rank: 4, Copies: 3},
	CardTwo:       {Name: "2", Rank: 5, Copies: 4},
	CardThree:     {Name: "3", Rank: 6, Copies: 0},
	CardCoringa:   {Name: "Coringa", Rank: 7, Copies: 1},
	CardOuros:     {Name: "Ouros", Rank: 8, Copies: 1},
	CardEspadilha: {Name: "Espadilha", Rank: 9, Copies: 1},
	CardCopao:     {Name: "Copão", Rank: 10, Copies: 1},
	CardZap:       {Name: "Zap", Rank: 11, Tags: TagTop, Copies: 1},
	CardHidden:    {Name: "Escondida", Rank: -1, Tags: TagPlaceholder, Copies: 0},
}

// Valid reports whether the card exists in the catalog
func (c CardID) Valid() bool {
	return c >= CardPorcao && int(c) < len(cardCatalog)
}

// Info returns the catalog entry for the card
func (c CardID) Info() CardInfo {
	if !c.Valid() {
		return CardInfo{Rank: -1}
	}
	return cardCatalog[c]
}

// Name returns the display name of the card
func (c CardID) Name() string {
	return c.Info().Name
}

// Rank returns the card's resolution rank (-1 for the placeholder)
func (c CardID) Rank() int {
	return c.Info().Rank
}

// Has reports whether the card carries the given tag
func (c CardID) Has(tag CardTag) bool {
	return c.Info().Tags&tag != 0
}

// IsFace reports whether the card is a court card
func (c CardID) IsFace() bool {
	return c.Has(TagFace)
}

// FullDeck returns every dealable card, with duplicates, in catalog order
func FullDeck() []CardID {
	var deck []CardID
	for id := range cardCatalog {
		card := CardID(id)
		for i := 0; i < cardCatalog[id].Copies; i++ {
			deck = append(deck, card)
		}
	}
	return deck
}

// AllFace reports whether every card in the hand is a face card.
// An empty hand is not all-face.
func AllFace(hand []CardID) bool {
	if len(hand) == 0 {
		return false
	}
	for _, c := range hand {
		if !c.IsFace() {
			return false
		}
	}
	return true
}
