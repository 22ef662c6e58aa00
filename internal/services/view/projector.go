// Package view builds the per-seat snapshot sent to clients.
package view

import (
	"github.com/mcoot/trucogame/internal/model"
)

// Card is a card as shown to a client
type Card struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Rank int    `json:"rank"`
}

// CardFromModel converts a card identity, masking nothing
func CardFromModel(c model.CardID) Card {
	return Card{ID: int(c), Name: c.Name(), Rank: c.Rank()}
}

// TablePlay is a card on the table. Hidden plays carry the placeholder card.
type TablePlay struct {
	Seat   int    `json:"seat"`
	Player string `json:"player"`
	Team   int    `json:"team"`
	Card   Card   `json:"card"`
	Hidden bool   `json:"hidden"`
}

// Hand is a resolved hand from the round history
type Hand struct {
	Plays  []TablePlay `json:"plays"`
	Winner int         `json:"winner"`
	Tie    bool        `json:"tie"`
	Seat   int         `json:"seat"`
}

// Player is a roster entry. Cards are counted, never listed.
type Player struct {
	Seat      int    `json:"seat"`
	Name      string `json:"name"`
	Team      int    `json:"team"`
	Connected bool   `json:"connected"`
	Cards     int    `json:"cards"`
}

// Truco is the raise negotiation as seen by the viewer
type Truco struct {
	State      string `json:"state"`
	Asker      int    `json:"asker"`
	Value      int    `json:"value"`
	CanCall    bool   `json:"can_call"`
	CanRespond bool   `json:"can_respond"`
}

// Match is a finished match
type Match struct {
	Winner int    `json:"winner"`
	Score  [2]int `json:"score"`
	Rounds int    `json:"rounds"`
}

// View is the snapshot of a room projected for one seat
type View struct {
	Room          string      `json:"room"`
	Seat          int         `json:"seat"`
	Team          int         `json:"team"`
	Name          string      `json:"name"`
	Partner       string      `json:"partner"`
	Hand          []Card      `json:"hand"`
	MyTurn        bool        `json:"my_turn"`
	TeamTurn      bool        `json:"team_turn"`
	CurrentPlayer string      `json:"current_player"`
	Started       bool        `json:"started"`
	Resolving     bool        `json:"resolving"`
	HandIndex     int         `json:"hand_index"`
	HandWins      [2]int      `json:"hand_wins"`
	TiedHands     int         `json:"tied_hands"`
	Table         []TablePlay `json:"table"`
	History       []Hand      `json:"history"`
	RoundValue    int         `json:"round_value"`
	RoundOver     bool        `json:"round_over"`
	RoundWinner   int         `json:"round_winner"`
	RoundPoints   int         `json:"round_points"`
	Score         [2]int      `json:"score"`
	MatchWinner   int         `json:"match_winner"`
	Matches       []Match     `json:"matches,omitempty"`
	Truco         Truco       `json:"truco"`
	Players       []Player    `json:"players"`
	Connected     int         `json:"connected"`
}

// Project builds the view of room for the occupant of seat
func Project(room *model.Room, seat int) *View {
	team := model.TeamOf(seat)
	occupant := room.Seats[seat]
	current, hasTurn := room.CurrentSeat()

	v := &View{
		Room:        string(room.Code),
		Seat:        seat,
		Team:        int(team),
		Name:        occupant.Name,
		Partner:     room.Seats[model.PartnerSeat(seat)].Name,
		Hand:        make([]Card, 0, len(occupant.Hand)),
		Started:     room.Started,
		Resolving:   room.Resolving,
		HandIndex:   room.HandIndex,
		HandWins:    room.HandWins,
		TiedHands:   room.TiedHands,
		Table:       projectPlays(room, room.Table),
		History:     make([]Hand, 0, len(room.History)),
		RoundValue:  room.RoundValue,
		RoundOver:   room.RoundOver,
		RoundWinner: int(room.RoundWinner),
		RoundPoints: room.RoundPoints,
		Score:       room.Score,
		MatchWinner: int(room.MatchWinner),
		Players:     make([]Player, 0, model.SeatCount),
		Connected:   room.ConnectedCount(),
	}

	for _, c := range occupant.Hand {
		v.Hand = append(v.Hand, CardFromModel(c))
	}

	if hasTurn && !room.Resolving {
		v.MyTurn = current == seat
		v.TeamTurn = model.TeamOf(current) == team
		v.CurrentPlayer = room.Seats[current].Name
	}

	for _, h := range room.History {
		v.History = append(v.History, Hand{
			Plays:  projectPlays(room, h.Plays),
			Winner: int(h.Winner),
			Tie:    h.Tie,
			Seat:   h.Seat,
		})
	}

	for _, m := range room.MatchHistory {
		v.Matches = append(v.Matches, Match{Winner: int(m.Winner), Score: m.Score, Rounds: m.Rounds})
	}

	for i := range room.Seats {
		s := room.Seats[i]
		if !s.Occupied() {
			continue
		}
		v.Players = append(v.Players, Player{
			Seat:      i,
			Name:      s.Name,
			Team:      int(model.TeamOf(i)),
			Connected: s.Connected,
			Cards:     len(s.Hand),
		})
	}

	v.Truco = projectTruco(room, team, v.TeamTurn)
	return v
}

func projectPlays(room *model.Room, plays []model.Play) []TablePlay {
	out := make([]TablePlay, 0, len(plays))
	for _, p := range plays {
		card := p.Card
		if p.Hidden {
			card = model.CardHidden
		}
		out = append(out, TablePlay{
			Seat:   p.Seat,
			Player: room.Seats[p.Seat].Name,
			Team:   int(model.TeamOf(p.Seat)),
			Card:   CardFromModel(card),
			Hidden: p.Hidden,
		})
	}
	return out
}

func projectTruco(room *model.Room, team model.Team, teamTurn bool) Truco {
	t := Truco{
		State: string(room.TrucoState),
		Asker: int(room.TrucoAsker),
		Value: room.RoundValue,
	}
	if !room.InProgress() || room.Resolving {
		return t
	}

	canRaise := room.RoundValue < 12 && room.HandIndex > 1 && room.TrucoAsker != team
	if room.TrucoState == model.TrucoNone {
		t.CanCall = canRaise && teamTurn
	} else {
		t.CanCall = canRaise
		t.CanRespond = room.TrucoAsker != team
	}
	return t
}
