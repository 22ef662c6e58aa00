// Package resolver decides the outcome of a completed hand.
package resolver

import "github.com/mcoot/trucogame/internal/model"

// Resolve returns the outcome of the plays on a complete table.
// Hidden plays are judged by the card actually played.
//
// When the inverter and the top card are both on the table the inverter wins.
// Otherwise the highest rank wins; equal highest ranks on one team give the
// hand to that team, and across teams the hand is tied. The representative
// seat for a shared rank is the first such play in table order.
func Resolve(plays []model.Play) model.HandResult {
	result := model.HandResult{
		Plays: append([]model.Play(nil), plays...),
		Seat:  -1,
	}
	if len(plays) == 0 {
		result.Tie = true
		return result
	}

	inverter, top := -1, false
	for _, p := range plays {
		if p.Card.Has(model.TagInverter) && inverter < 0 {
			inverter = p.Seat
		}
		if p.Card.Has(model.TagTop) {
			top = true
		}
	}
	if inverter >= 0 && top {
		result.Winner = model.TeamOf(inverter)
		result.Seat = inverter
		return result
	}

	best := plays[0].Card.Rank()
	for _, p := range plays[1:] {
		if r := p.Card.Rank(); r > best {
			best = r
		}
	}

	var leaders []int
	for _, p := range plays {
		if p.Card.Rank() == best {
			leaders = append(leaders, p.Seat)
		}
	}

	result.Seat = leaders[0]
	team := model.TeamOf(leaders[0])
	for _, seat := range leaders[1:] {
		if model.TeamOf(seat) != team {
			result.Tie = true
			return result
		}
	}
	result.Winner = team
	return result
}
