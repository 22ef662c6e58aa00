// Package turn orders the seats within a round.
package turn

import "github.com/mcoot/trucogame/internal/model"

// Begin sets the turn order for a new round. The first round of a room follows
// seat arrival order; later rounds rotate the previous order left by one.
func Begin(room *model.Room) {
	if len(room.TurnOrder) != model.SeatCount {
		room.TurnOrder = arrivalOrder(room)
	} else {
		room.TurnOrder = append(room.TurnOrder[1:], room.TurnOrder[0])
	}
	room.TurnIndex = 0
}

// RotateTo puts seat at the head of the turn order and gives it the turn
func RotateTo(room *model.Room, seat int) {
	for i, s := range room.TurnOrder {
		if s == seat {
			rotated := make([]int, 0, len(room.TurnOrder))
			rotated = append(rotated, room.TurnOrder[i:]...)
			rotated = append(rotated, room.TurnOrder[:i]...)
			room.TurnOrder = rotated
			break
		}
	}
	room.TurnIndex = 0
}

// Advance passes the turn to the next seat in order
func Advance(room *model.Room) {
	room.TurnIndex++
}

// arrivalOrder lists seats by arrival, filling in any seat missing from the
// record in index order
func arrivalOrder(room *model.Room) []int {
	order := make([]int, 0, model.SeatCount)
	seen := make(map[int]bool, model.SeatCount)
	for _, seat := range room.ArrivalOrder {
		if seat >= 0 && seat < model.SeatCount && !seen[seat] {
			order = append(order, seat)
			seen[seat] = true
		}
	}
	for seat := 0; seat < model.SeatCount; seat++ {
		if !seen[seat] {
			order = append(order, seat)
		}
	}
	return order
}
