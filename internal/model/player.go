package model

import "time"

// SessionID identifies one client connection occupying a seat
type SessionID string

// Team is one of the two partnerships. Seats 0 and 2 form Team1, seats 1 and 3 Team2.
type Team int

const (
	NoTeam Team = iota
	Team1
	Team2
)

// TeamOf returns the team a seat belongs to
func TeamOf(seat int) Team {
	if seat%2 == 0 {
		return Team1
	}
	return Team2
}

// Index returns the team's position in per-team arrays (0 or 1)
func (t Team) Index() int {
	return int(t) - 1
}

// Other returns the opposing team
func (t Team) Other() Team {
	switch t {
	case Team1:
		return Team2
	case Team2:
		return Team1
	default:
		return NoTeam
	}
}

// Valid reports whether t is Team1 or Team2
func (t Team) Valid() bool {
	return t == Team1 || t == Team2
}

// Seat is one of the four places at the table
type Seat struct {
	Session   SessionID // empty when the seat is vacant
	Name      string
	Connected bool
	Hand      []CardID
	JoinedAt  time.Time
}

// Occupied reports whether a session holds the seat, connected or not
func (s *Seat) Occupied() bool {
	return s.Session != ""
}

// PartnerSeat returns the seat across the table
func PartnerSeat(seat int) int {
	return (seat + 2) % SeatCount
}
