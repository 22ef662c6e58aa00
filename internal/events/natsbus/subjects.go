package natsbus

import (
	"strconv"
	"strings"

	"github.com/mcoot/trucogame/internal/model"
)

// QueueGroupControl shares control messages across server instances
const QueueGroupControl = "truco-control"

var tokenReplacer = strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_", "\t", "_")

// token makes a room code safe to use as one subject token
func token(code model.RoomCode) string {
	return tokenReplacer.Replace(string(code))
}

// SeatSubject is where a seat's state updates are published
func SeatSubject(prefix string, code model.RoomCode, seat int) string {
	return prefix + ".room." + token(code) + ".seat." + strconv.Itoa(seat)
}

// ClosedSubject announces that a room was destroyed
func ClosedSubject(prefix string, code model.RoomCode) string {
	return prefix + ".room." + token(code) + ".closed"
}

// ControlSubject carries model.ControlMessage requests
func ControlSubject(prefix string) string {
	return prefix + ".control"
}
