package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxBodyBytes caps request bodies; every request here is a few fields
const maxBodyBytes = 4 << 10

// JoinRequest is the request body for taking a seat
type JoinRequest struct {
	Name string `json:"name"`
}

// PlayRequest is the request body for playing a card.
// CardIndex is a pointer so a missing index is not read as 0.
type PlayRequest struct {
	CardIndex *int `json:"card_index"`
	Hidden    bool `json:"hidden"`
}

// RespondTrucoRequest is the request body for answering a truco call
type RespondTrucoRequest struct {
	Accept *bool `json:"accept"`
}

// Decode reads a JSON body into v. An empty body leaves v untouched.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
