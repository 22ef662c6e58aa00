package game

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mcoot/trucogame/internal/dependencies/clock"
	"github.com/mcoot/trucogame/internal/model"
	"github.com/mcoot/trucogame/internal/services/deck"
	"github.com/mcoot/trucogame/internal/services/resolver"
	"github.com/mcoot/trucogame/internal/services/scoring"
	"github.com/mcoot/trucogame/internal/services/truco"
	"github.com/mcoot/trucogame/internal/services/turn"
	"github.com/mcoot/trucogame/internal/services/view"
	"github.com/mcoot/trucogame/internal/storage"
)

// MaxNameLength bounds display names, in runes
const MaxNameLength = 24

// Config holds configuration for the game controller
type Config struct {
	// HandDelay is how long a completed table stays on display before the
	// hand is resolved. Zero resolves immediately.
	HandDelay time.Duration

	// IdleRoomTTL is how long a room with no connected seat survives a sweep
	IdleRoomTTL time.Duration
}

// DefaultConfig returns default controller configuration
func DefaultConfig() Config {
	return Config{
		HandDelay:   3 * time.Second,
		IdleRoomTTL: 30 * time.Minute,
	}
}

// Controller owns every mutation of room state. Each operation runs under the
// room's lock from load to publish.
type Controller struct {
	storage        storage.Storage
	deckService    *deck.Service
	scoringService *scoring.Service
	clock          clock.Clock
	logger         *slog.Logger
	cfg            Config

	locks      *roomLocks
	publisher  Publishers
	closeHooks []func(model.RoomCode)
}

// NewController creates a new game Controller
func NewController(
	storage storage.Storage,
	deckService *deck.Service,
	scoringService *scoring.Service,
	clock clock.Clock,
	logger *slog.Logger,
	cfg Config,
) *Controller {
	return &Controller{
		storage:        storage,
		deckService:    deckService,
		scoringService: scoringService,
		clock:          clock,
		logger:         logger.With(slog.String("component", "game")),
		cfg:            cfg,
		locks:          newRoomLocks(),
	}
}

// AddPublisher registers a destination for state updates. It must be called
// before the controller starts serving.
func (c *Controller) AddPublisher(p Publisher) {
	c.publisher = append(c.publisher, p)
}

// OnRoomClosed registers fn to run after a room is destroyed. fn runs while
// the room's lock is held and must not call back into the controller.
func (c *Controller) OnRoomClosed(fn func(model.RoomCode)) {
	c.closeHooks = append(c.closeHooks, fn)
}

func (c *Controller) roomClosed(code model.RoomCode) {
	for _, fn := range c.closeHooks {
		fn(code)
	}
}

// Join seats session in the room under name, creating the room if needed.
//
// A disconnected seat held under the same name is taken over with its hand
// intact. Otherwise the lowest free seat is taken. Filling the fourth seat
// deals a round.
func (c *Controller) Join(ctx context.Context, code model.RoomCode, session model.SessionID, name string) (*view.View, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return nil, model.ErrInvalidName
	}

	unlock := c.locks.acquire(code)
	defer unlock()

	now := c.clock.Now()
	room, err := c.storage.GetRoom(ctx, code)
	if errors.Is(err, model.ErrRoomNotFound) {
		room = model.NewRoom(code, now)
		c.logger.Info("room created", slog.String("room_code", string(code)))
	} else if err != nil {
		return nil, err
	}

	work := room.Clone()
	seat, filled, err := c.seat(work, session, name, now)
	if err != nil {
		if room.OccupiedCount() > 0 {
			c.publish(ctx, room)
		}
		c.logger.Debug("join rejected",
			slog.String("room_code", string(code)),
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if filled && work.OccupiedCount() == model.SeatCount && !work.Started && !work.MatchWinner.Valid() {
		if err := c.startRound(work); err != nil {
			return nil, err
		}
	}

	if err := c.commit(ctx, work); err != nil {
		return nil, err
	}

	c.logger.Info("player joined",
		slog.String("room_code", string(code)),
		slog.String("name", name),
		slog.Int("seat", seat),
		slog.Bool("new_seat", filled),
	)
	return view.Project(work, seat), nil
}

// seat places the session and reports whether a vacant seat was filled
func (c *Controller) seat(room *model.Room, session model.SessionID, name string, now time.Time) (int, bool, error) {
	if seat := room.SeatBySession(session); seat >= 0 {
		room.Seats[seat].Connected = true
		return seat, false, nil
	}

	if seat := room.SeatByName(name); seat >= 0 {
		if room.Seats[seat].Connected {
			return -1, false, model.ErrNameTaken
		}
		room.Seats[seat].Session = session
		room.Seats[seat].Connected = true
		return seat, false, nil
	}

	for i := range room.Seats {
		if room.Seats[i].Occupied() {
			continue
		}
		room.Seats[i] = model.Seat{
			Session:   session,
			Name:      name,
			Connected: true,
			JoinedAt:  now,
		}
		room.ArrivalOrder = append(room.ArrivalOrder, i)
		return i, true, nil
	}
	return -1, false, model.ErrRoomFull
}

// Play puts the card at cardIndex of the session's hand on the table
func (c *Controller) Play(ctx context.Context, code model.RoomCode, session model.SessionID, cardIndex int, hidden bool) (*view.View, error) {
	return c.apply(ctx, code, session, "play", func(room *model.Room, seat int) error {
		if !room.InProgress() {
			return model.ErrRoundNotInProgress
		}
		if room.Resolving {
			return model.ErrHandResolving
		}
		if truco.Pending(room) {
			return model.ErrTrucoPending
		}
		if current, ok := room.CurrentSeat(); !ok || current != seat {
			return model.ErrNotPlayerTurn
		}

		hand := room.Seats[seat].Hand
		if cardIndex < 0 || cardIndex >= len(hand) {
			return model.ErrInvalidCard
		}
		if hidden && room.HandIndex == 1 {
			return model.ErrHiddenNotAllowed
		}

		card := hand[cardIndex]
		room.Seats[seat].Hand = append(hand[:cardIndex:cardIndex], hand[cardIndex+1:]...)
		room.Table = append(room.Table, model.Play{Seat: seat, Card: card, Hidden: hidden})
		turn.Advance(room)

		if room.TableComplete() {
			c.beginResolve(room)
		}
		return nil
	})
}

// CallTruco raises the round value on behalf of the session's team
func (c *Controller) CallTruco(ctx context.Context, code model.RoomCode, session model.SessionID) (*view.View, error) {
	return c.apply(ctx, code, session, "call_truco", func(room *model.Room, seat int) error {
		return truco.Call(room, seat)
	})
}

// RespondTruco accepts or refuses the outstanding raise. A refusal ends the
// round in favour of the asking team.
func (c *Controller) RespondTruco(ctx context.Context, code model.RoomCode, session model.SessionID, accept bool) (*view.View, error) {
	return c.apply(ctx, code, session, "respond_truco", func(room *model.Room, seat int) error {
		outcome, err := truco.Respond(room, seat, accept)
		if err != nil {
			return err
		}
		if outcome.Refused {
			c.scoringService.AwardRound(room, outcome.Winner, outcome.Points)
			c.logger.Info("truco refused",
				slog.String("room_code", string(room.Code)),
				slog.Int("winner", int(outcome.Winner)),
				slog.Int("points", outcome.Points),
			)
		}
		return nil
	})
}

// RequestNewRound deals the next round once the previous one is over
func (c *Controller) RequestNewRound(ctx context.Context, code model.RoomCode, session model.SessionID) (*view.View, error) {
	return c.apply(ctx, code, session, "request_new_round", func(room *model.Room, seat int) error {
		if room.MatchWinner.Valid() {
			return model.ErrMatchOver
		}
		if !room.RoundOver {
			return model.ErrRoundInProgress
		}
		if room.OccupiedCount() < model.SeatCount {
			return model.ErrSeatsVacant
		}
		return c.startRound(room)
	})
}

// Disconnect marks the session's seat as disconnected. The seat keeps its
// hand and can be reclaimed by joining under the same name. An outstanding
// raise is cancelled.
func (c *Controller) Disconnect(ctx context.Context, code model.RoomCode, session model.SessionID) error {
	_, err := c.apply(ctx, code, session, "disconnect", func(room *model.Room, seat int) error {
		room.Seats[seat].Connected = false
		if truco.Cancel(room) {
			c.logger.Info("truco cancelled by disconnect",
				slog.String("room_code", string(room.Code)),
				slog.Int("seat", seat),
			)
		}
		return nil
	})
	return err
}

// Leave permanently vacates the session's seat. A round in progress is
// voided. It reports whether the room was destroyed because no seat remains
// occupied.
func (c *Controller) Leave(ctx context.Context, code model.RoomCode, session model.SessionID) (bool, error) {
	unlock := c.locks.acquire(code)
	defer unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return false, err
	}
	seat := room.SeatBySession(session)
	if seat < 0 {
		return false, model.ErrSeatNotFound
	}

	room.Seats[seat] = model.Seat{}
	kept := room.ArrivalOrder[:0]
	for _, s := range room.ArrivalOrder {
		if s != seat {
			kept = append(kept, s)
		}
	}
	room.ArrivalOrder = kept

	if room.Started || room.Resolving {
		voidRound(room)
		c.logger.Info("round voided",
			slog.String("room_code", string(code)),
			slog.Int("seat", seat),
		)
	}

	c.logger.Info("player left",
		slog.String("room_code", string(code)),
		slog.Int("seat", seat),
	)

	if room.Empty() {
		if err := c.storage.DeleteRoom(ctx, code); err != nil {
			return false, err
		}
		c.logger.Info("room destroyed", slog.String("room_code", string(code)))
		c.roomClosed(code)
		return true, nil
	}

	return false, c.commit(ctx, room)
}

// ForceNewRound deals a fresh round regardless of the current one. It is
// driven by an external controller rather than a seated player.
func (c *Controller) ForceNewRound(ctx context.Context, code model.RoomCode) error {
	return c.control(ctx, code, "force_new_round", func(room *model.Room) error {
		if room.MatchWinner.Valid() {
			return model.ErrMatchOver
		}
		if room.OccupiedCount() < model.SeatCount {
			return model.ErrSeatsVacant
		}
		return c.startRound(room)
	})
}

// ResetMatch clears the match score and, with every seat occupied, deals a
// new round
func (c *Controller) ResetMatch(ctx context.Context, code model.RoomCode) error {
	return c.control(ctx, code, "reset_match", func(room *model.Room) error {
		c.scoringService.ResetMatch(room)
		voidRound(room)
		if room.OccupiedCount() == model.SeatCount {
			return c.startRound(room)
		}
		return nil
	})
}

// View returns the session's current view of the room
func (c *Controller) View(ctx context.Context, code model.RoomCode, session model.SessionID) (*view.View, error) {
	unlock := c.locks.acquire(code)
	defer unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	seat := room.SeatBySession(session)
	if seat < 0 {
		return nil, model.ErrSeatNotFound
	}
	return view.Project(room, seat), nil
}

// GetRoom retrieves a room by code
func (c *Controller) GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	return c.storage.GetRoom(ctx, code)
}

// Sweep destroys rooms that have had no connected seat for the idle TTL and
// returns their codes
func (c *Controller) Sweep(ctx context.Context) ([]model.RoomCode, error) {
	codes, err := c.storage.ListRooms(ctx)
	if err != nil {
		return nil, err
	}

	var removed []model.RoomCode
	for _, code := range codes {
		ok, err := c.sweepRoom(ctx, code)
		if err != nil {
			c.logger.Error("failed to sweep room",
				slog.String("room_code", string(code)),
				slog.String("error", err.Error()),
			)
			continue
		}
		if ok {
			removed = append(removed, code)
		}
	}
	return removed, nil
}

func (c *Controller) sweepRoom(ctx context.Context, code model.RoomCode) (bool, error) {
	unlock := c.locks.acquire(code)
	defer unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if errors.Is(err, model.ErrRoomNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if room.ConnectedCount() > 0 || c.clock.Now().Sub(room.UpdatedAt) < c.cfg.IdleRoomTTL {
		return false, nil
	}
	if err := c.storage.DeleteRoom(ctx, code); err != nil {
		return false, err
	}
	c.logger.Info("idle room destroyed", slog.String("room_code", string(code)))
	c.roomClosed(code)
	return true, nil
}

// apply runs fn against a copy of the session's room under the room lock.
// A rejected action leaves the stored room untouched but still broadcasts it.
func (c *Controller) apply(ctx context.Context, code model.RoomCode, session model.SessionID, action string, fn func(room *model.Room, seat int) error) (*view.View, error) {
	unlock := c.locks.acquire(code)
	defer unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	seat := room.SeatBySession(session)
	if seat < 0 {
		return nil, model.ErrSeatNotFound
	}

	work := room.Clone()
	if err := fn(work, seat); err != nil {
		c.logger.Debug("action rejected",
			slog.String("room_code", string(code)),
			slog.String("action", action),
			slog.Int("seat", seat),
			slog.String("error", err.Error()),
		)
		if model.IsRuleViolation(err) {
			c.publish(ctx, room)
			return view.Project(room, seat), err
		}
		return nil, err
	}

	if err := c.commit(ctx, work); err != nil {
		return nil, err
	}
	return view.Project(work, seat), nil
}

// control is apply for operations not tied to a seat
func (c *Controller) control(ctx context.Context, code model.RoomCode, action string, fn func(room *model.Room) error) error {
	unlock := c.locks.acquire(code)
	defer unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return err
	}

	work := room.Clone()
	if err := fn(work); err != nil {
		c.logger.Debug("control action rejected",
			slog.String("room_code", string(code)),
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
		return err
	}

	c.logger.Info("control action applied",
		slog.String("room_code", string(code)),
		slog.String("action", action),
	)
	return c.commit(ctx, work)
}

// commit validates, stores and broadcasts the room. The caller holds the lock.
func (c *Controller) commit(ctx context.Context, room *model.Room) error {
	room.UpdatedAt = c.clock.Now()
	if err := room.Validate(); err != nil {
		c.logger.Error("refusing to save invalid room",
			slog.String("room_code", string(room.Code)),
			slog.String("error", err.Error()),
		)
		return err
	}
	if err := c.storage.SaveRoom(ctx, room); err != nil {
		c.logger.Error("failed to save room",
			slog.String("room_code", string(room.Code)),
			slog.String("error", err.Error()),
		)
		return err
	}
	c.publish(ctx, room)
	return nil
}

// publish sends one projected view to every connected seat
func (c *Controller) publish(ctx context.Context, room *model.Room) {
	if len(c.publisher) == 0 {
		return
	}
	for seat := range room.Seats {
		s := room.Seats[seat]
		if !s.Occupied() || !s.Connected {
			continue
		}
		c.publisher.Publish(ctx, Update{
			Room:    room.Code,
			Seat:    seat,
			Session: s.Session,
			View:    view.Project(room, seat),
		})
	}
}

// startRound deals and resets every round scoped field
func (c *Controller) startRound(room *model.Room) error {
	deal, err := c.deckService.Deal()
	if err != nil {
		return err
	}

	for seat := range room.Seats {
		room.Seats[seat].Hand = deal.Hands[seat]
	}
	room.DealRetries = deal.Retries
	room.DealCount++

	turn.Begin(room)
	room.RoundLeader = room.TurnOrder[0]
	room.Table = nil
	room.History = nil
	room.HandIndex = 1
	room.HandWins = [2]int{}
	room.TiedHands = 0
	room.FirstHandWinner = model.NoTeam
	room.RoundValue = model.BaseRoundValue
	room.TrucoState = model.TrucoNone
	room.TrucoAsker = model.NoTeam
	room.TrucoPrevValue = 0
	room.TrucoAccepted = 0
	room.Started = true
	room.RoundOver = false
	room.RoundWinner = model.NoTeam
	room.RoundPoints = 0
	room.Resolving = false

	c.logger.Info("round dealt",
		slog.String("room_code", string(room.Code)),
		slog.Int("deal", room.DealCount),
		slog.Int("leader", room.RoundLeader),
		slog.Int("retries", deal.Retries),
	)
	return nil
}

// beginResolve resolves a complete table now, or flags the room and defers
// resolution by the hand delay
func (c *Controller) beginResolve(room *model.Room) {
	if c.cfg.HandDelay <= 0 {
		c.completeHand(room)
		return
	}

	room.Resolving = true
	code, dealNo, hand := room.Code, room.DealCount, room.HandIndex
	c.clock.AfterFunc(c.cfg.HandDelay, func() {
		c.resolveDeferred(code, dealNo, hand)
	})
}

func (c *Controller) resolveDeferred(code model.RoomCode, dealNo, hand int) {
	ctx := context.Background()
	unlock := c.locks.acquire(code)
	defer unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		if !errors.Is(err, model.ErrRoomNotFound) {
			c.logger.Error("failed to load room for hand resolution",
				slog.String("room_code", string(code)),
				slog.String("error", err.Error()),
			)
		}
		return
	}
	if !room.Resolving || room.DealCount != dealNo || room.HandIndex != hand {
		return
	}

	c.completeHand(room)
	if err := c.commit(ctx, room); err != nil {
		return
	}
}

// completeHand resolves the table and either ends the round or sets up the
// next hand
func (c *Controller) completeHand(room *model.Room) {
	result := resolver.Resolve(room.Table)
	room.Resolving = false
	room.Table = nil

	decided, winner := c.scoringService.RecordHand(room, result)

	c.logger.Debug("hand resolved",
		slog.String("room_code", string(room.Code)),
		slog.Int("hand", room.HandIndex),
		slog.Bool("tie", result.Tie),
		slog.Int("seat", result.Seat),
	)

	if decided {
		c.scoringService.AwardRound(room, winner, room.RoundValue)
		c.logger.Info("round over",
			slog.String("room_code", string(room.Code)),
			slog.Int("winner", int(winner)),
			slog.Int("points", room.RoundPoints),
			slog.Int("team1_score", room.Score[0]),
			slog.Int("team2_score", room.Score[1]),
		)
		if room.MatchWinner.Valid() {
			c.logger.Info("match over",
				slog.String("room_code", string(room.Code)),
				slog.Int("winner", int(room.MatchWinner)),
			)
		}
		return
	}

	room.HandIndex++
	turn.RotateTo(room, result.Seat)
}

// voidRound abandons the current round without scoring it. The next deal
// follows arrival order again.
func voidRound(room *model.Room) {
	for i := range room.Seats {
		room.Seats[i].Hand = nil
	}
	room.TurnOrder = nil
	room.TurnIndex = 0
	room.Table = nil
	room.History = nil
	room.HandIndex = 0
	room.HandWins = [2]int{}
	room.TiedHands = 0
	room.FirstHandWinner = model.NoTeam
	room.RoundValue = model.BaseRoundValue
	room.TrucoState = model.TrucoNone
	room.TrucoAsker = model.NoTeam
	room.TrucoPrevValue = 0
	room.TrucoAccepted = 0
	room.Started = false
	room.RoundOver = false
	room.Resolving = false
}
