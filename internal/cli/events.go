package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/trucogame/internal/model"
	"github.com/mcoot/trucogame/internal/services/game"
)

func newEventsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Stream live room updates",
		Long: `Connect to the room's SSE endpoint and stream updates in real-time.
Your seat counts as connected while the stream is open.

Events include:
  - connected: Stream established
  - state_update: Your view of the room changed
  - room_closed: The room was destroyed

Press Ctrl+C to disconnect.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := roomCode()
			if err != nil {
				return err
			}
			return streamEvents(code, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")

	return cmd
}

// SSEEvent represents a parsed SSE event
type SSEEvent struct {
	Time  time.Time `json:"time"`
	Event string    `json:"event"`
	Data  string    `json:"data"`
}

func streamEvents(roomCode string, jsonOutput bool) error {
	// SSE is served by the web router, not under /api
	target := strings.TrimSuffix(cfg.ServerURL, "/") + "/rooms/" + url.PathEscape(roomCode) + "/events"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.Token)
	}

	// No timeout for SSE
	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	out := NewOutput(cfg.Output)
	if !jsonOutput {
		out.PrintMessage("Connected to room " + roomCode)
	}

	err = readEvents(resp.Body, func(event, data string) bool {
		printEvent(out, event, data, jsonOutput)
		return event != string(model.EventRoomClosed)
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("stream error: %w", err)
	}

	if !jsonOutput {
		out.PrintMessage("Disconnected")
	}
	return nil
}

// readEvents parses an SSE stream and calls fn for each complete event until
// fn returns false or the stream ends.
func readEvents(r io.Reader, fn func(event, data string) bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var currentEvent string
	var dataLines []string

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "event: "):
			currentEvent = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		case line == "":
			if currentEvent != "" {
				if !fn(currentEvent, strings.Join(dataLines, "\n")) {
					return nil
				}
			}
			currentEvent = ""
			dataLines = nil
		}
	}

	return scanner.Err()
}

func printEvent(out *Output, event, data string, jsonOutput bool) {
	now := time.Now()

	if jsonOutput {
		jsonData, _ := json.Marshal(SSEEvent{Time: now, Event: event, Data: data})
		_, _ = fmt.Fprintln(out.w, string(jsonData))
		return
	}

	timestamp := now.Format("2006-01-02 15:04:05")
	if event == game.EventStateUpdate {
		var update game.StateUpdate
		if err := json.Unmarshal([]byte(data), &update); err == nil && update.View != nil {
			out.printf("[%s] %s\n", timestamp, event)
			out.printView(update.View)
			return
		}
	}

	display := strings.ReplaceAll(data, "\n", " ")
	if len(display) > 100 {
		display = display[:100] + "..."
	}
	out.printf("[%s] %s: %s\n", timestamp, event, display)
}
