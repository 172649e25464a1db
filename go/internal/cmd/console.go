package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/toondeboer/pokerkit/go/internal/lifecycle"
	"github.com/toondeboer/pokerkit/go/internal/timer"
)

const helpText = `commands:
  start | pause | toggle | reset     control the round
  duration <seconds>                 set the round length
  up | down | add | defaults         change the blind structure
  dismiss | next                     answer the expiry alert
  bg | fg | inactive                 simulate app visibility changes
  swipe                              dismiss the background surface externally
  status | help | quit`

var errUnknownCommand = errors.New("unknown command")

// console stands in for the mobile UI.
type console struct {
	services *Services
	out      io.Writer
}

func newConsole(services *Services, out io.Writer) *console {
	return &console{services: services, out: out}
}

func (c *console) run(ctx context.Context, lines <-chan string) error {
	fmt.Fprintln(c.out, helpText)
	c.printStatus()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := c.execute(ctx, line)
			if err != nil {
				fmt.Fprintf(c.out, "error: %v\n", err)
			}
			if quit {
				return nil
			}
		}
	}
}

// execute runs one command line and reports whether the console should exit.
func (c *console) execute(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	s := c.services
	var err error
	switch cmd := strings.ToLower(fields[0]); cmd {
	case "start", "resume":
		err = s.Engine.Start(ctx)
	case "pause":
		err = s.Engine.Pause(ctx)
	case "toggle":
		err = s.Engine.Toggle(ctx)
	case "reset":
		err = s.Controller.Reset(ctx)
	case "duration":
		if len(fields) != 2 {
			return false, errors.New("usage: duration <seconds>")
		}
		seconds, convErr := strconv.Atoi(fields[1])
		if convErr != nil {
			return false, fmt.Errorf("invalid duration %q: %w", fields[1], convErr)
		}
		err = s.Engine.Configure(ctx, seconds)
	case "up":
		s.Controller.IncreaseBlinds(ctx)
	case "down":
		s.Controller.DecreaseBlinds(ctx)
	case "add":
		level, addErr := s.Blinds.AppendLevel(ctx)
		if addErr != nil {
			return false, addErr
		}
		fmt.Fprintf(c.out, "added level %d / %d\n", level.Small, level.Big)
		s.Engine.Sync(ctx)
	case "defaults":
		err = s.Blinds.ResetToDefault(ctx)
		s.Engine.Sync(ctx)
	case "dismiss":
		s.Controller.DismissAlert(ctx)
	case "next":
		s.Controller.NextBlinds(ctx)
	case "bg", "fg", "inactive":
		state := map[string]lifecycle.AppState{
			"bg":       lifecycle.StateBackground,
			"fg":       lifecycle.StateActive,
			"inactive": lifecycle.StateInactive,
		}[cmd]
		err = s.Lifecycle.HandleAppStateChange(ctx, state)
	case "swipe":
		if id := s.Surface.ActivityID(); id != "" {
			s.Host.Dismiss(id)
			fmt.Fprintf(c.out, "surface %s dismissed\n", id)
		}
	case "status":
	case "help":
		fmt.Fprintln(c.out, helpText)
		return false, nil
	case "quit", "exit":
		return true, nil
	default:
		return false, fmt.Errorf("%w: %s", errUnknownCommand, fields[0])
	}

	if errors.Is(err, timer.ErrPersistence) {
		// the transition still applied in memory
		log.Warn().Err(err).Msg("state not saved")
		err = nil
	}
	c.printStatus()
	return false, err
}

func (c *console) printEvents(ctx context.Context, events <-chan timer.Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			switch event.Type {
			case timer.EventExpired:
				fmt.Fprintln(c.out, "*** time is up ***")
			case timer.EventTick:
				left := event.Snapshot.TimeLeftSeconds
				if left <= 10 || left%60 == 0 {
					fmt.Fprintf(c.out, "  %s\n", formatClock(left))
				}
			}
		}
	}
}

func (c *console) printStatus() {
	s := c.services
	snap := s.Engine.Snapshot()
	current := s.Blinds.Current()

	next := "-"
	if level, ok := s.Blinds.Next(); ok {
		next = fmt.Sprintf("%d / %d", level.Small, level.Big)
	}
	alert := ""
	if s.Controller.AlertPending() {
		alert = "  [ALERT: dismiss | next]"
	}
	surfaceID := s.Surface.ActivityID()
	if surfaceID == "" {
		surfaceID = "none"
	}

	fmt.Fprintf(c.out, "[%s] %s of %s  level %d: %d / %d  next: %s  surface: %s  app: %s%s\n",
		snap.Status,
		formatClock(snap.TimeLeftSeconds),
		formatClock(snap.DurationSeconds),
		s.Blinds.Index()+1,
		current.Small,
		current.Big,
		next,
		surfaceID,
		s.Lifecycle.State(),
		alert,
	)
}

func formatClock(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
