// Package console is the interactive terminal front end. It reads one command
// per line and drives a tutor.Tutor; every transition, including countdown
// expiry, runs on the goroutine that called Run.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/fractionmaster/fractionmaster/internal/countdown"
	"github.com/fractionmaster/fractionmaster/internal/i18n"
	"github.com/fractionmaster/fractionmaster/internal/tutor"
)

// warnSeconds is the remaining time at which a countdown warning is printed.
const warnSeconds = 10

var errQuit = errors.New("quit")

// Config holds the timer settings.
type Config struct {
	LevelSeconds int
	TestSeconds  int
	// Tick is the countdown interval, countdown.Second outside tests.
	Tick time.Duration
}

// Console is a line-oriented session over in and out.
type Console struct {
	tutor *tutor.Tutor
	tr    *i18n.Translator
	cfg   Config
	in    io.Reader
	out   io.Writer
	lines chan string
}

type menuItem struct {
	key   string
	label string
	run   func(ctx context.Context) error
}

// New creates a console. A zero Tick means countdown.Second.
func New(t *tutor.Tutor, tr *i18n.Translator, cfg Config, in io.Reader, out io.Writer) *Console {
	if cfg.Tick <= 0 {
		cfg.Tick = countdown.Second
	}
	return &Console{tutor: t, tr: tr, cfg: cfg, in: in, out: out}
}

// Run serves screens until the user quits, input ends or ctx is cancelled.
func (c *Console) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.lines = make(chan string)
	go c.scan(ctx)

	c.println(c.tr.T("Welcome"))
	for {
		var err error
		if c.tutor.LoggedIn() {
			err = c.dashboard(ctx)
		} else {
			err = c.welcome(ctx)
		}
		switch {
		case err == nil:
		case errors.Is(err, errQuit), errors.Is(err, io.EOF), errors.Is(err, context.Canceled):
			c.println(c.tr.T("Goodbye"))
			return nil
		default:
			return err
		}
	}
}

func (c *Console) scan(ctx context.Context) {
	defer close(c.lines)
	sc := bufio.NewScanner(c.in)
	for sc.Scan() {
		select {
		case c.lines <- strings.TrimSuffix(sc.Text(), "\r"):
		case <-ctx.Done():
			return
		}
	}
	if err := sc.Err(); err != nil {
		slog.Error("failed to read input", "error", err)
	}
}

func (c *Console) readLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-c.lines:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	}
}

// readTimed waits for a line or for cd to expire, whichever comes first. An
// expired countdown wins over a line that arrived in the same instant, and any
// input still queued at expiry is discarded.
func (c *Console) readTimed(ctx context.Context, cd *countdown.Countdown) (line string, expired bool, err error) {
	if timedOut(cd) {
		c.discardInput()
		return "", true, nil
	}
	for {
		select {
		case <-ctx.Done():
			return "", false, ctx.Err()
		case <-cd.Expired():
			c.discardInput()
			return "", true, nil
		case left := <-cd.Ticks():
			if left == warnSeconds {
				c.println(c.tr.Tp("SecondsLeft", left))
			}
		case line, ok := <-c.lines:
			if !ok {
				return "", false, io.EOF
			}
			if timedOut(cd) {
				c.discardInput()
				return "", true, nil
			}
			return strings.TrimSpace(line), false, nil
		}
	}
}

func timedOut(cd *countdown.Countdown) bool {
	select {
	case <-cd.Expired():
		return true
	default:
		return false
	}
}

// discardInput drops lines the scanner is already holding.
func (c *Console) discardInput() {
	for {
		select {
		case line, ok := <-c.lines:
			if !ok {
				return
			}
			slog.Debug("discarded input after timeout", "line", line)
		default:
			return
		}
	}
}

// stopCountdown stops cd and waits for its ticker to exit.
func stopCountdown(cd *countdown.Countdown) {
	cd.Stop()
	<-cd.Done()
}

func (c *Console) prompt(ctx context.Context, msgID string) (string, error) {
	line, err := c.promptRaw(ctx, msgID)
	return strings.TrimSpace(line), err
}

// promptRaw reads a line verbatim. Passwords keep their surrounding spaces.
func (c *Console) promptRaw(ctx context.Context, msgID string) (string, error) {
	fmt.Fprint(c.out, c.tr.T(msgID))
	return c.readLine(ctx)
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}

// menu prints items and runs the one whose key is entered.
func (c *Console) menu(ctx context.Context, items []menuItem) error {
	for _, it := range items {
		fmt.Fprintf(c.out, "  %s) %s\n", it.key, it.label)
	}
	choice, err := c.prompt(ctx, "PromptChoice")
	if err != nil {
		return err
	}
	for _, it := range items {
		if strings.EqualFold(choice, it.key) {
			return it.run(ctx)
		}
	}
	c.println(c.tr.Td("UnknownChoice", map[string]any{"Choice": choice}))
	return nil
}

// pick reads a 1-based number in [1, n]. ok is false for "b", an empty line
// or anything out of range.
func (c *Console) pick(ctx context.Context, msgID string, n int) (int, bool, error) {
	line, err := c.prompt(ctx, msgID)
	if err != nil {
		return 0, false, err
	}
	if line == "" || strings.EqualFold(line, "b") {
		return 0, false, nil
	}
	i, err := strconv.Atoi(line)
	if err != nil || i < 1 || i > n {
		c.println(c.tr.Td("UnknownChoice", map[string]any{"Choice": line}))
		return 0, false, nil
	}
	return i - 1, true, nil
}

func (c *Console) quit(context.Context) error {
	return errQuit
}

func formatClock(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
