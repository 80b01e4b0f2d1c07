// Package console is a line-oriented front end over the room store for
// terminals where the full-screen UI is not wanted.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"cozy-chat/internal/chat"
	"cozy-chat/internal/logging"
	"cozy-chat/internal/media"
	"cozy-chat/internal/models"
)

const helpText = `Commands:
  /new              create a room and switch to it
  /rooms            list rooms
  /switch <n|id>    switch to a room
  /delete [n|id]    delete a room (default: the active one)
  /image <path> [text]  send an image with an optional caption
  /history          show the active room's messages
  /help             show this help
  /quit             leave`

// Console reads commands and messages from in and writes the conversation to
// out. It owns the store for as long as Run is executing.
type Console struct {
	store *chat.Store
	in    io.Reader
	out   io.Writer
	delay time.Duration

	you       func(a ...interface{}) string
	assistant func(a ...interface{}) string
	dim       func(a ...interface{}) string
	warn      func(a ...interface{}) string
}

func New(store *chat.Store, in io.Reader, out io.Writer, delay time.Duration) *Console {
	return &Console{
		store:     store,
		in:        in,
		out:       out,
		delay:     delay,
		you:       color.New(color.FgGreen, color.Bold).SprintFunc(),
		assistant: color.New(color.FgCyan, color.Bold).SprintFunc(),
		dim:       color.New(color.FgHiBlack).SprintFunc(),
		warn:      color.New(color.FgYellow).SprintFunc(),
	}
}

// Run loops until in is exhausted, /quit is entered or ctx is cancelled.
func (c *Console) Run(ctx context.Context) error {
	fmt.Fprintln(c.out, c.you("Cozy Chat")+" - Your friendly AI companion")
	fmt.Fprintln(c.out, c.dim("Type a message and press Enter. /help lists commands."))
	fmt.Fprintln(c.out)
	c.printRoom(c.store.ActiveRoom())

	// Stops the reader goroutine however Run returns
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines, readErr := c.readLines(ctx)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(c.out, c.you("You: "))
		var raw string
		select {
		case <-ctx.Done():
			fmt.Fprintln(c.out)
			return ctx.Err()
		case err := <-readErr:
			fmt.Fprintln(c.out)
			return err
		case raw = <-lines:
		}

		// A line typed after an interrupt is not sent
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(raw)

		if line == "" {
			continue
		}
		if line == "exit" || line == "/quit" {
			return nil
		}

		if strings.HasPrefix(line, "/") {
			if err := c.command(ctx, line); err != nil {
				return err
			}
			continue
		}

		if err := c.send(ctx, line, ""); err != nil {
			return err
		}
	}
}

// readLines scans in on its own goroutine so a blocked read never holds up
// cancellation. readErr receives the scanner's error (nil at EOF) after the
// last line has been taken.
func (c *Console) readLines(ctx context.Context) (<-chan string, <-chan error) {
	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	return lines, readErr
}

func (c *Console) command(ctx context.Context, line string) error {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/help":
		fmt.Fprintln(c.out, helpText)

	case "/new":
		room := c.store.CreateRoom()
		c.printRoom(room)

	case "/rooms":
		c.printRooms()

	case "/switch":
		id, ok := c.resolve(arg)
		if !ok {
			c.warnf("No room %q. Use /rooms to list them.", arg)
			return nil
		}
		if err := c.store.SetActiveRoom(id); err != nil {
			c.warnf("Cannot switch: %v", err)
			return nil
		}
		c.printRoom(c.store.ActiveRoom())

	case "/delete":
		id := c.store.ActiveRoomID()
		if arg != "" {
			var ok bool
			if id, ok = c.resolve(arg); !ok {
				c.warnf("No room %q. Use /rooms to list them.", arg)
				return nil
			}
		}
		if err := c.store.DeleteRoom(id); err != nil {
			if errors.Is(err, chat.ErrLastRoom) {
				c.warnf("The last room cannot be deleted.")
				return nil
			}
			c.warnf("Cannot delete: %v", err)
			return nil
		}
		fmt.Fprintln(c.out, c.dim("Room deleted."))
		c.printRoom(c.store.ActiveRoom())

	case "/image":
		path, caption, _ := strings.Cut(arg, " ")
		if path == "" {
			c.warnf("Usage: /image <path> [text]")
			return nil
		}
		if !media.IsImagePath(path) {
			c.warnf("%s is not a supported image.", path)
			return nil
		}
		return c.send(ctx, strings.TrimSpace(caption), path)

	case "/history":
		c.printMessages(c.store.ActiveRoom())

	default:
		c.warnf("Unknown command %s. /help lists commands.", name)
	}
	return nil
}

// send runs one turn, holding the reply back for the configured delay
func (c *Console) send(ctx context.Context, text, image string) error {
	pending, err := c.store.BeginTurn(c.store.ActiveRoomID(), text, image)
	if err != nil {
		c.warnf("Not sent: %v", err)
		return nil
	}

	if c.delay > 0 {
		fmt.Fprintln(c.out, c.dim("Assistant is typing..."))
		timer := time.NewTimer(c.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	reply, err := c.store.CompleteTurn(pending)
	if err != nil {
		logging.Error("Dropped reply for room %s: %v", pending.RoomID, err)
		return nil
	}
	c.printMessage(reply)
	fmt.Fprintln(c.out)
	return nil
}

// resolve accepts a 1-based position from /rooms or a room id
func (c *Console) resolve(arg string) (string, bool) {
	if arg == "" {
		return "", false
	}
	rooms := c.store.Rooms()
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(rooms) {
			return "", false
		}
		return rooms[n-1].ID, true
	}
	if _, ok := c.store.Room(arg); ok {
		return arg, true
	}
	return "", false
}

func (c *Console) printRooms() {
	for i, room := range c.store.Rooms() {
		marker := " "
		if room.ID == c.store.ActiveRoomID() {
			marker = "*"
		}
		fmt.Fprintf(c.out, "%s %d. %s %s\n", marker, i+1, room.Name, c.dim(room.Preview))
	}
}

func (c *Console) printRoom(room models.Room) {
	fmt.Fprintln(c.out, c.dim("== "+room.Name+" =="))
	if last, ok := room.LastMessage(); ok {
		c.printMessage(last)
	}
	fmt.Fprintln(c.out)
}

func (c *Console) printMessages(room models.Room) {
	fmt.Fprintln(c.out, c.dim("== "+room.Name+" =="))
	for _, msg := range room.Messages {
		c.printMessage(msg)
	}
	fmt.Fprintln(c.out)
}

func (c *Console) printMessage(msg models.Message) {
	label := c.assistant("Assistant:")
	if msg.IsUser() {
		label = c.you("You:")
	}
	fmt.Fprintf(c.out, "%s %s %s\n", c.dim("["+msg.DisplayTime+"]"), label, msg.Content)
	if msg.HasImage() {
		fmt.Fprintf(c.out, "    %s\n", c.dim("[image] "+media.DisplayName(msg.Image)))
	}
}

func (c *Console) warnf(format string, v ...interface{}) {
	fmt.Fprintln(c.out, c.warn(fmt.Sprintf(format, v...)))
}
