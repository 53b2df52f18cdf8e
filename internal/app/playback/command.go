package playback

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
)

// Command is a user command for a live session.
type Command int

const (
	CommandUnknown Command = iota
	CommandSkip
	CommandPause
	CommandReplay
	CommandQuit
)

// String returns the string representation of the command.
func (c Command) String() string {
	switch c {
	case CommandSkip:
		return "skip"
	case CommandPause:
		return "pause"
	case CommandReplay:
		return "replay"
	case CommandQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// ParseCommand maps an input token to a command.
// Only the exact tokens "s", "p", "r" and "q" are recognized.
func ParseCommand(token string) Command {
	switch token {
	case "s":
		return CommandSkip
	case "p":
		return CommandPause
	case "r":
		return CommandReplay
	case "q":
		return CommandQuit
	default:
		return CommandUnknown
	}
}

// Prompt is printed before each command read by ReaderSource.
const Prompt = "Commands: [s]kip, [p]ause, [r]eplay, [q]uit: "

// CommandSource yields the next user command, blocking until one is available.
// It returns io.EOF when no more commands will arrive.
type CommandSource interface {
	Next(ctx context.Context) (string, error)
}

// maxCommandLine is the longest line ReaderSource keeps. Longer lines are
// discarded and yield an empty token.
const maxCommandLine = 4096

// ReaderSource reads one command per line from an io.Reader.
type ReaderSource struct {
	reader *bufio.Reader
	prompt io.Writer
}

// NewReaderSource creates a source reading lines from r.
// If prompt is non-nil, Prompt is written to it before each read.
func NewReaderSource(r io.Reader, prompt io.Writer) *ReaderSource {
	return &ReaderSource{
		reader: bufio.NewReaderSize(r, maxCommandLine),
		prompt: prompt,
	}
}

// Next returns the next line with surrounding whitespace removed.
// The read itself is not interruptible; ctx is checked before reading.
func (s *ReaderSource) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.prompt != nil {
		fmt.Fprint(s.prompt, Prompt)
	}

	var line []byte
	tooLong := false
	for {
		chunk, err := s.reader.ReadSlice('\n')
		if !tooLong {
			line = append(line, chunk...)
			if len(line) > maxCommandLine {
				tooLong = true
				line = nil
			}
		}
		switch {
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			if len(line) == 0 && !tooLong {
				return "", io.EOF
			}
		case err != nil:
			return "", err
		}
		break
	}

	if tooLong {
		return "", nil
	}
	return strings.TrimSpace(string(line)), nil
}

// SliceSource yields a fixed sequence of commands, then io.EOF.
type SliceSource struct {
	tokens []string
	pos    int
}

// NewSliceSource creates a source over the given tokens.
func NewSliceSource(tokens ...string) *SliceSource {
	return &SliceSource{tokens: tokens}
}

// Next returns the next token.
func (s *SliceSource) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.pos >= len(s.tokens) {
		return "", io.EOF
	}
	token := s.tokens[s.pos]
	s.pos++
	return token, nil
}
