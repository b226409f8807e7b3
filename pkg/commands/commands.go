// Package commands resolves slash-command input into a tagged variant
// once at the boundary. The service matches the variant exhaustively;
// nothing downstream re-parses strings.
package commands

import (
	"fmt"
	"strings"
)

// Kind enumerates the recognised console commands.
type Kind int

const (
	Unknown Kind = iota
	Clear
	Duplicate
	Invite
	Kick
	Lock
	Rename
	Retitle
	Share
	Show
)

// Command is one parsed slash command. Arg carries the joined remainder
// for the variants that take one (invite/kick/name/title).
type Command struct {
	Kind Kind
	Arg  string
}

// ErrNotCommand is returned for input that does not start with "/".
var ErrNotCommand = fmt.Errorf("not a command")

// Parse resolves a raw input line into a Command. Unknown verbs return
// Unknown plus an error naming the input; callers warn and ignore.
func Parse(input string) (Command, error) {
	if !strings.HasPrefix(input, "/") {
		return Command{}, ErrNotCommand
	}
	parts := strings.Split(strings.TrimPrefix(input, "/"), " ")
	verb := parts[0]
	arg := strings.Join(parts[1:], " ")
	switch verb {
	case "clear":
		return Command{Kind: Clear}, nil
	case "duplicate":
		return Command{Kind: Duplicate}, nil
	case "invite":
		return Command{Kind: Invite, Arg: arg}, nil
	case "kick":
		return Command{Kind: Kick, Arg: arg}, nil
	case "lock":
		return Command{Kind: Lock}, nil
	case "name":
		return Command{Kind: Rename, Arg: arg}, nil
	case "title":
		return Command{Kind: Retitle, Arg: arg}, nil
	case "share":
		return Command{Kind: Share}, nil
	case "show":
		return Command{Kind: Show}, nil
	default:
		return Command{Kind: Unknown}, fmt.Errorf("'/%s' is not a recognised command", strings.Join(parts, " "))
	}
}
