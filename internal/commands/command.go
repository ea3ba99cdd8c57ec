package commands

import (
	"fmt"
	"strconv"
	"strings"
)

type Type string

const (
	TypeAdd    Type = "add"
	TypeDone   Type = "done"
	TypeStart  Type = "start"
	TypeTodo   Type = "todo"
	TypeCheck  Type = "check"
	TypeReload Type = "reload"
	TypeHelp   Type = "help"

	TypeHistory    Type = "history"
	TypeSchedules  Type = "schedules"
	TypeUnschedule Type = "unschedule"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// AddArgs carries a task description line, e.g. "Review PR #2 *mon".
type AddArgs struct {
	Line string
}

// IndexArgs selects an entry by its 1-based position in the displayed list.
type IndexArgs struct {
	Index int
}

type TodoArgs struct {
	Description string
	Deadline    string
}

// HistoryArgs selects a task by list number; Index 0 means today's sessions.
type HistoryArgs struct {
	Index int
}

type Command struct {
	Type    Type
	Raw     string
	Add     *AddArgs
	Index   *IndexArgs
	Todo    *TodoArgs
	History *HistoryArgs
}

// Parse reads one line of input. Lines starting with '/' are commands;
// anything else is a task description to add.
func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "input is empty"}
	}
	if !strings.HasPrefix(raw, "/") {
		return Command{Type: TypeAdd, Raw: input, Add: &AddArgs{Line: raw}}, nil
	}
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeDone, TypeStart, TypeCheck, TypeUnschedule:
		return parseIndex(input, Type(head), args)
	case TypeTodo:
		return parseTodo(input, args)
	case TypeHistory:
		return parseHistory(input, args)
	case TypeReload, TypeHelp, TypeSchedules:
		return Command{Type: Type(head), Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	line := strings.TrimSpace(strings.Join(args, " "))
	if line == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a task description"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Line: line}}, nil
}

func parseIndex(raw string, typ Type, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires a list number", typ)}
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s: %q is not a list number", typ, args[0])}
	}
	return Command{Type: typ, Raw: raw, Index: &IndexArgs{Index: n}}, nil
}

func parseHistory(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{Type: TypeHistory, Raw: raw, History: &HistoryArgs{}}, nil
	}
	cmd, err := parseIndex(raw, TypeHistory, args)
	if err != nil {
		return Command{}, err
	}
	return Command{Type: TypeHistory, Raw: raw, History: &HistoryArgs{Index: cmd.Index.Index}}, nil
}

// parseTodo takes a trailing @date word as the deadline.
func parseTodo(raw string, args []string) (Command, error) {
	deadline := ""
	if n := len(args); n > 0 && strings.HasPrefix(args[n-1], "@") {
		deadline = args[n-1]
		args = args[:n-1]
	}
	desc := strings.TrimSpace(strings.Join(args, " "))
	if desc == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "todo requires a description"}
	}
	return Command{Type: TypeTodo, Raw: raw, Todo: &TodoArgs{Description: desc, Deadline: deadline}}, nil
}
