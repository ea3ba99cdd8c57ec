package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add    func(AddArgs) (Result, error)
	Done   func(IndexArgs) (Result, error)
	Start  func(IndexArgs) (Result, error)
	Todo   func(TodoArgs) (Result, error)
	Check  func(IndexArgs) (Result, error)
	Reload func() (Result, error)
	Help   func() (Result, error)

	History    func(HistoryArgs) (Result, error)
	Schedules  func() (Result, error)
	Unschedule func(IndexArgs) (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Add(*cmd.Add)
	case TypeDone:
		if handlers.Done == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Done(*cmd.Index)
	case TypeStart:
		if handlers.Start == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Start(*cmd.Index)
	case TypeTodo:
		if handlers.Todo == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Todo(*cmd.Todo)
	case TypeCheck:
		if handlers.Check == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Check(*cmd.Index)
	case TypeReload:
		if handlers.Reload == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Reload()
	case TypeHelp:
		if handlers.Help == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Help()
	case TypeHistory:
		if handlers.History == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.History(*cmd.History)
	case TypeSchedules:
		if handlers.Schedules == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Schedules()
	case TypeUnschedule:
		if handlers.Unschedule == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Unschedule(*cmd.Index)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func missing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}
