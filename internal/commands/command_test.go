package commands

import (
	"errors"
	"testing"
)

func TestParseSupportedCommands(t *testing.T) {
	cases := []struct {
		in       string
		typeWant Type
	}{
		{"Review PR #2 *mon", TypeAdd},
		{"/add Review PR #2", TypeAdd},
		{"/done 3", TypeDone},
		{"/START 1", TypeStart},
		{"/todo buy milk @+1", TypeTodo},
		{"/check 2", TypeCheck},
		{"/reload", TypeReload},
		{"/help", TypeHelp},
		{"/history", TypeHistory},
		{"/history 2", TypeHistory},
		{"/schedules", TypeSchedules},
		{"/unschedule 1", TypeUnschedule},
	}

	for _, tc := range cases {
		cmd, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if cmd.Type != tc.typeWant {
			t.Fatalf("parse %q type = %s, want %s", tc.in, cmd.Type, tc.typeWant)
		}
	}
}

func TestParsePlainLineKeepsText(t *testing.T) {
	cmd, err := Parse("  Task title. #3 @Mon *m =. ^parent title^ ")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Add.Line != "Task title. #3 @Mon *m =. ^parent title^" {
		t.Fatalf("unexpected line: %q", cmd.Add.Line)
	}
}

func TestParseTodoDeadline(t *testing.T) {
	cmd, err := Parse("/todo renew passport @6-15")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Todo.Description != "renew passport" || cmd.Todo.Deadline != "@6-15" {
		t.Fatalf("unexpected todo args: %+v", cmd.Todo)
	}

	cmd, err = Parse("/todo call mom")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Todo.Deadline != "" {
		t.Fatalf("unexpected deadline: %q", cmd.Todo.Deadline)
	}
}

func TestParseInvalidArguments(t *testing.T) {
	for _, in := range []string{"/done", "/done x", "/start 0", "/check 1 2", "/todo @+1", "/add", "/history x", "/history 0", "/unschedule"} {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeInvalidArgument {
			t.Fatalf("parse %q: expected invalid argument, got %v", in, err)
		}
	}
}

func TestParseUnknownCommand(t *testing.T) {
	_, err := Parse("/unknown do x")
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeUnknownCommand {
		t.Fatalf("expected unknown command error, got %v", err)
	}
	if _, err := Parse("   "); !errors.As(err, &ce) || ce.Code != ErrCodeEmptyInput {
		t.Fatalf("expected empty input error, got %v", err)
	}
}

func TestExecuteDispatch(t *testing.T) {
	cmd, err := Parse("/done 2")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	called := false
	res, err := Execute(cmd, Handlers{
		Done: func(a IndexArgs) (Result, error) {
			called = true
			if a.Index != 2 {
				t.Fatalf("unexpected index: %d", a.Index)
			}
			return Result{Message: "ok"}, nil
		},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !called || res.Message != "ok" {
		t.Fatalf("unexpected execute result: called=%v res=%+v", called, res)
	}
}

func TestExecuteHandlerMissing(t *testing.T) {
	cmd, err := Parse("/reload")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	_, err = Execute(cmd, Handlers{})
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeHandlerMissing {
		t.Fatalf("expected handler missing error, got %v", err)
	}
}

func TestHistoryArgs(t *testing.T) {
	cmd, err := Parse("/history")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.History == nil || cmd.History.Index != 0 {
		t.Fatalf("expected today's history: %+v", cmd.History)
	}

	cmd, err = Parse("/history 3")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	var got HistoryArgs
	_, err = Execute(cmd, Handlers{
		History: func(a HistoryArgs) (Result, error) {
			got = a
			return Result{}, nil
		},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if got.Index != 3 {
		t.Fatalf("unexpected history args: %+v", got)
	}
}
