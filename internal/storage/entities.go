package storage

type TaskListFilter struct {
	Done *bool
	// ExcludeTodoTask hides the pseudo-task that collects sessions spent on todos.
	ExcludeTodoTask bool
	Limit           int
	Offset          int
}

type TodoListFilter struct {
	Done   *bool
	Limit  int
	Offset int
}

type SessionListFilter struct {
	TaskID int64
	Since  int64
	Limit  int
	Offset int
}

type ScheduledTaskListFilter struct {
	Done   *bool
	Limit  int
	Offset int
}

func Bool(v bool) *bool {
	return &v
}
