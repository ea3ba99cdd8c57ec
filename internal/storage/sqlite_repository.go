package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sandeepkv93/tomatod/internal/model"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// OpenSQLite opens (or creates) the database at path and applies migrations.
// The connection pool is limited to a single connection: one process owns
// the file and writes are never interleaved.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

const taskColumns = `id, description, tomato, long_session, done, deadline, complete_time, parent`

func (r *SQLiteRepository) CreateTask(ctx context.Context, in model.Task) (model.Task, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO task (description, tomato, long_session, done, deadline, complete_time, parent)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.Description, in.Tomato, boolInt(in.LongSession), boolInt(in.Done), in.Deadline, in.CompleteTime, nullID(in.Parent),
	)
	if err != nil {
		return model.Task{}, fmt.Errorf("insert task: %w", err)
	}
	in.ID, err = res.LastInsertId()
	if err != nil {
		return model.Task{}, err
	}
	return in, nil
}

func (r *SQLiteRepository) GetTask(ctx context.Context, id int64) (model.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM task WHERE id = ?`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, err
	}
	return task, nil
}

func (r *SQLiteRepository) SetTaskDone(ctx context.Context, id int64, done bool, completeTime int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE task SET done = ?, complete_time = ? WHERE id = ?`,
		boolInt(done), completeTime, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListTasks(ctx context.Context, filter TaskListFilter) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM task`
	clauses := make([]string, 0, 2)
	args := make([]any, 0, 3)
	if filter.Done != nil {
		clauses = append(clauses, "done = ?")
		args = append(args, boolInt(*filter.Done))
	}
	if filter.ExcludeTodoTask {
		clauses = append(clauses, "description <> ''")
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY id ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Task, 0)
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

// EnsureTodoTask returns the pseudo-task that sessions spent on todos are
// recorded against, creating it on first use. It is the only task with an
// empty description; the insert is a single statement so concurrent callers
// share one row.
func (r *SQLiteRepository) EnsureTodoTask(ctx context.Context) (model.Task, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO task (description, tomato)
		SELECT '', ? WHERE NOT EXISTS (SELECT 1 FROM task WHERE description = '')`,
		model.MaxTomato,
	)
	if err != nil {
		return model.Task{}, fmt.Errorf("insert todo task: %w", err)
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM task WHERE description = '' ORDER BY id LIMIT 1`)
	return scanTask(row)
}

func (r *SQLiteRepository) CreateTodo(ctx context.Context, in model.Todo) (model.Todo, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO todo (description, deadline, create_time, done, complete_time)
		VALUES (?, ?, ?, ?, ?)`,
		in.Description, in.Deadline, in.CreateTime, boolInt(in.Done), in.CompleteTime,
	)
	if err != nil {
		return model.Todo{}, fmt.Errorf("insert todo: %w", err)
	}
	in.ID, err = res.LastInsertId()
	if err != nil {
		return model.Todo{}, err
	}
	return in, nil
}

func (r *SQLiteRepository) GetTodo(ctx context.Context, id int64) (model.Todo, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, description, deadline, create_time, done, complete_time
		FROM todo WHERE id = ?`, id)
	item, err := scanTodo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Todo{}, ErrNotFound
		}
		return model.Todo{}, err
	}
	return item, nil
}

func (r *SQLiteRepository) SetTodoDone(ctx context.Context, id int64, done bool, completeTime int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE todo SET done = ?, complete_time = ? WHERE id = ?`,
		boolInt(done), completeTime, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListTodos(ctx context.Context, filter TodoListFilter) ([]model.Todo, error) {
	query := `SELECT id, description, deadline, create_time, done, complete_time FROM todo`
	args := make([]any, 0, 3)
	if filter.Done != nil {
		query += ` WHERE done = ?`
		args = append(args, boolInt(*filter.Done))
	}
	query += ` ORDER BY id ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Todo, 0)
	for rows.Next() {
		item, scanErr := scanTodo(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateSession(ctx context.Context, in model.Session) (model.Session, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO session (task, started_at, ended_at, note)
		VALUES (?, ?, ?, ?)`,
		in.TaskID, in.Start, in.End, in.Note,
	)
	if err != nil {
		return model.Session{}, fmt.Errorf("insert session: %w", err)
	}
	in.ID, err = res.LastInsertId()
	if err != nil {
		return model.Session{}, err
	}
	return in, nil
}

func (r *SQLiteRepository) ListSessions(ctx context.Context, filter SessionListFilter) ([]model.Session, error) {
	query := `SELECT id, task, started_at, ended_at, note FROM session`
	clauses := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if filter.TaskID != 0 {
		clauses = append(clauses, "task = ?")
		args = append(args, filter.TaskID)
	}
	if filter.Since != 0 {
		clauses = append(clauses, "started_at >= ?")
		args = append(args, filter.Since)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY started_at ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Session, 0)
	for rows.Next() {
		var s model.Session
		if err := rows.Scan(&s.ID, &s.TaskID, &s.Start, &s.End, &s.Note); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CountSessionsSince maps task id to the number of sessions started at or
// after since.
func (r *SQLiteRepository) CountSessionsSince(ctx context.Context, since int64) (map[int64]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT task, COUNT(*) FROM session WHERE started_at >= ? GROUP BY task`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]int)
	for rows.Next() {
		var id int64
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}

const scheduledTaskColumns = `id, once, pattern, next_event, last_gen, done, title, tomato, type`

func (r *SQLiteRepository) CreateScheduledTask(ctx context.Context, in model.ScheduledTask) (model.ScheduledTask, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO repeated_task (once, pattern, next_event, last_gen, done, title, tomato, type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Once, in.Pattern, in.NextEvent, in.LastGen, boolInt(in.Done), in.Title, in.Tomato, string(in.Type),
	)
	if err != nil {
		return model.ScheduledTask{}, fmt.Errorf("insert scheduled task: %w", err)
	}
	in.ID, err = res.LastInsertId()
	if err != nil {
		return model.ScheduledTask{}, err
	}
	return in, nil
}

func (r *SQLiteRepository) GetScheduledTask(ctx context.Context, id int64) (model.ScheduledTask, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+scheduledTaskColumns+` FROM repeated_task WHERE id = ?`, id)
	item, err := scanScheduledTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ScheduledTask{}, ErrNotFound
		}
		return model.ScheduledTask{}, err
	}
	return item, nil
}

// SaveScheduledTask writes only the named fields of in. With no fields it
// writes every column except the id.
//
// last_gen only moves forward: when it is written, the row is updated only
// while the stored value is before in.LastGen, and model.ErrAlreadyExamined
// is returned otherwise. Two writers examining the same day therefore cannot
// both succeed.
func (r *SQLiteRepository) SaveScheduledTask(ctx context.Context, in model.ScheduledTask, fields ...string) error {
	values := scheduledTaskValues(in)
	if len(fields) == 0 {
		fields = scheduledTaskFieldOrder
	}

	sets := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+2)
	guarded := false
	for _, f := range fields {
		v, ok := values[f]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownField, f)
		}
		sets = append(sets, f+" = ?")
		args = append(args, v)
		guarded = guarded || f == model.FieldLastGen
	}

	query := `UPDATE repeated_task SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	args = append(args, in.ID)
	if guarded {
		query += ` AND last_gen < ?`
		args = append(args, in.LastGen)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("save scheduled task %d: %w", in.ID, err)
	}
	err = checkRowsAffected(res)
	if !guarded || !errors.Is(err, ErrNotFound) {
		return err
	}
	if _, getErr := r.GetScheduledTask(ctx, in.ID); getErr != nil {
		return getErr
	}
	return model.ErrAlreadyExamined
}

func (r *SQLiteRepository) DeleteScheduledTask(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM repeated_task WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListScheduledTasks(ctx context.Context, filter ScheduledTaskListFilter) ([]model.ScheduledTask, error) {
	query := `SELECT ` + scheduledTaskColumns + ` FROM repeated_task`
	args := make([]any, 0, 3)
	if filter.Done != nil {
		query += ` WHERE done = ?`
		args = append(args, boolInt(*filter.Done))
	}
	query += ` ORDER BY id ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.ScheduledTask, 0)
	for rows.Next() {
		item, scanErr := scanScheduledTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

var scheduledTaskFieldOrder = []string{
	model.FieldOnce,
	model.FieldPattern,
	model.FieldNextEvent,
	model.FieldLastGen,
	model.FieldDone,
	model.FieldTitle,
	model.FieldTomato,
	model.FieldType,
}

func scheduledTaskValues(in model.ScheduledTask) map[string]any {
	return map[string]any{
		model.FieldOnce:      in.Once,
		model.FieldPattern:   in.Pattern,
		model.FieldNextEvent: in.NextEvent,
		model.FieldLastGen:   in.LastGen,
		model.FieldDone:      boolInt(in.Done),
		model.FieldTitle:     in.Title,
		model.FieldTomato:    in.Tomato,
		model.FieldType:      string(in.Type),
	}
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func nullID(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	}
	if offset > 0 {
		if limit <= 0 {
			sql += " LIMIT -1"
		}
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (model.Task, error) {
	var out model.Task
	var long, done int
	var parent sql.NullInt64
	if err := s.Scan(&out.ID, &out.Description, &out.Tomato, &long, &done, &out.Deadline, &out.CompleteTime, &parent); err != nil {
		return model.Task{}, err
	}
	out.LongSession = long == 1
	out.Done = done == 1
	if parent.Valid {
		id := parent.Int64
		out.Parent = &id
	}
	return out, nil
}

func scanTodo(s scanner) (model.Todo, error) {
	var out model.Todo
	var done int
	if err := s.Scan(&out.ID, &out.Description, &out.Deadline, &out.CreateTime, &done, &out.CompleteTime); err != nil {
		return model.Todo{}, err
	}
	out.Done = done == 1
	return out, nil
}

func scanScheduledTask(s scanner) (model.ScheduledTask, error) {
	var out model.ScheduledTask
	var done int
	var typ string
	if err := s.Scan(&out.ID, &out.Once, &out.Pattern, &out.NextEvent, &out.LastGen, &done, &out.Title, &out.Tomato, &typ); err != nil {
		return model.ScheduledTask{}, err
	}
	out.Done = done == 1
	out.Type = model.TaskType(typ)
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
