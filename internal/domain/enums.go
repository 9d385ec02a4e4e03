package domain

type TaskStatus string

const (
	TaskTodo    TaskStatus = "todo"
	TaskDone    TaskStatus = "done"
	TaskSkipped TaskStatus = "skipped"
)

// ValidTaskStatuses is the canonical set of accepted task status strings.
var ValidTaskStatuses = map[string]bool{
	"todo": true, "done": true, "skipped": true,
}
