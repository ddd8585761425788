package todo

import (
	"context"
	"encoding/json"

	"github.com/ait-tooling/ait/internal/capability"
)

// ListTools exposes list management to the model as "TodoListStore".
type ListTools struct {
	store *Store
}

type addListArgs struct {
	Name        string `json:"name" validate:"required" jsonschema:"description=Name of the new list"`
	Description string `json:"description,omitempty" jsonschema:"description=Optional short description"`
}

type listIDArgs struct {
	ListID string `json:"listId" validate:"required" jsonschema:"description=ID of the todo list"`
}

func (t *ListTools) GetLists(_ context.Context, _ capability.NoArgs) ([]List, error) {
	return t.store.Lists(), nil
}

func (t *ListTools) AddList(_ context.Context, args addListArgs) (List, error) {
	return t.store.AddList(args.Name, args.Description), nil
}

func (t *ListTools) DeleteList(_ context.Context, args listIDArgs) error {
	return t.store.DeleteList(args.ListID)
}

// NewListCapability returns the "TodoListStore" capability backed by store.
func NewListCapability(store *Store) *capability.Capability {
	t := &ListTools{store: store}
	return &capability.Capability{
		ClassName: "TodoListStore",
		Instance:  t,
		Tools: []capability.Tool{
			capability.Method("getLists", "Returns all todo lists with their ids, names and descriptions.", (*ListTools).GetLists),
			capability.Method("addList", "Creates a new todo list and returns it.", (*ListTools).AddList),
			capability.Action("deleteList", "Deletes a todo list and all of its todos.", (*ListTools).DeleteList),
		},
		State: func() string {
			return "TODO LISTS: " + mustJSON(store.Lists())
		},
	}
}

// TodoTools exposes the items of the lists to the model as "TodoStore".
type TodoTools struct {
	store *Store
}

type addTodoArgs struct {
	ListID string `json:"listId" validate:"required" jsonschema:"description=ID of the list to add to"`
	Title  string `json:"title" validate:"required" jsonschema:"description=Text of the todo"`
}

type todoIDArgs struct {
	TodoID string `json:"todoId" validate:"required" jsonschema:"description=ID of the todo item"`
}

type updateTodoArgs struct {
	TodoID string `json:"todoId" validate:"required" jsonschema:"description=ID of the todo item"`
	Title  string `json:"title" validate:"required" jsonschema:"description=New text of the todo"`
}

type filterArgs struct {
	Filter Filter `json:"filter" validate:"required,oneof=all active completed" jsonschema:"enum=all,enum=active,enum=completed"`
}

func (t *TodoTools) GetTodos(_ context.Context, args listIDArgs) ([]Todo, error) {
	return t.store.Todos(args.ListID)
}

func (t *TodoTools) AddTodo(_ context.Context, args addTodoArgs) (Todo, error) {
	return t.store.AddTodo(args.ListID, args.Title)
}

func (t *TodoTools) ToggleTodo(_ context.Context, args todoIDArgs) (Todo, error) {
	return t.store.ToggleTodo(args.TodoID)
}

func (t *TodoTools) UpdateTodo(_ context.Context, args updateTodoArgs) (Todo, error) {
	return t.store.RenameTodo(args.TodoID, args.Title)
}

func (t *TodoTools) DeleteTodo(_ context.Context, args todoIDArgs) error {
	return t.store.DeleteTodo(args.TodoID)
}

func (t *TodoTools) SetFilter(_ context.Context, args filterArgs) error {
	t.store.SetFilter(args.Filter)
	return nil
}

// NewTodoCapability returns the "TodoStore" capability backed by store.
func NewTodoCapability(store *Store) *capability.Capability {
	t := &TodoTools{store: store}
	return &capability.Capability{
		ClassName: "TodoStore",
		Instance:  t,
		Tools: []capability.Tool{
			capability.Method("getTodos", "Returns the todos of a list that match the current filter.", (*TodoTools).GetTodos),
			capability.Method("addTodo", "Adds a todo to a list.", (*TodoTools).AddTodo),
			capability.Method("toggleTodo", "Toggles the completion state of a todo.", (*TodoTools).ToggleTodo),
			capability.Method("updateTodo", "Changes the text of a todo.", (*TodoTools).UpdateTodo),
			capability.Action("deleteTodo", "Deletes a todo.", (*TodoTools).DeleteTodo),
			capability.Action("setFilter", "Sets which todos are shown: all, active or completed.", (*TodoTools).SetFilter),
		},
		MetaInfo: func() string {
			return "TodoStore manages the items of the lists of TodoListStore; use list ids from its state."
		},
		State: func() string {
			return "TODO STATS: " + mustJSON(map[string]any{
				"filter": store.Filter(),
				"lists":  store.Stats(),
			})
		},
	}
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}
