package todo

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ait-tooling/ait/internal/capability"
)

func shoppingList(t *testing.T, s *Store) List {
	t.Helper()
	for _, l := range s.Lists() {
		if l.Name == "Shopping List" {
			return l
		}
	}
	t.Fatal("no shopping list")
	return List{}
}

func TestNewDemoStore(t *testing.T) {
	s := NewDemoStore()

	lists := s.Lists()
	require.Len(t, lists, 3)
	shop := shoppingList(t, s)

	todos, err := s.Todos(shop.ID)
	require.NoError(t, err)
	var titles []string
	for _, td := range todos {
		titles = append(titles, td.Title)
	}
	assert.Equal(t, []string{"Milk", "Bread", "Eggs"}, titles)
}

func TestStore_FilterAndStats(t *testing.T) {
	s := NewDemoStore()
	shop := shoppingList(t, s)
	todos, _ := s.Todos(shop.ID)

	_, err := s.ToggleTodo(todos[0].ID)
	require.NoError(t, err)

	assert.Equal(t, Stats{Total: 3, Completed: 1, Active: 2}, s.Stats()[shop.ID])

	s.SetFilter(FilterCompleted)
	done, err := s.Todos(shop.ID)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "Milk", done[0].Title)

	s.SetFilter(FilterActive)
	active, _ := s.Todos(shop.ID)
	assert.Len(t, active, 2)
}

func TestStore_Errors(t *testing.T) {
	s := NewStore()

	_, err := s.AddTodo("missing", "x")
	assert.ErrorIs(t, err, ErrListNotFound)
	assert.ErrorIs(t, s.DeleteList("missing"), ErrListNotFound)
	assert.ErrorIs(t, s.DeleteTodo("missing"), ErrTodoNotFound)
	_, err = s.ToggleTodo("missing")
	assert.ErrorIs(t, err, ErrTodoNotFound)
}

func TestStore_DeleteListDropsTodos(t *testing.T) {
	s := NewDemoStore()
	shop := shoppingList(t, s)

	require.NoError(t, s.DeleteList(shop.ID))

	assert.Len(t, s.Lists(), 2)
	_, ok := s.Stats()[shop.ID]
	assert.False(t, ok)
	for _, st := range s.Stats() {
		assert.Equal(t, 3, st.Total)
	}
}

func TestCapabilities_Descriptors(t *testing.T) {
	s := NewStore()
	reg := capability.NewRegistry()
	reg.Register(NewListCapability(s))
	reg.Register(NewTodoCapability(s))

	var names []string
	for _, d := range reg.Descriptors() {
		names = append(names, d.Function.Name)
	}
	assert.Equal(t, []string{
		"TodoListStore___getLists", "TodoListStore___addList", "TodoListStore___deleteList",
		"TodoStore___getTodos", "TodoStore___addTodo", "TodoStore___toggleTodo",
		"TodoStore___updateTodo", "TodoStore___deleteTodo", "TodoStore___setFilter",
	}, names)
}

func TestCapabilities_Invoke(t *testing.T) {
	s := NewStore()
	lists := NewListCapability(s)
	todos := NewTodoCapability(s)
	ctx := context.Background()

	addList, _ := lists.Lookup("addList")
	v, err := addList.Invoke(ctx, lists.Instance, json.RawMessage(`{"name":"Groceries"}`))
	require.NoError(t, err)
	list := v.(List)

	addTodo, _ := todos.Lookup("addTodo")
	_, err = addTodo.Invoke(ctx, todos.Instance, json.RawMessage(`{"listId":"`+list.ID+`","title":"Milk"}`))
	require.NoError(t, err)

	setFilter, _ := todos.Lookup("setFilter")
	_, err = setFilter.Invoke(ctx, todos.Instance, json.RawMessage(`{"filter":"sometimes"}`))
	var valErr *capability.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "filter", valErr.Field)

	assert.Contains(t, lists.State(), "Groceries")
	assert.Contains(t, todos.State(), `"total":1`)
}
