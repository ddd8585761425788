// Package todo is the demo application the assistant operates: todo lists
// and their items, kept in memory.
package todo

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Filter selects which todos of a list are shown.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

var (
	ErrListNotFound = errors.New("todo list not found")
	ErrTodoNotFound = errors.New("todo not found")
)

type List struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Todo struct {
	ID        string    `json:"id"`
	ListID    string    `json:"listId"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

// Stats counts the todos of one list.
type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Active    int `json:"active"`
}

// Store holds every list and todo. It is safe for concurrent use; the
// dispatcher may run several tools against it at once.
type Store struct {
	mu     sync.RWMutex
	lists  []List
	todos  []Todo
	filter Filter
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{filter: FilterAll}
}

// NewDemoStore returns a store seeded with a few lists and todos.
func NewDemoStore() *Store {
	s := NewStore()
	seed := []struct {
		name, description string
		todos             []string
	}{
		{"Work Tasks", "Tasks related to my job", []string{"Finish project report", "Schedule team meeting", "Respond to emails"}},
		{"Home Tasks", "Household chores and personal tasks", []string{"Clean the kitchen", "Do laundry", "Pay bills"}},
		{"Shopping List", "Items to buy", []string{"Milk", "Bread", "Eggs"}},
	}
	for _, l := range seed {
		list := s.AddList(l.name, l.description)
		for _, title := range l.todos {
			_, _ = s.AddTodo(list.ID, title)
		}
	}
	return s
}

func (s *Store) Lists() []List {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]List(nil), s.lists...)
}

func (s *Store) AddList(name, description string) List {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := List{ID: uuid.NewString(), Name: name, Description: description, CreatedAt: time.Now()}
	s.lists = append(s.lists, l)
	return l
}

// DeleteList removes the list and its todos.
func (s *Store) DeleteList(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.listIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrListNotFound, id)
	}
	s.lists = append(s.lists[:i], s.lists[i+1:]...)
	kept := s.todos[:0]
	for _, t := range s.todos {
		if t.ListID != id {
			kept = append(kept, t)
		}
	}
	s.todos = kept
	return nil
}

// Todos returns the todos of list listID that pass the current filter.
func (s *Store) Todos(listID string) ([]Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listIndex(listID) < 0 {
		return nil, fmt.Errorf("%w: %s", ErrListNotFound, listID)
	}
	out := []Todo{}
	for _, t := range s.todos {
		if t.ListID == listID && s.filter.matches(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) AddTodo(listID, title string) (Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listIndex(listID) < 0 {
		return Todo{}, fmt.Errorf("%w: %s", ErrListNotFound, listID)
	}
	t := Todo{ID: uuid.NewString(), ListID: listID, Title: title, CreatedAt: time.Now()}
	s.todos = append(s.todos, t)
	return t, nil
}

func (s *Store) ToggleTodo(id string) (Todo, error) {
	return s.updateTodo(id, func(t *Todo) { t.Completed = !t.Completed })
}

func (s *Store) RenameTodo(id, title string) (Todo, error) {
	return s.updateTodo(id, func(t *Todo) { t.Title = title })
}

func (s *Store) DeleteTodo(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.todos {
		if t.ID == id {
			s.todos = append(s.todos[:i], s.todos[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrTodoNotFound, id)
}

func (s *Store) SetFilter(f Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
}

func (s *Store) Filter() Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// Stats returns the counts per list id, unfiltered.
func (s *Store) Stats() map[string]Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Stats, len(s.lists))
	for _, l := range s.lists {
		out[l.ID] = Stats{}
	}
	for _, t := range s.todos {
		st := out[t.ListID]
		st.Total++
		if t.Completed {
			st.Completed++
		} else {
			st.Active++
		}
		out[t.ListID] = st
	}
	return out
}

func (s *Store) updateTodo(id string, fn func(*Todo)) (Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.todos {
		if s.todos[i].ID == id {
			fn(&s.todos[i])
			return s.todos[i], nil
		}
	}
	return Todo{}, fmt.Errorf("%w: %s", ErrTodoNotFound, id)
}

func (s *Store) listIndex(id string) int {
	for i, l := range s.lists {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func (f Filter) matches(t Todo) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}
