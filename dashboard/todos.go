package dashboard

import (
	"errors"
	"strings"

	"github.com/andocmdo/eink-display-control-panel/models"
)

// ErrInvalidDirection is returned for a move direction other than up or down
var ErrInvalidDirection = errors.New("invalid move direction")

// Direction is the way a todo moves in the list
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection accepts "up" or "down", case-insensitively
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Up:
		return Up, nil
	case Down:
		return Down, nil
	}
	return "", ErrInvalidDirection
}

// indexOf returns the position of the todo with id, or -1. Lists are small,
// a linear scan is enough.
func indexOf(items []models.TodoItem, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// removeTodo drops the todo with id. It reports false when id is unknown.
func removeTodo(items []models.TodoItem, id string) ([]models.TodoItem, bool) {
	i := indexOf(items, id)
	if i < 0 {
		return items, false
	}
	return append(items[:i], items[i+1:]...), true
}

// moveTodo swaps the todo with its neighbour in place. Moving the first item
// up, the last item down, or an unknown id changes nothing and reports false.
func moveTodo(items []models.TodoItem, id string, dir Direction) bool {
	i := indexOf(items, id)
	if i < 0 {
		return false
	}

	j := i - 1
	if dir == Down {
		j = i + 1
	}
	if j < 0 || j >= len(items) {
		return false
	}

	items[i], items[j] = items[j], items[i]
	return true
}

// setTodoText reports false when id is unknown or the text is unchanged
func setTodoText(items []models.TodoItem, id, text string) bool {
	i := indexOf(items, id)
	if i < 0 || items[i].Text == text {
		return false
	}
	items[i].Text = text
	return true
}
