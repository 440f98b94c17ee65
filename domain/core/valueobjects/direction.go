package valueobjects

import "fmt"

// LayoutDirection is the flow direction of the layered layout.
type LayoutDirection string

const (
	LayoutDown  LayoutDirection = "DOWN"
	LayoutRight LayoutDirection = "RIGHT"
	LayoutUp    LayoutDirection = "UP"
	LayoutLeft  LayoutDirection = "LEFT"

	DefaultLayoutDirection = LayoutRight
)

// ParseLayoutDirection converts a string into a LayoutDirection
func ParseLayoutDirection(s string) (LayoutDirection, error) {
	d := LayoutDirection(s)
	if !d.IsValid() {
		return "", fmt.Errorf("invalid layout direction %q", s)
	}
	return d, nil
}

func (d LayoutDirection) IsValid() bool {
	switch d {
	case LayoutDown, LayoutRight, LayoutUp, LayoutLeft:
		return true
	}
	return false
}

// Next returns the direction that follows d in the toggle cycle
// DOWN, RIGHT, UP, LEFT.
func (d LayoutDirection) Next() LayoutDirection {
	switch d {
	case LayoutDown:
		return LayoutRight
	case LayoutRight:
		return LayoutUp
	case LayoutUp:
		return LayoutLeft
	default:
		return LayoutDown
	}
}

// IsVertical reports whether layers stack along the y axis.
func (d LayoutDirection) IsVertical() bool {
	return d == LayoutDown || d == LayoutUp
}

// Direction is a compass direction used for keyboard navigation.
type Direction string

const (
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// ParseDirection converts a string into a Direction
func ParseDirection(s string) (Direction, error) {
	d := Direction(s)
	if !d.IsValid() {
		return "", fmt.Errorf("invalid direction %q", s)
	}
	return d, nil
}

func (d Direction) IsValid() bool {
	switch d {
	case DirectionUp, DirectionDown, DirectionLeft, DirectionRight:
		return true
	}
	return false
}

// Handle is the side of a node an edge attaches to.
type Handle string

const (
	HandleTop    Handle = "top"
	HandleBottom Handle = "bottom"
	HandleLeft   Handle = "left"
	HandleRight  Handle = "right"
)

func (h Handle) IsValid() bool {
	switch h {
	case HandleTop, HandleBottom, HandleLeft, HandleRight:
		return true
	}
	return false
}

// HandlesFor returns the source and target handles that match the flow of a
// layout direction, e.g. bottom to top for DOWN.
func HandlesFor(d LayoutDirection) (source, target Handle) {
	switch d {
	case LayoutDown:
		return HandleBottom, HandleTop
	case LayoutUp:
		return HandleTop, HandleBottom
	case LayoutLeft:
		return HandleLeft, HandleRight
	default:
		return HandleRight, HandleLeft
	}
}
