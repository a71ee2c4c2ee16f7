package router

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Route identifies a navigable destination. Top-level routes carry no ID;
// detail routes such as a card view carry the ID of what they show.
type Route struct {
	Name string
	ID   int64
}

// String renders the route as "name" or "name/id". A name containing "/"
// always carries its id so ParseRoute can split at the last slash.
func (r Route) String() string {
	if r.ID == 0 && !strings.Contains(r.Name, "/") {
		return r.Name
	}
	return r.Name + "/" + strconv.FormatInt(r.ID, 10)
}

// ParseRoute parses the form produced by Route.String.
func ParseRoute(s string) (Route, error) {
	s = strings.TrimSpace(s)
	i := strings.LastIndex(s, "/")
	if i < 0 {
		if s == "" {
			return Route{}, fmt.Errorf("router: empty route %q", s)
		}
		return Route{Name: s}, nil
	}
	name, id := s[:i], s[i+1:]
	if name == "" {
		return Route{}, fmt.Errorf("router: empty route name in %q", s)
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return Route{}, fmt.Errorf("router: bad route id in %q: %w", s, err)
	}
	return Route{Name: name, ID: n}, nil
}

// MarshalText encodes the route in its String form, in JSON values and
// map keys alike.
func (r Route) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Route) UnmarshalText(b []byte) error {
	parsed, err := ParseRoute(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// State is the serializable form of a Controller.
type State struct {
	Start    Route             `json:"start"`
	Active   Route             `json:"active"`
	Stacks   map[Route][]Route `json:"stacks"`
	TopLevel []Route           `json:"top_level"`
}

// Encode returns the JSON form of s.
func (s State) Encode() (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("router: encode state: %w", err)
	}
	return string(b), nil
}

// DecodeState parses a state produced by State.Encode.
func DecodeState(s string) (State, error) {
	var st State
	if err := json.Unmarshal([]byte(s), &st); err != nil {
		return State{}, fmt.Errorf("router: decode state: %w", err)
	}
	return st, nil
}
