package disclosure

import "html/template"

// State is the detail surface state.
type State int

const (
	Collapsed State = iota
	Expanded
)

func (s State) String() string {
	if s == Expanded {
		return "expanded"
	}
	return "collapsed"
}

// Controller owns the shared detail surface of one page view.
// Only one disclosure is open at a time; the last Open wins.
type Controller struct {
	state State
	body  template.HTML
}

// Open discloses a truncated cell. Short text never enters the surface and
// Open reports false for it.
func (c *Controller) Open(cell Cell) bool {
	if !cell.Truncated {
		return false
	}
	c.body = Expand(cell.Full)
	c.state = Expanded
	return true
}

// Close discards the disclosed text.
func (c *Controller) Close() {
	c.body = ""
	c.state = Collapsed
}

// State returns the current surface state.
func (c *Controller) State() State { return c.state }

// Body returns the disclosed markup, empty while collapsed.
func (c *Controller) Body() template.HTML { return c.body }
