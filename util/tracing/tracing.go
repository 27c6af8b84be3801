package tracing

import "fmt"

// Context identifies one request across log lines and error wraps.
type Context struct {
	RequestID     string
	RequestSource string
}

func (c Context) String() string {
	return fmt.Sprintf("[%s|%s]", c.RequestSource, c.RequestID)
}
