package workflow

// ErrorKind tells what put the current message into the ErrorChannel.
type ErrorKind int

const (
	NoError ErrorKind = iota
	ValidationComplaint
	RequestFailure
)

func (k ErrorKind) String() string {
	switch k {
	case ValidationComplaint:
		return "validation"
	case RequestFailure:
		return "request"
	default:
		return "none"
	}
}

// ErrorChannel holds the latest user-visible failure message. It keeps no history.
type ErrorChannel struct {
	message string
	kind    ErrorKind
}

// Set overwrites the slot.
func (c *ErrorChannel) Set(kind ErrorKind, message string) {
	c.kind = kind
	c.message = message
}

func (c *ErrorChannel) Clear() {
	c.kind = NoError
	c.message = ""
}

// ClearValidation empties the slot only when it holds a validation complaint.
func (c *ErrorChannel) ClearValidation() bool {
	if c.kind != ValidationComplaint {
		return false
	}
	c.Clear()
	return true
}

func (c *ErrorChannel) Message() string { return c.message }

func (c *ErrorChannel) Kind() ErrorKind { return c.kind }
