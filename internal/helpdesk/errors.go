package helpdesk

import "errors"

var (
	ErrEmailExists   = errors.New("helpdesk: customer email already exists")
	ErrInvalidStatus = errors.New("helpdesk: invalid ticket status")
	ErrTicketClosed  = errors.New("helpdesk: ticket is closed")
	ErrMissingField  = errors.New("helpdesk: missing required field")
)
