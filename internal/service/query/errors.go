package query

import (
	"errors"
)

var (
	ErrTicketIDRequired = errors.New("ticket id is required")
	ErrTicketNotFound   = errors.New("ticket not found")
)
