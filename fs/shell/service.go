package shell

import (
	"github.com/jmgilman/go/scopedfs/grant"
)

// Service is the privileged service behind the execution channel.
type Service interface {
	// Alive reports whether the service is reachable.
	Alive() bool

	// Authorized reports whether this process may use the service.
	Authorized() bool

	// RequestAuthorization asks the service for authorization. The answer
	// is delivered by completing ticket on the negotiator.
	RequestAuthorization(ticket grant.Ticket) error
}
