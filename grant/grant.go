// Package grant negotiates access to the restricted storage subtrees.
//
// Three kinds of permission gate an operation:
//
//   - the runtime storage permission (legacy WRITE_EXTERNAL_STORAGE or
//     all-files access), checked before anything else;
//   - a tree grant, a durable user-consented capability over one owner's
//     subtree or over the whole area;
//   - authorization of the elevated execution service, used only by the
//     command backend.
//
// None of them can be obtained synchronously. A Negotiator issues the
// request through a Requester, which is the boundary to whatever UI asks
// the user, and returns a Ticket immediately. The operation that needed
// the permission fails with PERMISSION_MISSING. When the user answers, the
// host delivers the answer with Complete. For tree grants the Negotiator
// persists the grant before any callback runs, so a retried operation sees
// it.
//
//	ticket, _ := n.RequestFor(path, nil)
//	// ... later, from the host's result hook:
//	_ = n.Complete(ticket, grant.Result{Granted: true, URI: pickedURI})
package grant

import (
	"time"

	"github.com/jmgilman/go/scopedfs/fs/scope"
)

// Ticket identifies one outstanding permission request.
type Ticket string

// Kind is the type of permission a request asks for.
type Kind int

const (
	// KindRuntime asks for the runtime storage permission.
	KindRuntime Kind = iota
	// KindTree asks for a tree grant.
	KindTree
	// KindElevation asks the elevated service to authorize this client.
	KindElevation
)

func (k Kind) String() string {
	switch k {
	case KindRuntime:
		return "runtime"
	case KindTree:
		return "tree"
	case KindElevation:
		return "elevation"
	default:
		return "unknown"
	}
}

// Grant is a persisted tree grant.
type Grant struct {
	URI       string     `json:"uri"`
	Area      scope.Area `json:"area"`
	Owner     string     `json:"owner,omitempty"`
	GrantedAt time.Time  `json:"granted_at"`
}

// Target returns what the grant covers.
func (g Grant) Target() Target {
	return Target{Area: g.Area, Owner: g.Owner}
}

// Request is handed to the Requester for one permission prompt.
type Request struct {
	Ticket Ticket
	Kind   Kind

	// Target, TreeURI and InitialURI are set for KindTree only.
	Target     Target
	TreeURI    string
	InitialURI string
}

// Result is the host's answer to a Request.
type Result struct {
	Granted bool

	// URI is the tree the user actually picked. When empty the requested
	// TreeURI is assumed.
	URI string
}

// Outcome is delivered to callbacks and returned by Wait.
type Outcome struct {
	Ticket  Ticket
	Kind    Kind
	Granted bool

	// Grant is the persisted grant for granted tree requests.
	Grant *Grant
}

// Callback receives the outcome of a request.
type Callback func(Outcome)

// Requester shows the permission prompt for a request. It must not block
// waiting for the user.
type Requester interface {
	Request(req Request) error
}

// RequesterFunc adapts a function to Requester.
type RequesterFunc func(req Request) error

// Request calls f(req).
func (f RequesterFunc) Request(req Request) error {
	return f(req)
}
