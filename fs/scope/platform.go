package scope

import "strconv"

// Platform API levels at which storage access rules change.
const (
	// SDKRestricted is the first level that blocks path access to
	// Android/data and Android/obb.
	SDKRestricted = 30

	// SDKPerOwnerGrants is the first level that refuses umbrella grants
	// and requires one grant per owning app.
	SDKPerOwnerGrants = 32

	// SDKEncodedTreeIDs is the first level whose document picker only
	// accepts the zero-width-encoded tree identifier.
	SDKEncodedTreeIDs = 34
)

// Platform describes the running platform version.
type Platform struct {
	SDK int
}

// Restricted reports whether the restricted subtrees are enforced.
func (p Platform) Restricted() bool {
	return p.SDK >= SDKRestricted
}

// PerOwnerGrants reports whether grants are scoped per owning segment.
func (p Platform) PerOwnerGrants() bool {
	return p.SDK >= SDKPerOwnerGrants
}

// EncodedTreeIDs reports whether tree identifiers use the encoded form.
func (p Platform) EncodedTreeIDs() bool {
	return p.SDK >= SDKEncodedTreeIDs
}

func (p Platform) String() string {
	return "sdk-" + strconv.Itoa(p.SDK)
}
