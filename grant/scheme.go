package grant

import (
	"net/url"
	"strings"

	"github.com/jmgilman/go/scopedfs/errors"
	"github.com/jmgilman/go/scopedfs/fs/scope"
)

const (
	// Authority is the document provider that serves external storage.
	Authority = "com.android.externalstorage.documents"

	treePrefix   = "content://" + Authority + "/tree/"
	volumePrefix = "primary%3A"
	separator    = "%2F"
	zeroWidth    = "%E2%80%8B"
)

// Target identifies what a grant covers: an area's umbrella root when
// Owner is empty, otherwise one owner's subtree.
type Target struct {
	Area  scope.Area
	Owner string
}

// Dir returns the volume-relative directory the target covers.
func (t Target) Dir() string {
	if t.Owner == "" {
		return t.Area.Dir()
	}
	return t.Area.Dir() + "/" + t.Owner
}

// Scheme builds grant identifiers for a platform version. A grant's
// identity is its tree URI, and lookups compare URIs exactly.
type Scheme struct {
	Platform scope.Platform
}

// TargetFor returns the narrowest target a grant may be requested for:
// the owner when the platform scopes grants per owner and the location
// names one, the area root otherwise.
func (s Scheme) TargetFor(loc scope.Location) Target {
	if s.Platform.PerOwnerGrants() && loc.Owner != "" {
		return Target{Area: loc.Area, Owner: loc.Owner}
	}
	return Target{Area: loc.Area}
}

// TreeURI returns the tree URI a persisted grant for t carries.
func (s Scheme) TreeURI(t Target) string {
	uri := treePrefix + volumePrefix + s.areaID(t.Area)
	if t.Owner != "" {
		uri += separator + url.PathEscape(t.Owner)
	}
	return uri
}

// InitialURI returns the document URI used to open the picker at t.
func (s Scheme) InitialURI(t Target) string {
	doc := volumePrefix + s.areaID(t.Area)
	if t.Owner != "" {
		doc += separator + url.PathEscape(t.Owner)
	}
	return s.TreeURI(t) + "/document/" + doc
}

// areaID returns the encoded "Android/<area>" component. Platforms with
// EncodedTreeIDs only accept it with zero-width spaces inside the names.
func (s Scheme) areaID(area scope.Area) string {
	if !s.Platform.EncodedTreeIDs() {
		return "Android" + separator + area.String()
	}
	name := area.String()
	half := len(name) - len(name)/2
	return "Andr" + zeroWidth + "oid" + separator + name[:half] + zeroWidth + name[half:]
}

// ParseTreeURI recovers the target a tree URI grants. Both the plain and
// the zero-width-encoded forms are accepted, with or without a trailing
// /document/ part.
func ParseTreeURI(uri string) (Target, error) {
	if !strings.HasPrefix(uri, treePrefix) {
		return Target{}, errors.Newf(errors.CodeInvalidInput, "not an external storage tree URI: %s", uri)
	}

	id := strings.TrimPrefix(uri, treePrefix)
	if idx := strings.Index(id, "/"); idx >= 0 {
		id = id[:idx]
	}

	decoded, err := url.PathUnescape(id)
	if err != nil {
		return Target{}, errors.Wrapf(err, errors.CodeInvalidInput, "malformed tree URI: %s", uri)
	}
	decoded = strings.ReplaceAll(decoded, "\u200b", "")
	decoded = strings.TrimPrefix(decoded, "primary:")

	parts := strings.SplitN(decoded, "/", 3)
	if len(parts) < 2 || !strings.EqualFold(parts[0], "Android") {
		return Target{}, errors.Newf(errors.CodeInvalidInput, "tree URI outside restricted storage: %s", uri)
	}

	var t Target
	for _, area := range scope.Areas {
		if strings.EqualFold(parts[1], area.String()) {
			t.Area = area
		}
	}
	if t.Area == scope.AreaNone {
		return Target{}, errors.Newf(errors.CodeInvalidInput, "unknown area %q in tree URI", parts[1])
	}
	if len(parts) == 3 {
		if strings.Contains(parts[2], "/") {
			return Target{}, errors.Newf(errors.CodeInvalidInput, "tree URI below owner level: %s", uri)
		}
		t.Owner = parts[2]
	}
	return t, nil
}
