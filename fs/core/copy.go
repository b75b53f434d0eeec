package core

import (
	"io"

	"github.com/jmgilman/go/scopedfs/errors"
	"github.com/jmgilman/go/scopedfs/fs/internal/pathutil"
)

// SamePath reports whether src and dst name the same entry once repeated
// and trailing slashes are collapsed. Copying or moving an entry onto
// itself is a no-op.
func SamePath(src, dst string) bool {
	return pathutil.Normalize(src) == pathutil.Normalize(dst)
}

// CheckNested returns a CodeInvalidInput error when dst lies inside src.
// A recursive copy or move into its own subtree would never terminate.
func CheckNested(op, src, dst string) error {
	if !pathutil.Within(src, dst) {
		return nil
	}
	return errors.WithContextMap(errors.New(errors.CodeInvalidInput, "destination is inside the source"),
		map[string]interface{}{"op": op, "src": src, "dst": dst})
}

// CopyStream copies the file at srcPath in src to dstPath in dst. The
// destination is truncated and its parents are created. Copying a path
// onto itself within one StreamFS leaves it untouched.
func CopyStream(src StreamFS, srcPath string, dst StreamFS, dstPath string) error {
	if src == dst && SamePath(srcPath, dstPath) {
		return nil
	}

	r, err := src.Open(srcPath)
	if err != nil {
		return FromOS(err, "open", srcPath)
	}
	defer func() { _ = r.Close() }()

	w, err := dst.Create(dstPath)
	if err != nil {
		return FromOS(err, "create", dstPath)
	}

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return FromOS(err, "copy", dstPath)
	}
	return FromOS(w.Close(), "close", dstPath)
}
