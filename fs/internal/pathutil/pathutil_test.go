package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, Split("//a/b//c/"))
	assert.Empty(t, Split("/"))
	assert.Empty(t, Split(""))
}

func TestChild(t *testing.T) {
	assert.Equal(t, "/sdcard/Download/a.txt", Child("/sdcard/Download/", "a.txt"))
	assert.Equal(t, "/sdcard/Download/a.txt", Child("/sdcard/Download///", "a.txt"))
	assert.Equal(t, "/a.txt", Child("/", "a.txt"))
}

func TestParentAndBase(t *testing.T) {
	tests := []struct {
		path   string
		parent string
		base   string
	}{
		{"/storage/emulated/0/x.bin", "/storage/emulated/0", "x.bin"},
		{"/storage/emulated/0/dir/", "/storage/emulated/0", "dir"},
		{"/top", "/", "top"},
		{"/", "/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.parent, Parent(tt.path))
			assert.Equal(t, tt.base, Base(tt.path))
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "/a/b", Normalize("//a//b/"))
	assert.Equal(t, "a/./b", Normalize("a/./b"))
	assert.Equal(t, "/", Normalize("///"))
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "/", TrimTrailing("//"))
	assert.Equal(t, "/a", TrimTrailing("/a//"))
}

func TestWithin(t *testing.T) {
	tests := []struct {
		dir  string
		path string
		want bool
	}{
		{"/d", "/d/sub", true},
		{"/d/", "//d//sub/x", true},
		{"/d", "/d", false},
		{"/d", "/d/", false},
		{"/d", "/dx/sub", false},
		{"/d/sub", "/d", false},
		{"/", "/a", true},
		{"/", "/", false},
	}

	for _, tt := range tests {
		t.Run(tt.dir+" "+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Within(tt.dir, tt.path))
		})
	}
}
