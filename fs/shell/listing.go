package shell

import (
	"strings"
)

// Entry is one parsed line of `ls -l` output.
type Entry struct {
	Name string
	Dir  bool
}

// ParseListing parses `ls -l` output. Lines are split on whitespace; the
// last field is the name and a leading 'd' in the mode column marks a
// directory. Lines with fewer than five fields, such as the "total"
// header, are skipped. Names containing whitespace are truncated to their
// last word, and a symbolic link, printed as "name -> target", yields its
// target rather than its own name.
func ParseListing(out string) []Entry {
	var entries []Entry
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 5 {
			continue
		}
		entries = append(entries, Entry{
			Name: fields[len(fields)-1],
			Dir:  strings.HasPrefix(fields[0], "d"),
		})
	}
	return entries
}
