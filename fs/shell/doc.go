// Package shell implements the storage backend that runs POSIX shell
// commands through an elevated execution channel.
//
// A privileged service (root, or a shell-level binder service) can reach
// the restricted subtree directly. Every primitive operation becomes one
// command line:
//
//	read        cat <path>
//	read bytes  base64 <path>
//	exists      [ -e <path> ] && echo "exists" || echo "not_exists"
//	delete      rm -r <path>
//	copy        mkdir -p <parent> && cp -rT <src> <dst>
//	move        mkdir -p <parent> && mv <src> <dst>
//	list        ls -l <dir>
//	mkdir       mkdir -p <path>
//	write bytes mkdir -p <parent> && echo '<base64>' | base64 -d > <path>
//	write text  mkdir -p <parent> && printf '%s\n' <content> > <path>
//
// Queries run as `<shell> -c <line>` and their standard output is the
// result. Mutations are written to the shell's standard input followed by
// `exit`, and succeed when the shell exits with status zero. Paths are
// always quoted.
//
// Text writes quote the content too. WithLegacyEcho restores the
// unquoted `echo '<content>'` form, which breaks on content containing a
// single quote.
package shell
