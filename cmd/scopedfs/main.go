// Command scopedfs runs storage operations through the strategy selected
// for the configured platform.
//
//	scopedfs --sdk 34 cat /storage/emulated/0/Android/data/com.example/files/a.txt
//	scopedfs grants add content://com.android.externalstorage.documents/tree/primary%3AAndroid%2Fdata%2Fcom.example
package main

import (
	"io"
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stderr: stderr}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if closeErr := a.close(); err == nil {
		err = closeErr
	}
	if err != nil {
		a.report(err)
		return 1
	}
	return 0
}
