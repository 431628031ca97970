package main

import "github.com/khanhnv2901/sanscout/cmd"

// execCmd indirection allows tests to stub command execution.
var execCmd = cmd.Execute

func main() {
	execCmd()
}
