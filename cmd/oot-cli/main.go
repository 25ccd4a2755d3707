package main

import "oot/cmd/oot-cli/cmd"

func main() {
	cmd.Execute()
}
