package main

import "github.com/ctree-analysis/cmd/cli/cmd"

func main() {
	cmd.Execute()
}
