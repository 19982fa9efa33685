package main

import "github.com/naka-gawa/github-contributions/cmd"

func main() {
	cmd.Execute()
}
