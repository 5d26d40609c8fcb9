package main

import "github.com/brogergvhs/srcforge/cmd"

func main() {
	cmd.Execute()
}
