package main

import "sfx/cmd"

func main() {
	cmd.Execute()
}
