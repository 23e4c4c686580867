package main

import "github.com/ares-safety/ares/cmd"

func main() {
	cmd.Execute()
}
