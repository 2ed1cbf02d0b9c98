package main

import "github.com/matzegoebel/run-wrf/cmd"

func main() {
	cmd.Execute()
}
