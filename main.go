package main

import "camo/cmd"

func main() {
	cmd.Execute()
}
