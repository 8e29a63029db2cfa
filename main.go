package main

import "sshreg/cmd"

func main() {
	cmd.Execute()
}
