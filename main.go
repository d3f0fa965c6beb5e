package main

import "qrlens/cmd"

func main() {
	cmd.Execute()
}
