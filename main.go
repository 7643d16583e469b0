package main

import "ircord/cmd"

func main() {
	cmd.Execute()
}
