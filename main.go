package main

import "github.com/pwnmux/pwnmux/cmd"

func main() {
	cmd.Execute()
}
