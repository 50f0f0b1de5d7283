package main

import (
	"ticket-rush/cmd"

	_ "go.uber.org/automaxprocs"
)

func main() {
	cmd.Start()
}
