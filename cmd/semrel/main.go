package main

import "semrel/internal/cli"

func main() {
	cli.Execute()
}
