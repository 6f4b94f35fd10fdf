package main

import "energy-forecast/internal/cli"

func main() {
	cli.Execute()
}
