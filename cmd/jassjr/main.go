package main

import "jassjr/internal/cli"

func main() {
	cli.Execute()
}
