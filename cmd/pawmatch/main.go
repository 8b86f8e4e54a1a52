package main

import "github.com/pawmatch/pawmatch/internal/cli"

func main() {
	cli.Execute()
}
