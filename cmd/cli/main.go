package main

import "cooksy/internal/cli"

func main() {
	cli.Execute()
}
