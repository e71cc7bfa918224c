package main

import "github.com/mcoot/courgette-crush/internal/cli"

func main() {
	cli.Execute()
}
