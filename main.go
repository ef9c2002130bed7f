package main

import (
	_ "time/tzdata"

	"railctl/cmd"
)

func main() {
	cmd.Execute()
}
