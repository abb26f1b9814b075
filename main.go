package main

import (
	"github.com/fresh1g1r/fresh1g1r/cmd"
)

func main() {
	cmd.Execute()
}
