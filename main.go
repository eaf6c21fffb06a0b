// Package main is the entry point for the lotteryd application
package main

import (
	"github.com/riorajhon/lotteryd/cmd"
)

func main() {
	cmd.Execute()
}
