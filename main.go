package main

import (
	"OtoDist/cmd"
)

func main() {
	cmd.Execute()
}
