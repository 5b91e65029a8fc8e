package main

import "github.com/OpenTraceLab/OpenTracePPDev/cmd/ppdev/cmd"

func main() {
	cmd.Execute()
}
