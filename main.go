package main

import "github.com/Alturino/medstore/cmd"

func main() {
	cmd.Start()
}
