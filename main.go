package main

import "github.com/itsmostafa/modelrun/cmd"

func main() {
	cmd.Execute()
}
