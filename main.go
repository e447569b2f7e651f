package main

import "github.com/formlens/formlens/cmd"

func main() {
	cmd.Execute()
}
