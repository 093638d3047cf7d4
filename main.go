package main

import "github.com/Rorical/Ausmalbar/cmd"

func main() {
	cmd.Execute()
}
