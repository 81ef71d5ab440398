package main

import "github.com/autocoder/autocoder/cmd"

func main() {
	cmd.Execute()
}
