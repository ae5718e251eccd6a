package main

import "github.com/dkarlov/faretrack/cmd"

func main() {
	cmd.Execute()
}
