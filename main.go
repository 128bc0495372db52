package main

import "github.com/lepinkainen/bookstw/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
