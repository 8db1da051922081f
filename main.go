package main

import "github.com/lepinkainen/booksuggest/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
