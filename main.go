package main

import "github.com/cppla/yatube/cli"

func main() {
	cli.Execute()
}
