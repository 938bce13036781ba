package main

import "github.com/jcdickinson/dukedoc/cmd"

func main() {
	cmd.Execute()
}
