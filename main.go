package main

import "github.com/nextlevelbuilder/relaygram/cmd"

func main() {
	cmd.Execute()
}
