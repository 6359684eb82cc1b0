package main

import "github.com/qbatch/qbatch/cmd"

func main() {
	cmd.Execute()
}
