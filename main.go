package main

import "github.com/Tiliavir/trivial-time-reconciler/cmd"

func main() {
	cmd.Execute()
}
