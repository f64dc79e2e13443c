package main

import "todoquest/cmd/tq/root"

func main() {
	root.Execute()
}
