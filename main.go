package main

import "paylog/cmd"

func main() {
	cmd.Execute()
}
