package main

import "github.com/mkoziy/genome/monitor/cmd"

func main() {
	cmd.Execute()
}
