package main

import "github.com/jsphweid/tritrack/cmd"

func main() {
	cmd.Execute()
}
