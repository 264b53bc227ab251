package main

import "github.com/tremorsense/tremor-monitor/cmd"

func main() {
	cmd.Execute()
}
