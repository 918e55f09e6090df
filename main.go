package main

import "github.com/gaurav-prasanna/canvaspipe/cmd"

func main() {
	cmd.Execute()
}
