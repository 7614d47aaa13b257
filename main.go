package main

import "github.com/lmontes/melgen/cmd"

func main() {
	cmd.Execute()
}
