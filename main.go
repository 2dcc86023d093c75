package main

import cmd "github.com/rohmanhakim/shell-cache/internal/cli"

func main() {
	cmd.Execute()
}
