package main

import "github.com/naka-gawa/pr-size-score/cmd"

func main() {
	cmd.Execute()
}
