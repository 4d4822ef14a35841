package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/yuchia/drawball/apps/drawctl/cmd"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "drawctl crashed: %v\n", r)
			if os.Getenv("DRAWBALL_DEBUG") != "" {
				debug.PrintStack()
			}
			os.Exit(2)
		}
	}()

	cmd.Execute()
}
