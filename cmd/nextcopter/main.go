package main

import "github.com/BryanSouza91/nextcopter/internal/cmd"

func main() {
	cmd.Execute()
}
