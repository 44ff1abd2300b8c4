package main

import "github.com/teacherwell/teacherwell/cmd"

func main() {
	cmd.Execute()
}
