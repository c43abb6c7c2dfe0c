package main

import "github.com/95jonpet/pjsh/cmd"

func main() {
	cmd.Execute()
}
