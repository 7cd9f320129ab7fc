package main

import "github.com/raysh454/employeesapp/internal/cli"

func main() {
	cli.Main()
}
