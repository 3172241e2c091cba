package main

import "github.com/Matheus-Salgado02/cinelist/cmd"

func main() {
	cmd.Execute()
}
