package main

import "github.com/legalnest/backend/cmd"

func main() {
	cmd.Execute()
}
