package main

import "github.com/dbsmedya/snbloader/cmd/snbloader/cmd"

func main() {
	cmd.Execute()
}
