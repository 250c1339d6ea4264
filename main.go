package main

import "github.com/quartzmkt/resolver-core/cmd"

func main() {
	cmd.Execute()
}
