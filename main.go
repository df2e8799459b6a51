package main

import "github.com/Easy-Infra-Ltd/easy-content-gate/src/cli"

func main() {
	cli.Execute()
}
