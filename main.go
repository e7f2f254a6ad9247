package main

import "github.com/vibast-solutions/ms-go-order-sync/cmd"

func main() {
	cmd.Execute()
}
