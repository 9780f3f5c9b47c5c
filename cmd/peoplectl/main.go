// Command peoplectl queries, seeds and browses the dashboard list screens
// from a terminal.
package main

func main() {
	Execute()
}
