// Command reqtraced serves HTTP with every request traced.
package main

func main() {
	Execute()
}
