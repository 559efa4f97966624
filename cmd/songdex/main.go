// Command songdex scans a music folder into a library and queries it.
package main

func main() {
	Execute()
}
