// custody - AWS incident response and evidence preservation tool.
// Isolate. Preserve. Document.
package main

func main() {
	Execute()
}
