// Karsi - cloud cost optimization dashboard.
// Fetch. Normalize. Decide.
package main

func main() {
	Execute()
}
