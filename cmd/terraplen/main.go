// Command terraplen scrapes product detail pages of regional storefronts
// and prints them as JSON.
//
// Usage:
//
//	terraplen product B07FZ8S74R
//	terraplen product --country co.jp 4798121967 B00KINDLE1
//	terraplen product https://www.amazon.de/dp/B07FZ8S74R
package main

func main() {
	Execute()
}
