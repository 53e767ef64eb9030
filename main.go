package main

import "github.com/Snape93/nutrition-sub008/cmd/nutri"

func main() {
	nutri.Execute()
}
