package main

import "tender-alert-engine/app"

func main() {
	app.Run()
}
