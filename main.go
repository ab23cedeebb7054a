package main

import (
	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"github.com/vietanh2810/election-admin/cmd/app"
)

// @title        Election Admin
// @version      1.0
// @description  Admin console for drafting, launching and ending elections.
//
// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html
//
// @securityDefinitions.apikey SessionCookie
// @in cookie
// @name session
// @description Session cookie set by POST /session
func main() {
	if err := app.Start(); err != nil {
		panic(err)
	}
}
