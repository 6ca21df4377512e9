package main

import (
	"os"

	"github.com/coolerogenous/WoWoKitchen/config"
	"github.com/coolerogenous/WoWoKitchen/routes"
	"github.com/coolerogenous/WoWoKitchen/utils"
)

func main() {
	utils.InitLogger()
	defer utils.Logger.Sync()

	config.InitDB()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	r := routes.SetupRouter()
	utils.Logger.Infow("listening", "port", port)
	if err := r.Run(":" + port); err != nil {
		utils.Logger.Fatalw("server stopped", "err", err)
	}
}
