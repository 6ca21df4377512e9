package routes

import (
    "github.com/coolerogenous/WoWoKitchen/controllers"
    "github.com/coolerogenous/WoWoKitchen/middlewares"

    "github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
    r := gin.Default()

    // Public auth routes
    auth := r.Group("/auth")
    {
        auth.POST("/register", controllers.Register)
        auth.POST("/login", controllers.Login)
    }

    // Protected user routes
    user := r.Group("/user")
    user.Use(middlewares.AuthMiddleware())
    {
        user.GET("/profile", controllers.GetProfile)
        user.PUT("/profile", controllers.UpdateProfile)
    }

    // Pantry, dishes and menus (owner only)
    ingredients := r.Group("/ingredients")
    ingredients.Use(middlewares.AuthMiddleware())
    {
        ingredients.POST("", controllers.CreateIngredient)
        ingredients.GET("", controllers.ListIngredients)
        ingredients.PUT("/:id", controllers.UpdateIngredient)
        ingredients.DELETE("/:id", controllers.DeleteIngredient)
    }

    dishes := r.Group("/dishes")
    dishes.Use(middlewares.AuthMiddleware())
    {
        dishes.POST("", controllers.CreateDish)
        dishes.GET("", controllers.ListDishes)
        dishes.GET("/:id", controllers.GetDish)
        dishes.PUT("/:id", controllers.UpdateDish)
        dishes.DELETE("/:id", controllers.DeleteDish)
    }

    menus := r.Group("/menus")
    menus.Use(middlewares.AuthMiddleware())
    {
        menus.POST("", controllers.CreateMenu)
        menus.GET("", controllers.ListMenus)
        menus.GET("/:id", controllers.GetMenu)
        menus.PUT("/:id", controllers.UpdateMenu)
        menus.DELETE("/:id", controllers.DeleteMenu)
        menus.GET("/:id/shopping-list", controllers.MenuShoppingList)
    }

    // Party management (host)
    parties := r.Group("/parties")
    parties.Use(middlewares.AuthMiddleware())
    {
        parties.POST("", controllers.CreateParty)
        parties.GET("/mine", controllers.MyParties)
        parties.PUT("/:id", controllers.RenameParty)
        parties.DELETE("/:id", controllers.DeleteParty)
        parties.PUT("/:id/toggle-lock", controllers.TogglePartyLock)
        parties.POST("/:id/pool", controllers.AddToPool)
        parties.DELETE("/:id/pool", controllers.RemoveFromPool)
        parties.GET("/:id/export", controllers.ExportParty)
        parties.DELETE("/dish/:dishId", controllers.RemovePartyDish)
        parties.PUT("/dish/:dishId/servings", controllers.UpdatePartyDishServings)
    }

    // Guest-facing party routes, reachable with just a share code
    join := r.Group("/parties/join")
    {
        join.GET("/:code", controllers.GetPartyByShareCode)
        join.POST("/:code/guest", controllers.JoinParty)
        join.POST("/:code/add-dish", controllers.AddPartyDish)
        join.POST("/:code/select", controllers.SelectPartyDish)
        join.GET("/:code/shopping-list", controllers.PartyShoppingList)
    }

    // Share codes for dishes and menus
    r.GET("/share/:code", controllers.ResolveShareCode)
    share := r.Group("/share")
    share.Use(middlewares.AuthMiddleware())
    {
        share.POST("", controllers.CreateShareToken)
    }

    return r
}
