package routes

import (
	"log"
	"net/http"

	"questionbank/handlers"
	"questionbank/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "questionbank/docs"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func SetupRoutes(router *gin.Engine, questionHandler *handlers.QuestionHandler, hub *services.Hub) {
	questions := router.Group("/questions")
	{
		questions.POST("/", questionHandler.CreateQuestion)
		questions.GET("/", questionHandler.ListQuestions)
		questions.GET("/:id", questionHandler.GetQuestion)
		questions.PUT("/:id", questionHandler.UpdateQuestion)
		questions.DELETE("/:id", questionHandler.DeleteQuestion)
	}

	// Change feed of committed question writes.
	router.GET("/ws/questions", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed: %v", err)
			return
		}

		if _, err := hub.RegisterClient(conn); err != nil {
			log.Printf("WebSocket registration failed: %v", err)
		}
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
