package router

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/table-order-app/controllers"
	"github.com/yeremiapane/table-order-app/middlewares"
	"github.com/yeremiapane/table-order-app/utils"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	// Inisialisasi controller
	userCtrl := controllers.NewUserController(db)
	tableCtrl := controllers.NewTableController(db)
	sessionCtrl := controllers.NewSessionController(db)
	menuCtrl := controllers.NewMenuController(db)
	orderCtrl := controllers.NewOrderController(db)
	splitCtrl := controllers.NewSplitBillController(db)
	paymentCtrl := controllers.NewPaymentController(db)
	notifCtrl := controllers.NewNotificationController(db)
	reaperCtrl := controllers.NewReaperController(db)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES (diner)
	// ----------------------------------------------------------------
	public := r.Group("/api")
	{
		public.POST("/login", middlewares.NewStrictRateLimiter(), userCtrl.Login)

		public.GET("/menus", menuCtrl.GetAllMenus)
		public.GET("/menus/:menu_id", menuCtrl.GetMenuByID)
		public.GET("/menu-categories", menuCtrl.GetAllCategories)

		// Jalur scan QR
		public.POST("/sessions/join", middlewares.NewStrictRateLimiter(), sessionCtrl.CreateOrJoinSession)
		public.GET("/sessions/:session_id", sessionCtrl.GetSession)
		public.POST("/sessions/:session_id/diners/:diner_id/heartbeat", sessionCtrl.HeartbeatDiner)
		public.POST("/sessions/:session_id/diners/:diner_id/leave", sessionCtrl.LeaveSession)

		// Cart & orders milik diner
		public.POST("/sessions/:session_id/orders", orderCtrl.AddCartItem)
		public.POST("/sessions/:session_id/orders/confirm", orderCtrl.ConfirmCart)
		public.GET("/sessions/:session_id/orders", orderCtrl.ListOrders)

		// Split bill
		public.POST("/orders/:order_id/split", splitCtrl.CreateSplit)
		public.DELETE("/splits/:split_id", splitCtrl.DissolveSplit)
		public.GET("/orders/:order_id/display-price", splitCtrl.GetDisplayPrice)

		// Payment request & polling status
		public.POST("/sessions/:session_id/payment/request", paymentCtrl.RequestPayment)
		public.GET("/sessions/:session_id/payment", paymentCtrl.GetPaymentStatus)
		public.GET("/sessions/:session_id/receipts", paymentCtrl.GetSessionReceipts)
	}

	// ----------------------------------------------------------------
	//                      STAFF ROUTES
	// ----------------------------------------------------------------
	staff := r.Group("/api/staff")
	staff.Use(middlewares.AuthMiddleware())
	staff.Use(middlewares.RequireRole("staff", "manager", "chef"))
	{
		staff.GET("/profile", userCtrl.GetProfile)

		staff.GET("/tables", tableCtrl.GetAllTables)
		staff.GET("/tables/:table_id", tableCtrl.GetTableByID)
		staff.POST("/tables/:table_id/claim", tableCtrl.ClaimTable)
		staff.POST("/tables/:table_id/release", tableCtrl.ReleaseTable)

		staff.POST("/sessions/:session_id/terminate", sessionCtrl.TerminateSession)

		staff.PATCH("/orders/:order_id/status", orderCtrl.AdvanceKitchenStatus)
		staff.POST("/orders/:order_id/void", middlewares.RequireRole("manager"), orderCtrl.VoidOrder)

		staff.POST("/sessions/:session_id/payment/complete", paymentCtrl.CompletePayment)

		staff.GET("/notifications", notifCtrl.GetNotifications)
		staff.PATCH("/notifications/:notif_id/complete", notifCtrl.CompleteNotification)
	}

	// ----------------------------------------------------------------
	//                      ADMIN ROUTES
	// ----------------------------------------------------------------
	admin := r.Group("/api/admin")
	admin.Use(middlewares.AuthMiddleware())
	admin.Use(middlewares.RequireRole("admin"))
	{
		admin.POST("/register", userCtrl.Register)

		admin.POST("/tables", tableCtrl.CreateTable)
		admin.DELETE("/tables/:table_id", tableCtrl.DeleteTable)

		admin.POST("/menus", menuCtrl.CreateMenu)
		admin.PATCH("/menus/:menu_id", menuCtrl.UpdateMenu)
		admin.DELETE("/menus/:menu_id", menuCtrl.DeleteMenu)
		admin.POST("/menu-categories", menuCtrl.CreateCategory)
	}

	// Trigger manual reaper: admin JWT atau shared secret X-Reaper-Token.
	// Cek kredensial di controller karena scheduler eksternal tidak ber-JWT.
	r.POST("/api/internal/reaper/run", func(c *gin.Context) {
		if auth := c.GetHeader("Authorization"); auth != "" {
			token := strings.TrimPrefix(auth, "Bearer ")
			if claims, err := utils.ParseToken(token); err == nil {
				c.Set("user_id", claims.UserID)
				c.Set("role", claims.Role)
			}
		}
		reaperCtrl.TriggerRun(c)
	})

	// WebSocket event hub untuk staff/admin
	r.GET("/ws/events", middlewares.WebSocketAuthMiddleware(), controllers.EventsHandler)

	return r
}
