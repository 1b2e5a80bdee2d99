package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"
	echoSwagger "github.com/swaggo/echo-swagger"

	"taskledger/internal/auth"
	apperrors "taskledger/internal/errors"
	"taskledger/internal/handler"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth       *handler.AuthHandler
	User       *handler.UserHandler
	Ledger     *handler.LedgerHandler
	Attribute  *handler.AttributeHandler
	Resource   *handler.ResourceHandler
	Category   *handler.CategoryHandler
	Task       *handler.TaskHandler
	Shop       *handler.ShopHandler
	HealthFunc echo.HandlerFunc
}

// Register wires routes and middleware.
func Register(e *echo.Echo, jwtSecret []byte, h Handlers) {
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := log.WithFields(log.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"remote_ip":  v.RemoteIP,
				"request_id": v.RequestID,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request failed")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	e.Validator = &CustomValidator{validator: validator.New()}

	health := h.HealthFunc
	if health == nil {
		health = func(c echo.Context) error {
			return c.String(http.StatusOK, "ok")
		}
	}
	e.GET("/healthz", health)

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)

	// Secured routes (require JWT authentication)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:    jwtSecret,
		TokenLookup:   "header:" + echo.HeaderAuthorization + ":Bearer ",
		ContextKey:    auth.ContextKey,
		NewClaimsFunc: auth.NewClaims,
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
				Error: "missing or invalid token",
				Code:  "UNAUTHORIZED",
			})
		},
	}))

	secured.GET("/me", h.User.Me)
	secured.PUT("/me", h.User.UpdateMe)

	secured.GET("/coins/balance", h.Ledger.Balance)
	secured.GET("/coins/history", h.Ledger.History)
	secured.GET("/coins/stats", h.Ledger.Stats)

	secured.GET("/attributes", h.Attribute.List)
	secured.POST("/attributes", h.Attribute.Create)
	secured.PUT("/attributes/:id", h.Attribute.Update)
	secured.PUT("/attributes/:id/value", h.Attribute.SetValue)
	secured.POST("/attributes/:id/increase", h.Attribute.Increase)
	secured.DELETE("/attributes/:id", h.Attribute.Delete)

	secured.GET("/resources", h.Resource.List)
	secured.POST("/resources/:key/consume", h.Resource.Consume)

	secured.GET("/task-categories", h.Category.List)
	secured.POST("/task-categories", h.Category.Create)
	secured.POST("/task-categories/presets", h.Category.SeedPresets)
	secured.PUT("/task-categories/:id", h.Category.Update)
	secured.DELETE("/task-categories/:id", h.Category.Delete)

	secured.GET("/tasks", h.Task.List)
	secured.POST("/tasks", h.Task.Create)
	secured.GET("/tasks/stats", h.Task.Stats)
	secured.GET("/tasks/:id", h.Task.Get)
	secured.DELETE("/tasks/:id", h.Task.Delete)
	secured.PUT("/tasks/:id/status", h.Task.SetStatus)
	secured.POST("/tasks/:id/proof", h.Task.SubmitProof)
	secured.PUT("/tasks/:id/evaluation", h.Task.UpdateEvaluation)

	secured.GET("/shop/items", h.Shop.Items)
	secured.GET("/shop/purchases", h.Shop.Purchases)
	secured.POST("/shop/purchase/:id", h.Shop.Purchase)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
