package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"hearth/internal/auth"
	"hearth/internal/handlers"
	"hearth/internal/logger"
	"hearth/internal/middleware"
	"hearth/internal/models"
	"hearth/internal/services"
	"hearth/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

var testSecret = []byte("integration-test-secret")

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Household{},
		&models.Membership{},
		&models.Invitation{},
		&models.AccountGroup{},
		&models.Account{},
		&models.Category{},
		&models.Transaction{},
		&models.TransferGroup{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Services
	userService := services.NewUserService(db)
	householdService := services.NewHouseholdService(db)
	accountService := services.NewAccountService(db)
	categoryService := services.NewCategoryService(db)
	transactionService := services.NewTransactionService(db, accountService)
	transferService := services.NewTransferService(db, accountService, categoryService)

	issuer := &auth.Issuer{
		Secret:     testSecret,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
		SessionTTL: 12 * time.Hour,
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, issuer)
	householdHandler := handlers.NewHouseholdHandler(householdService)
	accountHandler := handlers.NewAccountHandler(accountService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	transferHandler := handlers.NewTransferHandler(transferService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public auth routes
	authRoutes := v1.Group("/auth")
	authRoutes.POST("/register", authHandler.Register)
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.Refresh)

	// Authenticated routes
	protected := v1.Group("/")
	protected.Use(middleware.Authenticate(
		&auth.SessionResolver{Secret: testSecret},
		&auth.BearerResolver{Secret: testSecret},
	))

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/profile", authHandler.GetProfile)
	protected.POST("/households", householdHandler.CreateHousehold)
	protected.GET("/households", householdHandler.ListHouseholds)
	protected.POST("/invitations/accept", householdHandler.AcceptInvitation)

	// Household-scoped routes
	scoped := protected.Group("/")
	scoped.Use(middleware.RequireHousehold(householdService))

	scoped.PUT("/households/current", householdHandler.RenameHousehold)
	scoped.GET("/households/current/members", householdHandler.GetMembers)
	scoped.POST("/households/current/invitations", householdHandler.CreateInvitation)

	accountGroups := scoped.Group("/account-groups")
	accountGroups.POST("", accountHandler.CreateAccountGroup)
	accountGroups.GET("", accountHandler.ListAccountGroups)
	accountGroups.DELETE("/:id", accountHandler.DeleteAccountGroup)

	accounts := scoped.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.ListAccounts)
	accounts.GET("/:id", accountHandler.GetAccount)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)
	accounts.GET("/:id/balance", accountHandler.GetAccountBalance)
	accounts.GET("/:id/transactions", transactionHandler.ListAccountTransactions)

	categories := scoped.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.ListCategories)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	transactions := scoped.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	transfers := scoped.Group("/transfers")
	transfers.POST("", transferHandler.CreateTransfer)
	transfers.GET("/:id", transferHandler.GetTransfer)
	transfers.DELETE("/:id", transferHandler.DeleteTransfer)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// scoped makes a household-scoped request carrying the tenant header.
func (app *testApp) scoped(method, path, body, token, householdID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if householdID != "" {
		req.Header.Set(middleware.TenantHeader, householdID)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// assertErrorCode fails the test unless the response body carries the given error code.
func assertErrorCode(t *testing.T, rec *httptest.ResponseRecorder, code string) {
	t.Helper()
	result := parseJSON(t, rec)
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"display_name":"Test User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["access_token"].(string), result["refresh_token"].(string), user["id"].(string)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["access_token"].(string), result["refresh_token"].(string)
}

// createHousehold creates a household and returns its ID.
func (app *testApp) createHousehold(t *testing.T, token, name string) string {
	t.Helper()
	rec := app.request("POST", "/api/v1/households", fmt.Sprintf(`{"name":%q}`, name), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create household failed: %d %s", rec.Code, rec.Body.String())
	}
	household := parseJSON(t, rec)["household"].(map[string]interface{})
	return household["id"].(string)
}

// createAccountGroup creates an account group and returns its ID.
func (app *testApp) createAccountGroup(t *testing.T, token, householdID, name string) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"kind":"bank"}`, name)
	rec := app.scoped("POST", "/api/v1/account-groups", body, token, householdID)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create account group failed: %d %s", rec.Code, rec.Body.String())
	}
	group := parseJSON(t, rec)["account_group"].(map[string]interface{})
	return group["id"].(string)
}

// createAccount creates a household-scope account and returns its ID.
func (app *testApp) createAccount(t *testing.T, token, householdID, groupID, name, startingBalance string) string {
	t.Helper()
	body := fmt.Sprintf(`{"group_id":%q,"name":%q,"starting_balance":%q}`, groupID, name, startingBalance)
	rec := app.scoped("POST", "/api/v1/accounts", body, token, householdID)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create account failed: %d %s", rec.Code, rec.Body.String())
	}
	account := parseJSON(t, rec)["account"].(map[string]interface{})
	return account["id"].(string)
}

// accountBalance fetches the derived balance of an account as a string.
func (app *testApp) accountBalance(t *testing.T, token, householdID, accountID string) string {
	t.Helper()
	rec := app.scoped("GET", "/api/v1/accounts/"+accountID+"/balance", "", token, householdID)
	if rec.Code != http.StatusOK {
		t.Fatalf("get balance failed: %d %s", rec.Code, rec.Body.String())
	}
	balance := parseJSON(t, rec)["balance"].(map[string]interface{})
	return balance["balance"].(string)
}
