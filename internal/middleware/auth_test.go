package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"hearth/internal/auth"
	"hearth/internal/models"
	"hearth/internal/services"
	"hearth/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testSecret = []byte("test-secret")

func testIssuer() *auth.Issuer {
	return &auth.Issuer{
		Secret:     testSecret,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
		SessionTTL: 30 * 24 * time.Hour,
	}
}

func setupAuthRouter() *gin.Engine {
	r := gin.New()
	r.Use(Authenticate(
		&auth.SessionResolver{Secret: testSecret},
		&auth.BearerResolver{Secret: testSecret},
	))
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(ContextUserID)})
	})
	return r
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
	return result
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := parseBody(t, rec)
	errObj, ok := body["error"].(map[string]interface{})
	if !ok {
		t.Fatal("expected error object in response")
	}
	code, _ := errObj["code"].(string)
	return code
}

func TestAuthenticate(t *testing.T) {
	issuer := testIssuer()
	user := &models.User{Email: "test@example.com"}
	user.ID = "user-1"

	t.Run("bearer_access_token", func(t *testing.T) {
		router := setupAuthRouter()
		token, err := issuer.AccessToken(user)
		testutil.AssertNoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		body := parseBody(t, rec)
		if body["user_id"] != "user-1" {
			t.Errorf("expected user-1, got %v", body["user_id"])
		}
	})

	t.Run("session_cookie", func(t *testing.T) {
		router := setupAuthRouter()
		token, err := issuer.SessionToken(user)
		testutil.AssertNoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
	})

	t.Run("session_cookie_takes_precedence", func(t *testing.T) {
		router := setupAuthRouter()
		other := &models.User{Email: "other@example.com"}
		other.ID = "user-2"

		sessionToken, err := issuer.SessionToken(user)
		testutil.AssertNoError(t, err)
		accessToken, err := issuer.AccessToken(other)
		testutil.AssertNoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: sessionToken})
		req.Header.Set("Authorization", "Bearer "+accessToken)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		body := parseBody(t, rec)
		if body["user_id"] != "user-1" {
			t.Errorf("expected session user user-1, got %v", body["user_id"])
		}
	})

	t.Run("refresh_token_rejected_as_access", func(t *testing.T) {
		router := setupAuthRouter()
		token, err := issuer.RefreshToken(user)
		testutil.AssertNoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("access_token_rejected_as_session", func(t *testing.T) {
		router := setupAuthRouter()
		token, err := issuer.AccessToken(user)
		testutil.AssertNoError(t, err)

		// An access token in the session cookie must not authenticate by
		// itself; the bearer resolver never reads cookies.
		req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("no_credentials", func(t *testing.T) {
		router := setupAuthRouter()

		req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
		if code := errorCode(t, rec); code != "UNAUTHENTICATED" {
			t.Errorf("error code = %q, want UNAUTHENTICATED", code)
		}
	})

	t.Run("garbage_token", func(t *testing.T) {
		router := setupAuthRouter()

		req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
		req.Header.Set("Authorization", "Bearer not.a.jwt")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})
}

func TestRequireHousehold(t *testing.T) {
	setup := func(t *testing.T) (*gin.Engine, *models.User, *models.Household, func()) {
		db := testutil.SetupTestDB(t)
		user := testutil.CreateTestUser(t, db)
		household := testutil.CreateTestHousehold(t, db, user.ID)

		r := gin.New()
		r.Use(Authenticate(&auth.BearerResolver{Secret: testSecret}))
		r.Use(RequireHousehold(services.NewHouseholdService(db)))
		r.GET("/test", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"household_id": c.GetString(ContextHouseholdID),
				"role":         c.GetString(ContextRole),
			})
		})
		return r, user, household, func() { testutil.TeardownTestDB(t, db) }
	}

	request := func(router *gin.Engine, user *models.User, householdID string) *httptest.ResponseRecorder {
		token, _ := testIssuer().AccessToken(user)
		req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
		req.Header.Set("Authorization", "Bearer "+token)
		if householdID != "" {
			req.Header.Set(TenantHeader, householdID)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	t.Run("member_passes", func(t *testing.T) {
		router, user, household, teardown := setup(t)
		defer teardown()

		rec := request(router, user, household.ID)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		body := parseBody(t, rec)
		if body["household_id"] != household.ID {
			t.Errorf("expected household %s, got %v", household.ID, body["household_id"])
		}
		if body["role"] != string(models.RoleOwner) {
			t.Errorf("expected role owner, got %v", body["role"])
		}
	})

	t.Run("missing_header", func(t *testing.T) {
		router, user, _, teardown := setup(t)
		defer teardown()

		rec := request(router, user, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
		if code := errorCode(t, rec); code != "MISSING_TENANT" {
			t.Errorf("error code = %q, want MISSING_TENANT", code)
		}
	})

	t.Run("unknown_household", func(t *testing.T) {
		router, user, _, teardown := setup(t)
		defer teardown()

		rec := request(router, user, "00000000-0000-0000-0000-000000000000")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
		if code := errorCode(t, rec); code != "HOUSEHOLD_NOT_FOUND" {
			t.Errorf("error code = %q, want HOUSEHOLD_NOT_FOUND", code)
		}
	})

	t.Run("non_member", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		owner := testutil.CreateTestUser(t, db)
		outsider := testutil.CreateTestUser(t, db)
		household := testutil.CreateTestHousehold(t, db, owner.ID)

		r := gin.New()
		r.Use(Authenticate(&auth.BearerResolver{Secret: testSecret}))
		r.Use(RequireHousehold(services.NewHouseholdService(db)))
		r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

		rec := request(r, outsider, household.ID)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
		}
		if code := errorCode(t, rec); code != "NOT_A_MEMBER" {
			t.Errorf("error code = %q, want NOT_A_MEMBER", code)
		}
	})
}
