package integration

import (
	"fmt"
	"net/http"
	"testing"
)

// joinHousehold invites and accepts a second user into the household.
func (app *testApp) joinHousehold(t *testing.T, ownerToken, householdID, email, memberToken string) {
	t.Helper()
	rec := app.scoped("POST", "/api/v1/households/current/invitations",
		fmt.Sprintf(`{"email":%q}`, email), ownerToken, householdID)
	if rec.Code != http.StatusCreated {
		t.Fatalf("invite failed: %d %s", rec.Code, rec.Body.String())
	}
	invToken := parseJSON(t, rec)["invitation"].(map[string]interface{})["token"].(string)

	rec = app.request("POST", "/api/v1/invitations/accept",
		fmt.Sprintf(`{"token":%q}`, invToken), memberToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("accept failed: %d %s", rec.Code, rec.Body.String())
	}
}

func TestAccountFlow_ScopeVisibility(t *testing.T) {
	app := setupApp(t)
	oliviaToken, _, _ := app.registerUser(t, "olivia@test.com", "password123")
	householdID := app.createHousehold(t, oliviaToken, "Maple Street")
	marcusToken, _, _ := app.registerUser(t, "marcus@test.com", "password123")
	app.joinHousehold(t, oliviaToken, householdID, "marcus@test.com", marcusToken)

	groupID := app.createAccountGroup(t, oliviaToken, householdID, "Bank")
	jointID := app.createAccount(t, oliviaToken, householdID, groupID, "Joint Checking", "1000.00")

	// Olivia creates a personal wallet.
	rec := app.scoped("POST", "/api/v1/accounts",
		fmt.Sprintf(`{"group_id":%q,"name":"O-Wallet","scope":"personal"}`, groupID),
		oliviaToken, householdID)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create personal account failed: %d %s", rec.Code, rec.Body.String())
	}
	wallet := parseJSON(t, rec)["account"].(map[string]interface{})
	walletID := wallet["id"].(string)
	if wallet["scope"] != "personal" {
		t.Errorf("expected personal scope, got %v", wallet["scope"])
	}

	// Marcus sees the joint account.
	rec = app.scoped("GET", "/api/v1/accounts/"+jointID, "", marcusToken, householdID)
	if rec.Code != http.StatusOK {
		t.Errorf("expected member to see household account, got %d: %s", rec.Code, rec.Body.String())
	}

	// Marcus cannot open Olivia's wallet.
	rec = app.scoped("GET", "/api/v1/accounts/"+walletID, "", marcusToken, householdID)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for another member's personal account, got %d", rec.Code)
	}
	assertErrorCode(t, rec, "FORBIDDEN")

	// Marcus's account listing excludes the wallet.
	rec = app.scoped("GET", "/api/v1/accounts", "", marcusToken, householdID)
	if rec.Code != http.StatusOK {
		t.Fatalf("list accounts failed: %d %s", rec.Code, rec.Body.String())
	}
	listing := parseJSON(t, rec)["data"].([]interface{})
	for _, raw := range listing {
		account := raw.(map[string]interface{})
		if account["id"] == walletID {
			t.Error("personal account leaked into another member's listing")
		}
	}

	// Olivia still sees both.
	rec = app.scoped("GET", "/api/v1/accounts", "", oliviaToken, householdID)
	ownListing := parseJSON(t, rec)["data"].([]interface{})
	if len(ownListing) != 2 {
		t.Errorf("expected owner to see 2 accounts, got %d", len(ownListing))
	}
}

func TestAccountFlow_BalanceIsDerived(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "olivia@test.com", "password123")
	householdID := app.createHousehold(t, token, "Maple Street")
	groupID := app.createAccountGroup(t, token, householdID, "Bank")
	accountID := app.createAccount(t, token, householdID, groupID, "Checking", "200.00")

	if got := app.accountBalance(t, token, householdID, accountID); got != "200.00" {
		t.Errorf("expected starting balance 200.00, got %s", got)
	}

	// Income raises the balance, expense lowers it.
	rec := app.scoped("POST", "/api/v1/transactions",
		fmt.Sprintf(`{"account_id":%q,"type":"income","amount":"150.50"}`, accountID),
		token, householdID)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create income failed: %d %s", rec.Code, rec.Body.String())
	}
	rec = app.scoped("POST", "/api/v1/transactions",
		fmt.Sprintf(`{"account_id":%q,"type":"expense","amount":"50.25"}`, accountID),
		token, householdID)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create expense failed: %d %s", rec.Code, rec.Body.String())
	}

	if got := app.accountBalance(t, token, householdID, accountID); got != "300.25" {
		t.Errorf("expected balance 300.25, got %s", got)
	}
}

func TestAccountFlow_NonEmptyGroupCannotBeDeleted(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "olivia@test.com", "password123")
	householdID := app.createHousehold(t, token, "Maple Street")
	groupID := app.createAccountGroup(t, token, householdID, "Bank")
	app.createAccount(t, token, householdID, groupID, "Checking", "0.00")

	rec := app.scoped("DELETE", "/api/v1/account-groups/"+groupID, "", token, householdID)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 deleting a non-empty group, got %d: %s", rec.Code, rec.Body.String())
	}
	assertErrorCode(t, rec, "INVALID_OPERATION")
}
