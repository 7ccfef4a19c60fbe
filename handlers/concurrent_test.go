// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/blackmarket/auth"
	"github.com/danielhkuo/blackmarket/models"
	"github.com/danielhkuo/blackmarket/testutil"
)

// TestConcurrentTransfers verifies that simultaneous thefts from one account
// never take more than the account holds
func TestConcurrentTransfers(t *testing.T) {
	env := newTestEnv(t)
	handler := NewFederalReserveHandler(env.db, env.cfg, env.views, env.events)

	blue := testutil.CreateTestTeam(t, env.db, "Blue", 0)
	red := testutil.CreateTestTeam(t, env.db, "Red", 5000)
	alice := testutil.CreateTestUser(t, env.db, blue, "alice", "secret", auth.AlgorithmMD5)
	testutil.CreateTestUser(t, env.db, red, "bob", "pw", auth.AlgorithmMD5)

	numAttackers := 10
	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numAttackers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			req := testutil.PostForm("/federal_reserve/json/xfer", url.Values{
				"source":      {"Red"},
				"destination": {"Blue"},
				"amount":      {"1000"},
				"user":        {"bob"},
				"password":    {"pw"},
			})
			req.SetPathValue("command", "xfer")
			w := httptest.NewRecorder()
			handler.Command(w, testutil.AsUser(req, alice))

			var resp models.ReserveResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Errorf("Failed to decode response: %v", err)
				return
			}
			if resp.Success != "" {
				successCount.Add(1)
			}
		}()
	}

	wg.Wait()

	// 5000 covers exactly five transfers of 1000
	if got := successCount.Load(); got != 5 {
		t.Errorf("Expected 5 successful transfers, got %d", got)
	}
	if money := testutil.TeamMoney(t, env.db, red); money != 0 {
		t.Errorf("Expected Red to be emptied, has %d", money)
	}
	if money := testutil.TeamMoney(t, env.db, blue); money != 5*850 {
		t.Errorf("Expected Blue to receive %d, has %d", 5*850, money)
	}
	if n := testutil.CountRows(t, env.db, "wall_of_sheep"); n != 5 {
		t.Errorf("Expected 5 wall of sheep entries, got %d", n)
	}
}

// TestConcurrentPurchases verifies that a team racing to buy the same code
// pays for it once
func TestConcurrentPurchases(t *testing.T) {
	env := newTestEnv(t)
	handler := NewSourceCodeMarketHandler(env.db, env.cfg, env.views)

	team := testutil.CreateTestTeam(t, env.db, "Blue", 5000)
	box := testutil.CreateTestBox(t, env.db, "Vault")
	testutil.CreateTestSourceCode(t, env.db, box, 1500, "vault.json")

	numMembers := 5
	members := make([]models.User, numMembers)
	for i := range members {
		members[i] = testutil.CreateTestUser(t, env.db, team, "member"+string(rune('A'+i)), "secret", auth.AlgorithmMD5)
	}

	var redirects atomic.Int32
	var wg sync.WaitGroup
	for _, member := range members {
		wg.Add(1)
		go func(member models.User) {
			defer wg.Done()

			w := httptest.NewRecorder()
			handler.Post(w, testutil.AsUser(testutil.PostForm("/source_code_market", url.Values{
				"box_uuid": {box.UUID},
			}), member))
			if w.Code == http.StatusFound {
				redirects.Add(1)
			}
		}(member)
	}

	wg.Wait()

	if got := redirects.Load(); got != 1 {
		t.Errorf("Expected exactly 1 purchase, got %d", got)
	}
	if money := testutil.TeamMoney(t, env.db, team); money != 3500 {
		t.Errorf("Expected team to pay once, has %d", money)
	}
	if n := testutil.CountRows(t, env.db, "team_source_code"); n != 1 {
		t.Errorf("Expected 1 purchase row, got %d", n)
	}
}
