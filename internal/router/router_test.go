package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"ranchbook/internal/router"
)

func TestHTTP_EndToEnd_HerdAndTeam(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	owner := debugUser{ID: "owner-1", Email: "owner@ranch.com"}
	hand := debugUser{ID: "hand-1", Email: "hand@ranch.com"}

	// 1) Owner crea ranch
	ranchID := createRanch(t, ts.URL, owner, "Circle K")

	// 2) Owner crea vaca con tag 101
	cowID := createCow(t, ts.URL, owner, ranchID, map[string]any{
		"name":   "Bella",
		"status": "wet",
		"breed":  "Angus",
		"tags":   []map[string]string{{"number": "101"}},
	})

	// 3) Tag duplicado => 409 con número y vaca dueña
	{
		st, body := doReq(t, ts.URL, "POST", "/ranches/"+ranchID+"/cows", owner, map[string]any{
			"status": "dry",
			"tags":   []map[string]string{{"number": " 101 "}},
		})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 duplicate tag, got %d body=%s", st, string(body))
		}
		var resp struct {
			Number string `json:"number"`
			CowID  string `json:"cow_id"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Number != "101" || resp.CowID != cowID {
			t.Fatalf("expected duplicate payload 101/%s, got %#v", cowID, resp)
		}
	}

	// 4) Lookup por tag
	{
		st, body := doReq(t, ts.URL, "GET", "/ranches/"+ranchID+"/cows/by-tag/101", owner, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 by-tag, got %d body=%s", st, string(body))
		}
	}

	// 5) No-miembro no ve nada
	{
		st, _ := doReq(t, ts.URL, "GET", "/ranches/"+ranchID+"/cows", hand, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 for non-member, got %d", st)
		}
	}

	// 6) Owner invita con rol read; el invitado la ve y acepta
	{
		st, body := doReq(t, ts.URL, "POST", "/ranches/"+ranchID+"/members", owner, map[string]any{
			"email": hand.Email,
			"role":  "read",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 invite, got %d body=%s", st, string(body))
		}

		st, body = doReq(t, ts.URL, "GET", "/me/invites", hand, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 listing invites, got %d body=%s", st, string(body))
		}

		st, body = doReq(t, ts.URL, "POST", "/me/invites/"+ranchID+"/accept", hand, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 accept invite, got %d body=%s", st, string(body))
		}
	}

	// 7) Miembro read ve el ganado pero no puede escribir
	{
		st, body := doReq(t, ts.URL, "GET", "/ranches/"+ranchID+"/cows", hand, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 herd for read member, got %d body=%s", st, string(body))
		}

		st, _ = doReq(t, ts.URL, "POST", "/ranches/"+ranchID+"/cows", hand, map[string]any{
			"status": "dry",
			"tags":   []map[string]string{{"number": "202"}},
		})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 create by read member, got %d", st)
		}

		st, _ = doReq(t, ts.URL, "PATCH", "/cows/"+cowID, hand, map[string]any{
			"name": "Nope",
		})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 patch by read member, got %d", st)
		}
	}

	// 8) Búsqueda por texto
	{
		st, body := doReq(t, ts.URL, "GET", "/ranches/"+ranchID+"/cows?q=angus", owner, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 search, got %d body=%s", st, string(body))
		}
		var results []map[string]any
		_ = json.Unmarshal(body, &results)
		if len(results) != 1 {
			t.Fatalf("expected 1 search result, got %d", len(results))
		}
	}

	// 9) Export de planilla
	{
		req, _ := http.NewRequest("GET", ts.URL+"/ranches/"+ranchID+"/export", nil)
		req.Header.Set("X-Debug-User-ID", owner.ID)
		req.Header.Set("X-Debug-User-Email", owner.Email)
		res, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("export request: %v", err)
		}
		defer res.Body.Close()
		if res.StatusCode != http.StatusOK {
			t.Fatalf("expected 200 export, got %d", res.StatusCode)
		}
		if ct := res.Header.Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
			t.Fatalf("unexpected export content type %q", ct)
		}
		if cd := res.Header.Get("Content-Disposition"); cd == "" {
			t.Fatalf("expected Content-Disposition download header")
		}
	}

	// 10) El único manager no puede bajarse: 409
	{
		memberID := findMemberID(t, ts.URL, owner, ranchID, owner.Email)
		st, _ := doReq(t, ts.URL, "PATCH", "/members/"+memberID, owner, map[string]any{
			"role": "write",
		})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 demoting last manager, got %d", st)
		}
	}

	// 11) Billing del ranch nuevo: free, escribible
	{
		st, body := doReq(t, ts.URL, "GET", "/ranches/"+ranchID+"/billing", owner, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 billing, got %d body=%s", st, string(body))
		}
		var resp struct {
			Tier     string `json:"tier"`
			MaxCows  int    `json:"max_cows"`
			ReadOnly bool   `json:"read_only"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Tier != "free" || resp.MaxCows != 10 || resp.ReadOnly {
			t.Fatalf("unexpected billing %#v", resp)
		}
	}
}

func TestHTTP_Pastures_AndSearchByPastureName(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	owner := debugUser{ID: "owner-1", Email: "owner@ranch.com"}
	ranchID := createRanch(t, ts.URL, owner, "Circle K")

	st, body := doReq(t, ts.URL, "POST", "/ranches/"+ranchID+"/pastures", owner, map[string]any{
		"name": "North Forty",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 pasture, got %d body=%s", st, string(body))
	}
	var pasture struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &pasture)

	createCow(t, ts.URL, owner, ranchID, map[string]any{
		"status":     "wet",
		"pasture_id": pasture.ID,
		"tags":       []map[string]string{{"number": "101"}},
	})

	st, body = doReq(t, ts.URL, "GET", "/ranches/"+ranchID+"/cows?q=north+forty", owner, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 search, got %d body=%s", st, string(body))
	}
	var results []map[string]any
	_ = json.Unmarshal(body, &results)
	if len(results) != 1 {
		t.Fatalf("expected cow found by pasture name, got %d results", len(results))
	}
}

// -------------------------
// helpers
// -------------------------

type debugUser struct {
	ID    string
	Email string
}

func createRanch(t *testing.T, baseURL string, u debugUser, name string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/ranches", u, map[string]any{"name": name})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create ranch, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create ranch: missing id body=%s", string(body))
	}
	return resp.ID
}

func createCow(t *testing.T, baseURL string, u debugUser, ranchID string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/ranches/"+ranchID+"/cows", u, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create cow, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create cow: missing id body=%s", string(body))
	}
	return resp.ID
}

func findMemberID(t *testing.T, baseURL string, u debugUser, ranchID, email string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "GET", "/ranches/"+ranchID+"/members", u, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 list members, got %d body=%s", st, string(body))
	}

	var members []struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	_ = json.Unmarshal(body, &members)
	for _, m := range members {
		if m.Email == email {
			return m.ID
		}
	}
	t.Fatalf("member %s not found in body=%s", email, string(body))
	return ""
}

func doReq(t *testing.T, baseURL, method, path string, u debugUser, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if u.ID != "" {
		req.Header.Set("X-Debug-User-ID", u.ID)
	}
	if u.Email != "" {
		req.Header.Set("X-Debug-User-Email", u.Email)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
