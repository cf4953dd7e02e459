package handlers

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"woolcrafts-backend/models"
)

func TestBannersDefaultToEmptyList(t *testing.T) {
	db := freshDB(t)
	router := setupRouter(db, newMockBlobStore())

	w := serve(router, jsonRequest("GET", "/api/settings/banners", nil))
	expectStatus(t, w, http.StatusOK)
	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Errorf("expected [], got %s", body)
	}
}

func TestSaveBanners(t *testing.T) {
	db := freshDB(t)
	router := setupRouter(db, newMockBlobStore())
	_, adminToken := seedTestUser(t, db, "admin@example.com", models.RoleAdmin)

	banners := []map[string]string{
		{"image": "/uploads/banners/a.png", "title": "Winter Sale"},
		{"image": "/uploads/banners/b.png", "title": "New Arrivals"},
	}
	w := serve(router, authRequest("POST", "/api/settings/banners", map[string]interface{}{"banners": banners}, adminToken))
	expectStatus(t, w, http.StatusOK)
	expectMessage(t, w, "Banners saved successfully")

	w = serve(router, jsonRequest("GET", "/api/settings/banners", nil))
	expectStatus(t, w, http.StatusOK)
	saved := parseResponseArray(w)
	if len(saved) != 2 {
		t.Fatalf("expected 2 banners, got %d", len(saved))
	}
	first, _ := saved[0].(map[string]interface{})
	if first["title"] != "Winter Sale" {
		t.Errorf("expected order preserved, got %v", first["title"])
	}
}

func TestSaveBannersDeletesDroppedImages(t *testing.T) {
	db := freshDB(t)
	blobs := newMockBlobStore()
	router := setupRouter(db, blobs)
	_, adminToken := seedTestUser(t, db, "admin@example.com", models.RoleAdmin)

	first := []map[string]string{
		{"image": "/uploads/banners/a.png"},
		{"image": "/uploads/banners/b.png"},
	}
	w := serve(router, authRequest("POST", "/api/settings/banners", map[string]interface{}{"banners": first}, adminToken))
	expectStatus(t, w, http.StatusOK)
	if len(blobs.DeleteCalls) != 0 {
		t.Fatalf("expected no deletes on first save, got %v", blobs.DeleteCalls)
	}

	second := []map[string]string{{"image": "/uploads/banners/b.png"}}
	w = serve(router, authRequest("POST", "/api/settings/banners", map[string]interface{}{"banners": second}, adminToken))
	expectStatus(t, w, http.StatusOK)
	if len(blobs.DeleteCalls) != 1 || blobs.DeleteCalls[0] != "/uploads/banners/a.png" {
		t.Errorf("expected only a.png to be deleted, got %v", blobs.DeleteCalls)
	}
}

func TestSaveBannersDeleteFailureStillSaves(t *testing.T) {
	db := freshDB(t)
	blobs := newMockBlobStore()
	blobs.DeleteFn = func(string) error { return errors.New("bucket unavailable") }
	router := setupRouter(db, blobs)
	_, adminToken := seedTestUser(t, db, "admin@example.com", models.RoleAdmin)

	serve(router, authRequest("POST", "/api/settings/banners", map[string]interface{}{"banners": []string{"/uploads/banners/a.png"}}, adminToken))
	w := serve(router, authRequest("POST", "/api/settings/banners", map[string]interface{}{"banners": []string{}}, adminToken))
	expectStatus(t, w, http.StatusOK)

	w = serve(router, jsonRequest("GET", "/api/settings/banners", nil))
	if got := len(parseResponseArray(w)); got != 0 {
		t.Errorf("expected empty banner list, got %d", got)
	}
}

func TestSaveBannersRejectsNonList(t *testing.T) {
	db := freshDB(t)
	router := setupRouter(db, newMockBlobStore())
	_, adminToken := seedTestUser(t, db, "admin@example.com", models.RoleAdmin)

	w := serve(router, authRequest("POST", "/api/settings/banners", map[string]interface{}{"banners": "nope"}, adminToken))
	expectStatus(t, w, http.StatusBadRequest)
	expectMessage(t, w, "Banners must be a list")
}

func TestUploadBanner(t *testing.T) {
	db := freshDB(t)
	blobs := newMockBlobStore()
	router := setupRouter(db, blobs)
	_, adminToken := seedTestUser(t, db, "admin@example.com", models.RoleAdmin)

	w := serve(router, multipartRequest("/api/upload/banner", "banner", "winter.png", "image/png", adminToken))
	expectStatus(t, w, http.StatusOK)

	resp := parseResponse(w)
	if resp["url"] != "/uploads/banners/winter.png" {
		t.Errorf("expected stored url, got %v", resp["url"])
	}
	if string(blobs.Uploaded["winter.png"]) != "fake image data" {
		t.Error("expected file contents passed to the blob store")
	}
}

func TestUploadBannerValidation(t *testing.T) {
	db := freshDB(t)
	router := setupRouter(db, newMockBlobStore())
	_, adminToken := seedTestUser(t, db, "admin@example.com", models.RoleAdmin)

	w := serve(router, multipartRequest("/api/upload/banner", "", "", "", adminToken))
	expectStatus(t, w, http.StatusBadRequest)
	expectMessage(t, w, "No file uploaded")

	w = serve(router, multipartRequest("/api/upload/banner", "banner", "notes.txt", "text/plain", adminToken))
	expectStatus(t, w, http.StatusBadRequest)

	w = serve(router, multipartRequest("/api/upload/banner", "banner", "winter.png", "image/png", ""))
	expectStatus(t, w, http.StatusUnauthorized)
}

func TestUploadBannerStoreFailure(t *testing.T) {
	db := freshDB(t)
	blobs := newMockBlobStore()
	blobs.UploadFn = func(string, []byte) (string, error) { return "", errors.New("bucket unavailable") }
	router := setupRouter(db, blobs)
	_, adminToken := seedTestUser(t, db, "admin@example.com", models.RoleAdmin)

	w := serve(router, multipartRequest("/api/upload/banner", "banner", "winter.png", "image/png", adminToken))
	expectStatus(t, w, http.StatusInternalServerError)
	expectMessage(t, w, "Upload failed")
}

func TestAdminStats(t *testing.T) {
	db := freshDB(t)
	router := setupRouter(db, newMockBlobStore())
	_, adminToken := seedTestUser(t, db, "admin@example.com", models.RoleAdmin)
	men := seedCategory(t, db, "Men")
	sub := seedSubcategory(t, db, "Sweaters", men.ID)
	seedProduct(t, db, "Cable Knit Sweater", sub, 400, 2)
	seedProduct(t, db, "Aran Pullover", sub, 1200, 40)

	w := serve(router, authRequest("GET", "/api/admin/stats", nil, adminToken))
	expectStatus(t, w, http.StatusOK)

	resp := parseResponse(w)
	if resp["success"] != true {
		t.Errorf("expected success flag, got %v", resp["success"])
	}
	if resp["totalProducts"] != 2.0 || resp["totalCategories"] != 1.0 || resp["totalUsers"] != 1.0 {
		t.Errorf("unexpected totals: %v", resp)
	}
	if low, _ := resp["lowStockProducts"].([]interface{}); len(low) != 1 {
		t.Errorf("expected 1 low stock product, got %v", resp["lowStockProducts"])
	}

	// A new order is visible immediately because order writes drop the cached figures.
	w = serve(router, jsonRequest("POST", "/api/orders", map[string]interface{}{
		"customerName": "Guest",
		"items":        []map[string]interface{}{{"productId": seedProduct(t, db, "Beanie", sub, 100, 10).ID.String(), "quantity": 1}},
	}))
	expectStatus(t, w, http.StatusCreated)

	w = serve(router, authRequest("GET", "/api/admin/stats?refresh=true", nil, adminToken))
	expectStatus(t, w, http.StatusOK)
	if got := parseResponse(w)["totalOrders"]; got != 1.0 {
		t.Errorf("expected 1 order after refresh, got %v", got)
	}
}

func TestAdminStatsRequiresAdmin(t *testing.T) {
	db := freshDB(t)
	router := setupRouter(db, newMockBlobStore())
	_, userToken := seedTestUser(t, db, "buyer@example.com", models.RoleUser)

	w := serve(router, authRequest("GET", "/api/admin/stats", nil, userToken))
	expectStatus(t, w, http.StatusForbidden)
}
