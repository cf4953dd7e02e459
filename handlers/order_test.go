package handlers

import (
	"net/http"
	"testing"

	"woolcrafts-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type orderFixture struct {
	db      *gorm.DB
	router  *gin.Engine
	sweater models.Product
}

func newOrderFixture(t *testing.T) orderFixture {
	t.Helper()
	db := freshDB(t)
	men := seedCategory(t, db, "Men")
	sweaters := seedSubcategory(t, db, "Sweaters", men.ID)
	return orderFixture{
		db:      db,
		router:  setupRouter(db, newMockBlobStore()),
		sweater: seedProduct(t, db, "Cable Knit Sweater", sweaters, 400, 5),
	}
}

func orderBody(productID uuid.UUID, quantity int) map[string]interface{} {
	return map[string]interface{}{
		"customerName": "Asha Rao",
		"phone":        "9876543210",
		"shippingAddress": map[string]string{
			"street": "12 MG Road", "city": "Pune", "state": "MH", "pincode": "411001",
		},
		"paymentMethod": "COD",
		"items": []map[string]interface{}{
			{"productId": productID.String(), "quantity": quantity, "price": 1},
		},
	}
}

func placeOrder(t *testing.T, f orderFixture, token string, quantity int) string {
	t.Helper()
	req := jsonRequest("POST", "/api/orders", orderBody(f.sweater.ID, quantity))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := serve(f.router, req)
	expectStatus(t, w, http.StatusCreated)

	order, _ := parseResponse(w)["order"].(map[string]interface{})
	id, _ := order["id"].(string)
	if id == "" {
		t.Fatal("expected order id in response")
	}
	return id
}

func TestCreateOrderAsGuest(t *testing.T) {
	f := newOrderFixture(t)

	w := serve(f.router, jsonRequest("POST", "/api/orders", orderBody(f.sweater.ID, 2)))
	expectStatus(t, w, http.StatusCreated)

	order, _ := parseResponse(w)["order"].(map[string]interface{})
	if order["total"] != 850.0 {
		t.Errorf("expected total 850 (800 + 50 shipping), got %v", order["total"])
	}
	if order["userId"] != nil {
		t.Errorf("expected guest order, got userId %v", order["userId"])
	}
	if got := productStock(t, f.db, f.sweater.ID); got != 3 {
		t.Errorf("expected stock 3, got %d", got)
	}
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	f := newOrderFixture(t)

	w := serve(f.router, jsonRequest("POST", "/api/orders", orderBody(f.sweater.ID, 6)))
	expectStatus(t, w, http.StatusBadRequest)
	expectMessage(t, w, `Sorry! Only 5 items of "Cable Knit Sweater" available in stock`)

	if got := productStock(t, f.db, f.sweater.ID); got != 5 {
		t.Errorf("expected stock untouched at 5, got %d", got)
	}
}

func TestCreateOrderRequiresItems(t *testing.T) {
	f := newOrderFixture(t)

	body := orderBody(f.sweater.ID, 1)
	body["items"] = []interface{}{}
	w := serve(f.router, jsonRequest("POST", "/api/orders", body))
	expectStatus(t, w, http.StatusBadRequest)
	expectMessage(t, w, "Order items required")
}

func TestCreateOrderClearsUserCart(t *testing.T) {
	f := newOrderFixture(t)
	_, token := seedTestUser(t, f.db, "buyer@example.com", models.RoleUser)

	w := serve(f.router, authRequest("POST", "/api/cart", map[string]interface{}{
		"productId": f.sweater.ID.String(), "quantity": 1,
	}, token))
	expectStatus(t, w, http.StatusOK)

	placeOrder(t, f, token, 1)

	w = serve(f.router, authRequest("GET", "/api/cart", nil, token))
	expectStatus(t, w, http.StatusOK)
	if got := len(parseResponseArray(w)); got != 0 {
		t.Errorf("expected cart cleared after order, got %d items", got)
	}

	w = serve(f.router, authRequest("GET", "/api/user/orders", nil, token))
	expectStatus(t, w, http.StatusOK)
	if orders, _ := parseResponse(w)["orders"].([]interface{}); len(orders) != 1 {
		t.Errorf("expected 1 order for user, got %d", len(orders))
	}
}

func TestCancelOrderRestoresStockOnce(t *testing.T) {
	f := newOrderFixture(t)
	_, token := seedTestUser(t, f.db, "buyer@example.com", models.RoleUser)

	id := placeOrder(t, f, token, 2)
	if got := productStock(t, f.db, f.sweater.ID); got != 3 {
		t.Fatalf("expected stock 3 after order, got %d", got)
	}

	w := serve(f.router, authRequest("PUT", "/api/orders/"+id+"/cancel", nil, token))
	expectStatus(t, w, http.StatusOK)
	expectMessage(t, w, "Order cancelled successfully")
	if got := productStock(t, f.db, f.sweater.ID); got != 5 {
		t.Errorf("expected stock restored to 5, got %d", got)
	}

	w = serve(f.router, authRequest("PUT", "/api/orders/"+id+"/cancel", nil, token))
	expectStatus(t, w, http.StatusBadRequest)
	if got := productStock(t, f.db, f.sweater.ID); got != 5 {
		t.Errorf("expected stock to stay at 5, got %d", got)
	}
}

func TestCancelOrderOfAnotherUser(t *testing.T) {
	f := newOrderFixture(t)
	_, owner := seedTestUser(t, f.db, "owner@example.com", models.RoleUser)
	_, other := seedTestUser(t, f.db, "other@example.com", models.RoleUser)

	id := placeOrder(t, f, owner, 1)

	w := serve(f.router, authRequest("PUT", "/api/orders/"+id+"/cancel", nil, other))
	expectStatus(t, w, http.StatusForbidden)
	expectMessage(t, w, "You can only cancel your own orders")

	w = serve(f.router, jsonRequest("PUT", "/api/orders/"+id+"/cancel", nil))
	expectStatus(t, w, http.StatusUnauthorized)
}

func TestGetOrderAccess(t *testing.T) {
	f := newOrderFixture(t)
	_, owner := seedTestUser(t, f.db, "owner@example.com", models.RoleUser)
	_, other := seedTestUser(t, f.db, "other@example.com", models.RoleUser)
	_, admin := seedTestUser(t, f.db, "admin@example.com", models.RoleAdmin)

	userOrder := placeOrder(t, f, owner, 1)
	guestOrder := placeOrder(t, f, "", 1)

	expectStatus(t, serve(f.router, authRequest("GET", "/api/orders/"+userOrder, nil, owner)), http.StatusOK)
	expectStatus(t, serve(f.router, authRequest("GET", "/api/orders/"+userOrder, nil, admin)), http.StatusOK)
	expectStatus(t, serve(f.router, authRequest("GET", "/api/orders/"+userOrder, nil, other)), http.StatusForbidden)
	expectStatus(t, serve(f.router, jsonRequest("GET", "/api/orders/"+userOrder, nil)), http.StatusForbidden)
	expectStatus(t, serve(f.router, jsonRequest("GET", "/api/orders/"+guestOrder, nil)), http.StatusOK)
	expectStatus(t, serve(f.router, jsonRequest("GET", "/api/orders/"+uuid.NewString(), nil)), http.StatusNotFound)
}

func TestAdminStatusUpdate(t *testing.T) {
	f := newOrderFixture(t)
	_, admin := seedTestUser(t, f.db, "admin@example.com", models.RoleAdmin)
	_, customer := seedTestUser(t, f.db, "buyer@example.com", models.RoleUser)
	id := placeOrder(t, f, "", 2)

	w := serve(f.router, authRequest("PUT", "/api/orders/"+id+"/status", map[string]string{"status": "shipped"}, customer))
	expectStatus(t, w, http.StatusForbidden)

	w = serve(f.router, authRequest("PUT", "/api/orders/"+id+"/status", map[string]string{"status": "processing"}, admin))
	expectStatus(t, w, http.StatusOK)
	order, _ := parseResponse(w)["order"].(map[string]interface{})
	if order["status"] != "Processing" {
		t.Errorf("expected canonical status 'Processing', got %v", order["status"])
	}

	w = serve(f.router, authRequest("PUT", "/api/orders/"+id, map[string]string{"status": "Pending"}, admin))
	expectStatus(t, w, http.StatusBadRequest)

	w = serve(f.router, authRequest("PUT", "/api/orders/"+id+"/status", map[string]string{"status": "Cancelled"}, admin))
	expectStatus(t, w, http.StatusOK)
	if got := productStock(t, f.db, f.sweater.ID); got != 5 {
		t.Errorf("expected stock restored to 5, got %d", got)
	}

	w = serve(f.router, authRequest("PUT", "/api/orders/"+id+"/status", map[string]string{"status": "bogus"}, admin))
	expectStatus(t, w, http.StatusBadRequest)
}

func TestUpdatePaymentPermissions(t *testing.T) {
	f := newOrderFixture(t)
	_, admin := seedTestUser(t, f.db, "admin@example.com", models.RoleAdmin)
	id := placeOrder(t, f, "", 1)

	w := serve(f.router, jsonRequest("PUT", "/api/orders/"+id+"/payment", map[string]string{
		"paymentMethod": "UPI", "transactionId": "TXN-1",
	}))
	expectStatus(t, w, http.StatusOK)

	w = serve(f.router, jsonRequest("PUT", "/api/orders/"+id+"/payment", map[string]string{
		"paymentStatus": "Completed",
	}))
	expectStatus(t, w, http.StatusForbidden)

	w = serve(f.router, authRequest("PUT", "/api/orders/"+id+"/payment", map[string]string{
		"paymentStatus": "Completed",
	}, admin))
	expectStatus(t, w, http.StatusOK)
	order, _ := parseResponse(w)["order"].(map[string]interface{})
	if order["status"] != "Processing" {
		t.Errorf("expected completed payment to advance to Processing, got %v", order["status"])
	}
	if order["transactionId"] != "TXN-1" {
		t.Errorf("expected transaction id kept, got %v", order["transactionId"])
	}
}

func TestListAndDeleteOrders(t *testing.T) {
	f := newOrderFixture(t)
	_, admin := seedTestUser(t, f.db, "admin@example.com", models.RoleAdmin)
	id := placeOrder(t, f, "", 2)
	placeOrder(t, f, "", 1)

	w := serve(f.router, authRequest("GET", "/api/orders", nil, admin))
	expectStatus(t, w, http.StatusOK)
	if got := len(parseResponseArray(w)); got != 2 {
		t.Errorf("expected 2 orders, got %d", got)
	}

	w = serve(f.router, authRequest("DELETE", "/api/orders/"+id, nil, admin))
	expectStatus(t, w, http.StatusOK)
	if got := productStock(t, f.db, f.sweater.ID); got != 4 {
		t.Errorf("expected stock 4 after deleting the 2-item order, got %d", got)
	}

	w = serve(f.router, authRequest("DELETE", "/api/orders/"+id, nil, admin))
	expectStatus(t, w, http.StatusNotFound)
}
