package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftcart/storefront-platform/internal/billing"
	"github.com/swiftcart/storefront-platform/internal/cart"
	"github.com/swiftcart/storefront-platform/internal/catalog"
	storefrontHttp "github.com/swiftcart/storefront-platform/internal/handler/http"
	"github.com/swiftcart/storefront-platform/internal/identity"
	"github.com/swiftcart/storefront-platform/internal/order"
	"github.com/swiftcart/storefront-platform/internal/store"
)

type testEnv struct {
	router   chi.Router
	registry *store.Registry
	provider identity.Provider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	registry := store.NewRegistry(store.NewMemoryRepository())
	carts := cart.NewEngine(cart.NewMemoryRepository())
	catalogSvc := catalog.NewService(registry, nil)
	gate := billing.NewGate(registry)
	orders := order.NewService(registry, carts, &order.WhatsAppNotifier{}, order.DefaultShippingFee)
	provider := identity.NewMemoryProvider()

	authHandler := storefrontHttp.NewAuthHandler(provider)
	storeHandler := storefrontHttp.NewStoreHandler(registry, gate)
	catalogHandler := storefrontHttp.NewCatalogHandler(registry, catalogSvc)
	cartHandler := storefrontHttp.NewCartHandler(registry, carts)
	orderHandler := storefrontHttp.NewOrderHandler(registry, orders)
	toolsHandler := storefrontHttp.NewToolsHandler(nil, nil)

	router := chi.NewRouter()
	authHandler.RegisterRoutes(router)
	storeHandler.RegisterPublicRoutes(router)
	cartHandler.RegisterRoutes(router)
	orderHandler.RegisterPublicRoutes(router)
	router.Group(func(r chi.Router) {
		r.Use(storefrontHttp.RequireAuth(provider))
		storeHandler.RegisterOwnerRoutes(r)
		catalogHandler.RegisterOwnerRoutes(r)
		orderHandler.RegisterOwnerRoutes(r)
		toolsHandler.RegisterOwnerRoutes(r)
	})

	return &testEnv{router: router, registry: registry, provider: provider}
}

func (e *testEnv) do(t *testing.T, method, path, token, sessionID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(jsonBody)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if sessionID != "" {
		req.Header.Set("X-Session-ID", sessionID)
	}

	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) registerAndLogin(t *testing.T, email string) string {
	t.Helper()

	rr := e.do(t, http.MethodPost, "/auth/register", "", "", storefrontHttp.RegisterRequest{
		Email:    email,
		Password: "password123",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = e.do(t, http.MethodPost, "/auth/login", "", "", storefrontHttp.LoginRequest{
		Email:    email,
		Password: "password123",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var loginResponse storefrontHttp.LoginResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&loginResponse))
	require.NotEmpty(t, loginResponse.Token)
	return loginResponse.Token
}

func (e *testEnv) createStore(t *testing.T, token, name, slug string) store.MerchantStore {
	t.Helper()

	rr := e.do(t, http.MethodPost, "/stores", token, "", storefrontHttp.CreateStoreRequest{
		Name:      name,
		StoreSlug: slug,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created store.MerchantStore
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	return created
}

func (e *testEnv) addProduct(t *testing.T, token, storeID, name string, price int64) store.Product {
	t.Helper()

	rr := e.do(t, http.MethodPost, "/stores/"+storeID+"/products", token, "", storefrontHttp.AddProductRequest{
		Name:  name,
		Price: price,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created store.Product
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	return created
}

func TestAuthHandler_RegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/auth/register", "", "", storefrontHttp.RegisterRequest{
		Email:    "merchant@example.com",
		Password: "password123",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = env.do(t, http.MethodPost, "/auth/register", "", "", storefrontHttp.RegisterRequest{
		Email:    "merchant@example.com",
		Password: "password123",
	})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = env.do(t, http.MethodPost, "/auth/login", "", "", storefrontHttp.LoginRequest{
		Email:    "merchant@example.com",
		Password: "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(t, http.MethodPost, "/auth/login", "", "", storefrontHttp.LoginRequest{
		Email:    "merchant@example.com",
		Password: "password123",
	})
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestStoreHandler_CreateRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/stores", "", "", storefrontHttp.CreateStoreRequest{Name: "No Auth"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestStoreHandler_CreateAndBrowseStorefront(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "owner@example.com")

	created := env.createStore(t, token, "Gadget Hub", "gadget-hub")
	assert.Equal(t, "gadget-hub", created.Profile.StoreSlug)
	assert.Equal(t, store.SubscriptionActive, created.Profile.SubscriptionStatus)

	rr := env.do(t, http.MethodGet, "/storefronts/gadget-hub", "", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var storefront storefrontHttp.StorefrontResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&storefront))
	assert.Equal(t, "Gadget Hub", storefront.Profile.Name)

	rr = env.do(t, http.MethodGet, "/storefronts/no-such-store", "", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestStoreHandler_SecondStoreForOwnerConflicts(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "owner@example.com")

	env.createStore(t, token, "First Store", "first-store")

	rr := env.do(t, http.MethodPost, "/stores", token, "", storefrontHttp.CreateStoreRequest{
		Name:      "Second Store",
		StoreSlug: "second-store",
	})
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestStoreHandler_ExpiredStoreBlocksStorefrontNotAdmin(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "owner@example.com")
	created := env.createStore(t, token, "Fading Store", "fading-store")

	rr := env.do(t, http.MethodPost, "/stores/"+created.Profile.ID+"/billing/expire", token, "", nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = env.do(t, http.MethodGet, "/storefronts/fading-store", "", "", nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	sessionID := "session_expired"
	rr = env.do(t, http.MethodPost, "/stores/"+created.Profile.ID+"/cart/items", "", sessionID, storefrontHttp.AddCartItemRequest{ProductID: "p1"})
	assert.Equal(t, http.StatusForbidden, rr.Code, "add-to-cart must be blocked while expired")

	rr = env.do(t, http.MethodPost, "/stores/"+created.Profile.ID+"/checkout", "", sessionID, storefrontHttp.CheckoutRequest{
		Name:    "Ada",
		Email:   "ada@example.com",
		Phone:   "0300-1234567",
		Address: "12 Main Street",
	})
	assert.Equal(t, http.StatusForbidden, rr.Code, "checkout must be blocked while expired")

	rr = env.do(t, http.MethodGet, "/stores/"+created.Profile.ID+"/admin", token, "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodPost, "/stores/"+created.Profile.ID+"/billing/renew", token, "", nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = env.do(t, http.MethodGet, "/storefronts/fading-store", "", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestStoreHandler_CustomDomainLifecycle(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "owner@example.com")
	created := env.createStore(t, token, "Domain Store", "domain-store")

	adminPath := "/stores/" + created.Profile.ID + "/admin"
	verifyPath := "/stores/" + created.Profile.ID + "/domain/verify"

	// Verifying before any domain is configured is a client error.
	rr := env.do(t, http.MethodPost, verifyPath, token, "", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPut, "/stores/"+created.Profile.ID+"/profile", token, "", storefrontHttp.UpdateProfileRequest{
		Name:         "Domain Store",
		CustomDomain: "shop.example.com",
	})
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = env.do(t, http.MethodGet, adminPath, token, "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var admin store.MerchantStore
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&admin))
	assert.Equal(t, store.DomainPending, admin.Profile.DomainStatus)

	rr = env.do(t, http.MethodPost, verifyPath, token, "", nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = env.do(t, http.MethodGet, adminPath, token, "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	admin = store.MerchantStore{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&admin))
	assert.Equal(t, store.DomainActive, admin.Profile.DomainStatus)

	// Dropping the domain drops its status with it.
	rr = env.do(t, http.MethodPut, "/stores/"+created.Profile.ID+"/profile", token, "", storefrontHttp.UpdateProfileRequest{
		Name: "Domain Store",
	})
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = env.do(t, http.MethodGet, adminPath, token, "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	admin = store.MerchantStore{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&admin))
	assert.Empty(t, admin.Profile.DomainStatus)
}

func TestStoreHandler_OwnerRoutesRejectOtherUsers(t *testing.T) {
	env := newTestEnv(t)
	ownerToken := env.registerAndLogin(t, "owner@example.com")
	otherToken := env.registerAndLogin(t, "intruder@example.com")

	created := env.createStore(t, ownerToken, "Guarded Store", "guarded-store")

	rr := env.do(t, http.MethodPut, "/stores/"+created.Profile.ID+"/profile", otherToken, "", storefrontHttp.UpdateProfileRequest{
		Name: "Hijacked",
	})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = env.do(t, http.MethodPost, "/stores/"+created.Profile.ID+"/products", otherToken, "", storefrontHttp.AddProductRequest{
		Name:  "Sneaky Product",
		Price: 100,
	})
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestCatalogHandler_PlanCeiling(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "owner@example.com")
	created := env.createStore(t, token, "Limited Store", "limited-store")

	for i := 1; i <= 5; i++ {
		env.addProduct(t, token, created.Profile.ID, fmt.Sprintf("Product %d", i), 100)
	}

	rr := env.do(t, http.MethodPost, "/stores/"+created.Profile.ID+"/products", token, "", storefrontHttp.AddProductRequest{
		Name:  "One Too Many",
		Price: 100,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	// Deleting a product frees a slot.
	admin, err := env.registry.GetByID(context.Background(), created.Profile.ID)
	require.NoError(t, err)
	rr = env.do(t, http.MethodDelete, "/stores/"+created.Profile.ID+"/products/"+admin.Products[0].ID, token, "", nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = env.do(t, http.MethodPost, "/stores/"+created.Profile.ID+"/products", token, "", storefrontHttp.AddProductRequest{
		Name:  "Fits Again",
		Price: 100,
	})
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestCatalogHandler_FreeProductAllowed(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "owner@example.com")
	created := env.createStore(t, token, "Freebie Store", "freebie-store")

	rr := env.do(t, http.MethodPost, "/stores/"+created.Profile.ID+"/products", token, "", storefrontHttp.AddProductRequest{
		Name:  "Free Sample",
		Price: 0,
	})
	assert.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
}

func TestCartHandler_AddUpdateRemove(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "owner@example.com")
	created := env.createStore(t, token, "Cart Store", "cart-store")
	product := env.addProduct(t, token, created.Profile.ID, "Widget", 500)

	sessionID := "session_test"
	cartPath := "/stores/" + created.Profile.ID + "/cart"

	rr := env.do(t, http.MethodGet, cartPath, "", sessionID, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var cartBody storefrontHttp.CartResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&cartBody))
	assert.Empty(t, cartBody.Items)

	rr = env.do(t, http.MethodPost, cartPath+"/items", "", sessionID, storefrontHttp.AddCartItemRequest{ProductID: product.ID})
	require.Equal(t, http.StatusOK, rr.Code)
	rr = env.do(t, http.MethodPost, cartPath+"/items", "", sessionID, storefrontHttp.AddCartItemRequest{ProductID: product.ID})
	require.Equal(t, http.StatusOK, rr.Code)

	require.NoError(t, json.NewDecoder(rr.Body).Decode(&cartBody))
	require.Len(t, cartBody.Items, 1)
	assert.Equal(t, 2, cartBody.Items[0].Quantity)
	assert.Equal(t, int64(1000), cartBody.Subtotal)

	// Decrement clamps at one instead of removing the line.
	rr = env.do(t, http.MethodPatch, cartPath+"/items/"+product.ID, "", sessionID, storefrontHttp.UpdateCartItemRequest{Delta: -5})
	require.Equal(t, http.StatusOK, rr.Code)
	cartBody = storefrontHttp.CartResponse{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&cartBody))
	require.Len(t, cartBody.Items, 1)
	assert.Equal(t, 1, cartBody.Items[0].Quantity)

	rr = env.do(t, http.MethodDelete, cartPath+"/items/"+product.ID, "", sessionID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	cartBody = storefrontHttp.CartResponse{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&cartBody))
	assert.Empty(t, cartBody.Items)
}

func TestCartHandler_RequiresSessionHeader(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "owner@example.com")
	created := env.createStore(t, token, "Cart Store", "cart-store")

	rr := env.do(t, http.MethodGet, "/stores/"+created.Profile.ID+"/cart", "", "", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestOrderHandler_CheckoutAndTracking(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "owner@example.com")
	created := env.createStore(t, token, "Order Store", "order-store")
	product := env.addProduct(t, token, created.Profile.ID, "Widget", 500)

	sessionID := "session_checkout"
	cartPath := "/stores/" + created.Profile.ID + "/cart"

	rr := env.do(t, http.MethodPost, "/stores/"+created.Profile.ID+"/checkout", "", sessionID, storefrontHttp.CheckoutRequest{
		Name:    "Ada",
		Email:   "ada@example.com",
		Phone:   "0300-1234567",
		Address: "12 Main Street",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code, "empty cart must not check out")

	rr = env.do(t, http.MethodPost, cartPath+"/items", "", sessionID, storefrontHttp.AddCartItemRequest{ProductID: product.ID})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodPost, "/stores/"+created.Profile.ID+"/checkout", "", sessionID, storefrontHttp.CheckoutRequest{
		Name:    "Ada",
		Phone:   "0300-1234567",
		Address: "12 Main Street",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code, "checkout without a customer email must be rejected")

	rr = env.do(t, http.MethodPost, "/stores/"+created.Profile.ID+"/checkout", "", sessionID, storefrontHttp.CheckoutRequest{
		Name:    "Ada",
		Email:   "ada@example.com",
		Phone:   "0300-1234567",
		Address: "12 Main Street",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var placed store.Order
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&placed))
	assert.Contains(t, placed.ID, "SWIFT-")
	assert.Equal(t, "ada@example.com", placed.Customer.Email)
	assert.Equal(t, int64(500+order.DefaultShippingFee), placed.Total)
	assert.Equal(t, store.OrderPending, placed.Status)

	// Checkout clears the cart.
	rr = env.do(t, http.MethodGet, cartPath, "", sessionID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var cartBody storefrontHttp.CartResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&cartBody))
	assert.Empty(t, cartBody.Items)

	rr = env.do(t, http.MethodGet, "/orders/"+placed.ID, "", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var tracked storefrontHttp.TrackOrderResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&tracked))
	assert.Equal(t, placed.ID, tracked.Order.ID)
	assert.Equal(t, "Order Store", tracked.StoreName)

	rr = env.do(t, http.MethodGet, "/orders/SWIFT-UNKNOWN", "", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "owner@example.com")
	created := env.createStore(t, token, "Order Store", "order-store")
	product := env.addProduct(t, token, created.Profile.ID, "Widget", 500)

	sessionID := "session_status"
	rr := env.do(t, http.MethodPost, "/stores/"+created.Profile.ID+"/cart/items", "", sessionID, storefrontHttp.AddCartItemRequest{ProductID: product.ID})
	require.Equal(t, http.StatusOK, rr.Code)
	rr = env.do(t, http.MethodPost, "/stores/"+created.Profile.ID+"/checkout", "", sessionID, storefrontHttp.CheckoutRequest{
		Name:    "Ada",
		Email:   "ada@example.com",
		Phone:   "0300-1234567",
		Address: "12 Main Street",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	var placed store.Order
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&placed))

	statusPath := "/stores/" + created.Profile.ID + "/orders/" + placed.ID + "/status"

	rr = env.do(t, http.MethodPatch, statusPath, token, "", storefrontHttp.UpdateOrderStatusRequest{Status: "shipped"})
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = env.do(t, http.MethodPatch, statusPath, token, "", storefrontHttp.UpdateOrderStatusRequest{Status: "cancelled"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodGet, "/stores/"+created.Profile.ID+"/orders", token, "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var orders []store.Order
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&orders))
	require.Len(t, orders, 1)
	assert.Equal(t, store.OrderShipped, orders[0].Status)
}

func TestToolsHandler_DescribeFallsBackWithoutClient(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "owner@example.com")

	rr := env.do(t, http.MethodPost, "/tools/describe", token, "", storefrontHttp.DescribeProductRequest{
		ProductName: "Copper Kettle",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var described storefrontHttp.DescribeProductResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&described))
	assert.Equal(t, "Failed to generate AI description.", described.Description)
}
