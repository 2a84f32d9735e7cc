package webserver_test

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/orderdesk/orderdesk/config"
	"github.com/orderdesk/orderdesk/internal/app"
	"github.com/orderdesk/orderdesk/internal/assets"
	"github.com/orderdesk/orderdesk/internal/domain"
	"github.com/orderdesk/orderdesk/internal/shop"
	"github.com/orderdesk/orderdesk/internal/webserver"
)

var testDBSeq int

type testEnv struct {
	server *webserver.WebServer
	repo   *shop.Repository
	store  *assets.Store
	db     *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testDBSeq++
	dsn := fmt.Sprintf("file:webtest%d?mode=memory&cache=shared", testDBSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))

	cfg := config.LoadConfig("")
	cfg.Web.Secret = "test-secret"
	cfg.Admin.Username = "admin"
	cfg.Admin.Password = "orderdesk"

	application := app.NewApplication(cfg)
	application.OverrideDB(db)

	store, err := assets.NewStore(t.TempDir())
	require.NoError(t, err)

	repo := shop.NewRepository(db)
	lifecycle := shop.NewLifecycle(repo, application.Bus())
	server := webserver.NewServer(application, repo, lifecycle, store)

	return &testEnv{server: server, repo: repo, store: store, db: db}
}

func (e *testEnv) do(req *http.Request, cookies []*http.Cookie) *httptest.ResponseRecorder {
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	e.server.Root().ServeHTTP(rec, req)
	return rec
}

func formRequest(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// adminLogin performs the login flow and returns the session cookies.
func (e *testEnv) adminLogin(t *testing.T) []*http.Cookie {
	t.Helper()
	rec := e.do(formRequest("/admin/login", url.Values{
		"username": {"admin"},
		"password": {"orderdesk"},
	}), nil)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/admin/dashboard", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func multipartProduct(t *testing.T, name, price, filename string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	require.NoError(t, w.WriteField("name", name))
	require.NoError(t, w.WriteField("description", "test item"))
	require.NoError(t, w.WriteField("price", price))
	if filename != "" {
		fw, err := w.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/products", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestIndexListsProducts(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.repo.InsertProduct(&domain.Product{ID: 1, Name: "Sneaker", Price: 59.9}))

	rec := env.do(httptest.NewRequest(http.MethodGet, "/", nil), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Sneaker")
}

func TestPlaceOrderFlow(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.repo.InsertProduct(&domain.Product{ID: 1, Name: "Sneaker", Price: 59.9}))

	form := url.Values{"name": {"Ada"}, "phone": {"555-0100"}}
	rec := env.do(formRequest("/order/1", form), nil)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Contains(t, rec.Header().Get("Location"), url.QueryEscape("Order placed successfully!"))
	session := rec.Result().Cookies()

	// The duplicate guard answers the second attempt.
	rec = env.do(formRequest("/order/1", form), session)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Contains(t, rec.Header().Get("Location"), url.QueryEscape("already ordered"))

	// The home page shows the pending status for the session phone.
	rec = env.do(httptest.NewRequest(http.MethodGet, "/", nil), session)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Pending")
}

func TestPlaceOrderTrimsPhoneForSession(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.repo.InsertProduct(&domain.Product{ID: 1, Name: "Sneaker", Price: 59.9}))

	// Padded form input: the ledger row and the session value must agree
	// on the canonical phone, or return visits find no status.
	form := url.Values{"name": {"  Ada  "}, "phone": {"  555-0100  "}}
	rec := env.do(formRequest("/order/1", form), nil)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Contains(t, rec.Header().Get("Location"), url.QueryEscape("Order placed successfully!"))
	session := rec.Result().Cookies()

	order, err := env.repo.LatestOrderByPhone("555-0100")
	require.NoError(t, err)
	require.NotNil(t, order)
	require.Equal(t, "Ada", order.CustomerName)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/", nil), session)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Pending")

	// The guard sees the same pair through the padded form too.
	rec = env.do(formRequest("/order/1", form), session)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Contains(t, rec.Header().Get("Location"), url.QueryEscape("already ordered"))
}

func TestPlaceOrderValidationVsStorageFailure(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.repo.InsertProduct(&domain.Product{ID: 1, Name: "Sneaker", Price: 59.9}))

	// Missing fields stay a friendly redirect.
	rec := env.do(formRequest("/order/1", url.Values{"name": {""}, "phone": {"555-0100"}}), nil)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Contains(t, rec.Header().Get("Location"), url.QueryEscape("Name and phone are required."))

	// A broken ledger is fatal for the request, not a validation message.
	require.NoError(t, env.db.Migrator().DropTable(&domain.Order{}))
	rec = env.do(formRequest("/order/1", url.Values{"name": {"Ada"}, "phone": {"555-0100"}}), nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAdminGateFailsClosed(t *testing.T) {
	env := newTestEnv(t)

	for _, r := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil),
		formRequest("/admin/orders/1/Accepted", url.Values{}),
		formRequest("/admin/products/1/delete", url.Values{}),
		multipartProduct(t, "Sneaker", "59.9", "shoe.png"),
	} {
		rec := env.do(r, nil)
		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, "/admin/login", rec.Header().Get("Location"))
	}
}

func TestAdminLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(formRequest("/admin/login", url.Values{
		"username": {"admin"},
		"password": {"wrong"},
	}), nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "Invalid credentials")
}

func TestAddProductAllowList(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminLogin(t)

	// Disallowed extension: no row, no file.
	rec := env.do(multipartProduct(t, "Trojan", "1.0", "malware.exe"), admin)
	require.Equal(t, http.StatusFound, rec.Code)
	products, err := env.repo.ListProducts()
	require.NoError(t, err)
	require.Empty(t, products)
	require.False(t, env.store.Exists("malware.exe"))

	// Allowed extension: exactly one row with the sanitized filename.
	rec = env.do(multipartProduct(t, "Sneaker", "59.9", "shoe.png"), admin)
	require.Equal(t, http.StatusFound, rec.Code)
	products, err = env.repo.ListProducts()
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Equal(t, "shoe.png", products[0].Image)
	require.Equal(t, 59.9, products[0].Price)
	require.True(t, env.store.Exists("shoe.png"))
}

func TestUpdateOrderStatus(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminLogin(t)

	require.NoError(t, env.repo.InsertOrder(&domain.Order{ID: 10, ProductID: 1, CustomerName: "Ada", Phone: "555-0100", Status: domain.OrderPending}))

	rec := env.do(formRequest("/admin/orders/10/Accepted", url.Values{}), admin)
	require.Equal(t, http.StatusFound, rec.Code)

	order, err := env.repo.GetOrder(10)
	require.NoError(t, err)
	require.Equal(t, domain.OrderAccepted, order.Status)

	// Unknown status values are not an accepted transition.
	rec = env.do(formRequest("/admin/orders/10/Shipped", url.Values{}), admin)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Pending is a valid status but not a transition target.
	rec = env.do(formRequest("/admin/orders/10/Pending", url.Values{}), admin)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	order, err = env.repo.GetOrder(10)
	require.NoError(t, err)
	require.Equal(t, domain.OrderAccepted, order.Status)
}

func TestDeleteProductCascadesAssetOnly(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminLogin(t)

	rec := env.do(multipartProduct(t, "Sneaker", "59.9", "shoe.png"), admin)
	require.Equal(t, http.StatusFound, rec.Code)
	products, err := env.repo.ListProducts()
	require.NoError(t, err)
	require.Len(t, products, 1)
	productID := products[0].ID

	// Two orders reference the product, one pending, one rejected.
	require.NoError(t, env.repo.InsertOrder(&domain.Order{ID: 10, ProductID: productID, Phone: "555-0100", Status: domain.OrderPending}))
	require.NoError(t, env.repo.InsertOrder(&domain.Order{ID: 11, ProductID: productID, Phone: "555-0100", Status: domain.OrderRejected}))

	rec = env.do(formRequest(fmt.Sprintf("/admin/products/%d/delete", productID), url.Values{}), admin)
	require.Equal(t, http.StatusFound, rec.Code)

	products, err = env.repo.ListProducts()
	require.NoError(t, err)
	require.Empty(t, products)
	require.False(t, env.store.Exists("shoe.png"))

	// Orders survive with the dangling reference.
	for _, id := range []int64{10, 11} {
		order, err := env.repo.GetOrder(id)
		require.NoError(t, err)
		require.Equal(t, productID, order.ProductID)
	}
}
