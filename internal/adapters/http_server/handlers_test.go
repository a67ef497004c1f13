package httpserver_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	httpserver "stayhub/internal/adapters/http_server"
	"stayhub/internal/adapters/imagestore"
	"stayhub/internal/app"
	"stayhub/internal/domain"
)

type env struct {
	t     *testing.T
	ts    *httptest.Server
	users *memUsers
}

func newEnv(t *testing.T) *env {
	t.Helper()

	users := newMemUsers()
	hotels := newMemHotels()
	rooms := newMemRooms()
	res := newMemReservations()
	tokens := newMemTokens()

	images, err := imagestore.New(t.TempDir())
	if err != nil {
		t.Fatalf("imagestore: %v", err)
	}

	issuer := app.NewTokenIssuer("test-secret", time.Hour)
	auth := app.NewAuthService(users, issuer, tokens)
	hotelSvc := app.NewHotelService(hotels, nopCache{}, images, time.Minute)
	roomSvc := app.NewRoomService(rooms, hotels, nopCache{}, images, time.Minute)
	resSvc := app.NewReservationService(res, rooms, hotels, 48*time.Hour)

	srv := httpserver.New()
	srv.MountHandlers(httpserver.NewHandlers(auth, issuer, tokens, hotelSvc, roomSvc, resSvc, images.Root(), 100))

	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)

	return &env{t: t, ts: ts, users: users}
}

func (e *env) do(method, path, token string, body io.Reader, contentType string) *http.Response {
	e.t.Helper()
	req, err := http.NewRequest(method, e.ts.URL+path, body)
	if err != nil {
		e.t.Fatalf("new request: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		e.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// doJSON sends v as a JSON body and decodes the response into out (when
// non-nil), returning the status code.
func (e *env) doJSON(method, path, token string, v, out any) int {
	e.t.Helper()
	var body io.Reader
	if v != nil {
		b, err := json.Marshal(v)
		if err != nil {
			e.t.Fatalf("marshal: %v", err)
		}
		body = bytes.NewReader(b)
	}
	resp := e.do(method, path, token, body, "application/json")
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			e.t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (e *env) doForm(method, path, token string, form url.Values, out any) int {
	e.t.Helper()
	resp := e.do(method, path, token, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			e.t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

type authResp struct {
	Token string `json:"token"`
	User  struct {
		ID   int64  `json:"id"`
		Role string `json:"role"`
	} `json:"user"`
}

// register creates an account with the given role and returns (id, token).
// Role promotion happens straight in the repository: the first admin of a
// deployment is seeded the same way.
func (e *env) register(email string, role domain.Role) (int64, string) {
	e.t.Helper()
	var out authResp
	code := e.doJSON("POST", "/register", "", map[string]string{
		"name": "Someone", "email": email, "password": "secret1",
	}, &out)
	if code != http.StatusCreated {
		e.t.Fatalf("register %s: status %d", email, code)
	}
	if role == domain.RoleUser {
		return out.User.ID, out.Token
	}
	u := e.users.users[out.User.ID]
	u.Role = role
	e.users.users[out.User.ID] = u
	// re-login so the token carries the new role
	code = e.doJSON("POST", "/login", "", map[string]string{"email": email, "password": "secret1"}, &out)
	if code != http.StatusOK {
		e.t.Fatalf("re-login %s: status %d", email, code)
	}
	return out.User.ID, out.Token
}

func (e *env) createHotel(token string) int64 {
	e.t.Helper()
	form := url.Values{
		"name": {"Seaside"}, "city": {"Brest"},
		"address": {"1 Quai Malbert"}, "telephone": {"+33 100 200 300"},
	}
	var h struct {
		ID int64 `json:"id"`
	}
	if code := e.doForm("POST", "/hotels", token, form, &h); code != http.StatusCreated {
		e.t.Fatalf("create hotel: status %d", code)
	}
	return h.ID
}

func (e *env) createRoom(token string, hotelID int64) int64 {
	e.t.Helper()
	form := url.Values{
		"name": {"101"}, "type": {"double"}, "price": {"120.50"}, "capacity": {"2"},
	}
	var r struct {
		ID int64 `json:"id"`
	}
	path := fmt.Sprintf("/hotels/%d/rooms", hotelID)
	if code := e.doForm("POST", path, token, form, &r); code != http.StatusCreated {
		e.t.Fatalf("create room: status %d", code)
	}
	return r.ID
}

func day(offset int) string {
	return time.Now().AddDate(0, 0, offset).Format("2006-01-02")
}

func TestRegisterLoginLogout(t *testing.T) {
	e := newEnv(t)

	var out authResp
	if code := e.doJSON("POST", "/register", "", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "secret1",
	}, &out); code != http.StatusCreated {
		t.Fatalf("register: status %d", code)
	}
	if out.Token == "" || out.User.Role != "user" {
		t.Fatalf("register response: %+v", out)
	}

	if code := e.doJSON("POST", "/login", "", map[string]string{
		"email": "ada@example.com", "password": "wrong-pw",
	}, nil); code != http.StatusUnauthorized {
		t.Fatalf("bad password: status %d", code)
	}

	if code := e.doJSON("GET", "/profile", out.Token, nil, nil); code != http.StatusOK {
		t.Fatalf("profile: status %d", code)
	}
	if code := e.doJSON("GET", "/profile", "", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("profile without token: status %d", code)
	}

	if code := e.doJSON("POST", "/logout", out.Token, nil, nil); code != http.StatusOK {
		t.Fatalf("logout: status %d", code)
	}
	// token is revoked from here on
	if code := e.doJSON("GET", "/profile", out.Token, nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("profile after logout: status %d", code)
	}
}

func TestHotelVisibilityAndValidation(t *testing.T) {
	e := newEnv(t)
	_, opTok := e.register("op@example.com", domain.RoleHotel)
	_, adminTok := e.register("root@example.com", domain.RoleAdmin)
	hotelID := e.createHotel(opTok)
	path := fmt.Sprintf("/hotels/%d", hotelID)

	// hidden from the public until an admin validates it
	if code := e.doJSON("GET", path, "", nil, nil); code != http.StatusNotFound {
		t.Fatalf("anonymous get unvalidated: status %d", code)
	}
	var listed []any
	if code := e.doJSON("GET", "/hotels", "", nil, &listed); code != http.StatusOK || len(listed) != 0 {
		t.Fatalf("public list: status %d, %d hotels", code, len(listed))
	}
	// the owner still sees it
	if code := e.doJSON("GET", path, opTok, nil, nil); code != http.StatusOK {
		t.Fatalf("owner get: status %d", code)
	}

	// operator cannot self-validate
	if code := e.doJSON("PATCH", path+"/validate", opTok, map[string]bool{"validated": true}, nil); code != http.StatusForbidden {
		t.Fatalf("operator validate: status %d", code)
	}
	if code := e.doJSON("PATCH", path+"/validate", adminTok, map[string]bool{"validated": true}, nil); code != http.StatusOK {
		t.Fatalf("admin validate: status %d", code)
	}

	if code := e.doJSON("GET", path, "", nil, nil); code != http.StatusOK {
		t.Fatalf("anonymous get validated: status %d", code)
	}
	if code := e.doJSON("GET", "/hotels", "", nil, &listed); code != http.StatusOK || len(listed) != 1 {
		t.Fatalf("public list after validate: status %d, %d hotels", code, len(listed))
	}
}

func TestHotelETag(t *testing.T) {
	e := newEnv(t)
	_, opTok := e.register("op@example.com", domain.RoleHotel)
	_, adminTok := e.register("root@example.com", domain.RoleAdmin)
	hotelID := e.createHotel(opTok)
	path := fmt.Sprintf("/hotels/%d", hotelID)
	e.doJSON("PATCH", path+"/validate", adminTok, map[string]bool{"validated": true}, nil)

	resp := e.do("GET", path, "", nil, "")
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("no ETag on public hotel read")
	}

	req, _ := http.NewRequest("GET", e.ts.URL+path, nil)
	req.Header.Set("If-None-Match", etag)
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotModified {
		t.Fatalf("conditional get: status %d", resp2.StatusCode)
	}
}

func TestCatalogAuthorization(t *testing.T) {
	e := newEnv(t)
	_, opTok := e.register("op@example.com", domain.RoleHotel)
	_, userTok := e.register("guest@example.com", domain.RoleUser)
	_, otherTok := e.register("rival@example.com", domain.RoleHotel)
	hotelID := e.createHotel(opTok)
	path := fmt.Sprintf("/hotels/%d", hotelID)

	// plain users cannot open hotels
	if code := e.doForm("POST", "/hotels", userTok, url.Values{
		"name": {"X"}, "city": {"Y"}, "address": {"Z"}, "telephone": {"1"},
	}, nil); code != http.StatusForbidden {
		t.Fatalf("user creates hotel: status %d", code)
	}

	// another operator cannot touch someone else's hotel
	if code := e.doForm("PUT", path, otherTok, url.Values{"name": {"Hijack"}}, nil); code != http.StatusForbidden {
		t.Fatalf("stranger update: status %d", code)
	}
	if code := e.doJSON("DELETE", path, otherTok, nil, nil); code != http.StatusForbidden {
		t.Fatalf("stranger delete: status %d", code)
	}

	// admin-only listings
	if code := e.doJSON("GET", "/users", userTok, nil, nil); code != http.StatusForbidden {
		t.Fatalf("user lists users: status %d", code)
	}
	if code := e.doJSON("GET", "/admin/hotels", opTok, nil, nil); code != http.StatusForbidden {
		t.Fatalf("operator lists all hotels: status %d", code)
	}

	if code := e.doJSON("GET", "/hotels/not-a-number", "", nil, nil); code != http.StatusBadRequest {
		t.Fatalf("junk id: status %d", code)
	}
}

func TestBookingFlow(t *testing.T) {
	e := newEnv(t)
	_, opTok := e.register("op@example.com", domain.RoleHotel)
	_, aliceTok := e.register("alice@example.com", domain.RoleUser)
	_, bobTok := e.register("bob@example.com", domain.RoleUser)
	hotelID := e.createHotel(opTok)
	roomID := e.createRoom(opTok, hotelID)

	book := func(token, in, out string) (int, reservationJSON) {
		var r reservationJSON
		code := e.doJSON("POST", "/reservations", token, map[string]any{
			"room_id": roomID, "check_in": in, "check_out": out,
		}, &r)
		return code, r
	}

	code, first := book(aliceTok, day(10), day(15))
	if code != http.StatusCreated || first.Status != "pending" {
		t.Fatalf("first booking: status %d, %+v", code, first)
	}

	// pending holds don't block others
	if code, _ := book(bobTok, day(12), day(14)); code != http.StatusCreated {
		t.Fatalf("booking against pending: status %d", code)
	}

	// operator confirms the first one
	statusPath := fmt.Sprintf("/reservations/%d/status", first.ID)
	if code := e.doJSON("PATCH", statusPath, bobTok, map[string]string{"status": "confirmed"}, nil); code != http.StatusForbidden {
		t.Fatalf("stranger confirms: status %d", code)
	}
	if code := e.doJSON("PATCH", statusPath, opTok, map[string]string{"status": "confirmed"}, nil); code != http.StatusOK {
		t.Fatalf("operator confirms: status %d", code)
	}

	// now the range is taken
	if code, _ := book(bobTok, day(14), day(16)); code != http.StatusUnprocessableEntity {
		t.Fatalf("overlapping booking: status %d", code)
	}
	// back-to-back is fine: checkout day equals the next check-in
	if code, _ := book(bobTok, day(15), day(17)); code != http.StatusCreated {
		t.Fatalf("adjacent booking: status %d", code)
	}

	// booker cannot cancel a confirmed reservation
	cancelPath := fmt.Sprintf("/reservations/%d/cancel", first.ID)
	if code := e.doJSON("PATCH", cancelPath, aliceTok, nil, nil); code != http.StatusUnprocessableEntity {
		t.Fatalf("cancel confirmed: status %d", code)
	}

	// bad dates and past dates are rejected
	if code, _ := book(aliceTok, "2020-01-01", "2020-01-05"); code != http.StatusUnprocessableEntity {
		t.Fatalf("past booking: status %d", code)
	}
	if code, _ := book(aliceTok, "not-a-date", day(3)); code != http.StatusUnprocessableEntity {
		t.Fatalf("junk date: status %d", code)
	}

	// listings are scoped per caller
	var mine []reservationJSON
	if code := e.doJSON("GET", "/my-reservations", aliceTok, nil, &mine); code != http.StatusOK {
		t.Fatalf("my reservations: status %d", code)
	}
	for _, r := range mine {
		if r.RoomID != roomID {
			t.Fatalf("foreign reservation in listing: %+v", r)
		}
	}
	if code := e.doJSON("GET", "/reservations", aliceTok, nil, nil); code != http.StatusForbidden {
		t.Fatalf("user lists all reservations: status %d", code)
	}
}

type reservationJSON struct {
	ID     int64  `json:"id"`
	RoomID int64  `json:"room_id"`
	Status string `json:"status"`
}

func TestImageUploadAndStatic(t *testing.T) {
	e := newEnv(t)
	_, opTok := e.register("op@example.com", domain.RoleHotel)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range map[string]string{
		"name": "Seaside", "city": "Brest", "address": "1 Quai Malbert", "telephone": "+33 1",
	} {
		_ = mw.WriteField(k, v)
	}
	fw, err := mw.CreateFormFile("images", "front.png")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("not-really-a-png"))
	mw.Close()

	var h struct {
		Images []string `json:"images"`
	}
	resp := e.do("POST", "/hotels", opTok, &buf, mw.FormDataContentType())
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated || len(h.Images) != 1 {
		t.Fatalf("multipart create: status %d, images %v", resp.StatusCode, h.Images)
	}

	// the stored path is served back under /storage/
	static := e.do("GET", "/storage/"+h.Images[0], "", nil, "")
	body, _ := io.ReadAll(static.Body)
	static.Body.Close()
	if static.StatusCode != http.StatusOK || string(body) != "not-really-a-png" {
		t.Fatalf("static serve: status %d, body %q", static.StatusCode, body)
	}
}

func TestLoginThrottle(t *testing.T) {
	users := newMemUsers()
	tokens := newMemTokens()
	issuer := app.NewTokenIssuer("test-secret", time.Hour)
	auth := app.NewAuthService(users, issuer, tokens)
	images, err := imagestore.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	hotels := newMemHotels()
	rooms := newMemRooms()
	srv := httpserver.New()
	srv.MountHandlers(httpserver.NewHandlers(
		auth, issuer, tokens,
		app.NewHotelService(hotels, nopCache{}, images, time.Minute),
		app.NewRoomService(rooms, hotels, nopCache{}, images, time.Minute),
		app.NewReservationService(newMemReservations(), rooms, hotels, time.Hour),
		images.Root(), 1, // 1 rps, burst 2
	))
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	hit := func() int {
		resp, err := http.Post(ts.URL+"/login", "application/json",
			strings.NewReader(`{"email":"nobody@example.com","password":"nope"}`))
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode
	}

	throttled := false
	for i := 0; i < 5; i++ {
		if hit() == http.StatusTooManyRequests {
			throttled = true
			break
		}
	}
	if !throttled {
		t.Fatal("login endpoint never throttled")
	}
}
