package webctx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestFlashCodec_RoundTrip(t *testing.T) {
	in := []Flash{{Kind: FlashSuccess, Message: "You are logged out"}, {Kind: FlashError, Message: "<b>bad</b>"}}

	out := DecodeFlashes(EncodeFlashes(in))
	if len(out) != 2 || out[0] != in[0] || out[1] != in[1] {
		t.Fatalf("expected %+v, got %+v", in, out)
	}
}

func TestDecodeFlashes_Garbage(t *testing.T) {
	for _, v := range []string{"", "!!!", "e30"} {
		if got := DecodeFlashes(v); len(got) != 0 {
			t.Errorf("DecodeFlashes(%q) = %+v, want none", v, got)
		}
	}
}

func TestRequestContext_AddFlashCaps(t *testing.T) {
	rc := New("", nil)
	for i := 0; i < maxFlashes+3; i++ {
		rc.AddFlash(FlashError, "x")
	}
	if len(rc.Pending()) != maxFlashes {
		t.Fatalf("expected %d pending flashes, got %d", maxFlashes, len(rc.Pending()))
	}
}

func TestFrom_ReturnsAttachedOrFresh(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	fresh := From(c)
	if fresh == nil || fresh.SessionToken != "" {
		t.Fatalf("expected an empty context, got %+v", fresh)
	}
	if From(c) != fresh {
		t.Fatalf("expected the same context on a second call")
	}

	rc := New("tok", nil)
	Attach(c, rc)
	if From(c) != rc {
		t.Fatalf("expected the attached context")
	}
}

func TestCookies_SessionAttributes(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	cs := Cookies{SessionName: "sid", Secure: true, SessionTTL: time.Hour}
	cs.SetSession(c, "tok")

	header := rec.Header().Get("Set-Cookie")
	for _, want := range []string{"sid=tok", "HttpOnly", "Secure", "SameSite=Lax", "Max-Age=3600", "Path=/"} {
		if !strings.Contains(header, want) {
			t.Fatalf("expected %q in %q", want, header)
		}
	}
}

func TestCookies_SessionToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "tok"})
	c := e.NewContext(req, httptest.NewRecorder())

	cs := Cookies{SessionName: "sid"}
	if got := cs.SessionToken(c); got != "tok" {
		t.Fatalf("expected tok, got %q", got)
	}
	if got := (Cookies{SessionName: "other"}).SessionToken(c); got != "" {
		t.Fatalf("expected no token, got %q", got)
	}
}
