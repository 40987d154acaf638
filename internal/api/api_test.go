package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Faultbox/dicebowl/internal/game/check"
	"github.com/Faultbox/dicebowl/internal/game/sheet"
	dietype "github.com/Faultbox/dicebowl/pkg/dice"
)

func newTestServer(t *testing.T, rolls ...int) (*httptest.Server, *check.MemoryHistory) {
	t.Helper()
	c := sheet.NewCharacter("Alrik")
	c.Attributes["MU"] = 12
	c.Attributes["GE"] = 12
	c.Attributes["KK"] = 12
	if err := c.SetTalent("Klettern", 10); err != nil {
		t.Fatal(err)
	}
	hist := check.NewMemoryHistory(10)
	svc := check.NewService(c, check.NewFixed(rolls...), hist, nil)
	h := NewHandler(svc, memoryHistory{hist}, check.NewRandomRoller(1), c, nil)
	srv := httptest.NewServer(NewRouter(h, 5*time.Second))
	t.Cleanup(srv.Close)
	return srv, hist
}

type memoryHistory struct{ h *check.MemoryHistory }

func (m memoryHistory) Recent(_ context.Context, n int) ([]check.Result, error) {
	return m.h.Recent(n), nil
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestAttributeCheck(t *testing.T) {
	srv, hist := newTestServer(t, 8)
	resp := post(t, srv.URL+"/checks/attribute", `{"attribute":"MU","modifier":0}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var res check.Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.Attribute == nil || res.Attribute.RemainingPoints != 4 || res.Attribute.QualityLevel != 2 {
		t.Errorf("result = %+v", res.Attribute)
	}
	if hist.Len() != 1 {
		t.Errorf("history has %d entries", hist.Len())
	}
}

func TestTalentCheck(t *testing.T) {
	srv, _ := newTestServer(t, 14, 12, 15)
	resp := post(t, srv.URL+"/checks/talent", `{"talent":"Klettern"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var res check.Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.Talent == nil || res.Talent.PointsNeeded != 5 || !res.Talent.Success {
		t.Errorf("result = %+v", res.Talent)
	}
}

func TestCheckErrors(t *testing.T) {
	srv, _ := newTestServer(t)
	tests := []struct {
		name, path, body string
		want             int
	}{
		{"unknown talent", "/checks/talent", `{"talent":"Drachenreiten"}`, http.StatusNotFound},
		{"unknown attribute", "/checks/attribute", `{"attribute":"XX"}`, http.StatusNotFound},
		{"missing talent", "/checks/talent", `{}`, http.StatusBadRequest},
		{"missing attribute", "/checks/attribute", `{"modifier":1}`, http.StatusBadRequest},
		{"bad json", "/checks/attribute", `{"attribute":`, http.StatusBadRequest},
		{"roller exhausted", "/checks/attribute", `{"attribute":"MU"}`, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv.URL+tt.path, tt.body)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
			var e errorResponse
			if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Error == "" {
				t.Errorf("error body = %+v, %v", e, err)
			}
		})
	}
}

func TestThrow(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := post(t, srv.URL+"/throws", `{"type":"d6","count":4}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out throwResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Type != dietype.D6 || len(out.Values) != 4 {
		t.Fatalf("response = %+v", out)
	}
	for _, v := range out.Values {
		if !dietype.D6.Contains(v) {
			t.Errorf("d6 rolled %d", v)
		}
	}

	for _, body := range []string{`{"type":"d7"}`, `{"type":"d6","count":0}`, `{"count":11}`} {
		if resp := post(t, srv.URL+"/throws", body); resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d", body, resp.StatusCode)
		}
	}
}

func TestThrowWithoutRoller(t *testing.T) {
	h := NewHandler(nil, nil, nil, nil, nil)
	srv := httptest.NewServer(NewRouter(h, 0))
	defer srv.Close()
	if resp := post(t, srv.URL+"/throws", `{}`); resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("throws status = %d", resp.StatusCode)
	}
	if resp := get(t, srv.URL+"/history"); resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("history status = %d", resp.StatusCode)
	}
	if resp := get(t, srv.URL+"/character"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("character status = %d", resp.StatusCode)
	}
}

func TestHistory(t *testing.T) {
	srv, _ := newTestServer(t, 3, 4, 5)
	for i := 0; i < 3; i++ {
		post(t, srv.URL+"/checks/attribute", `{"attribute":"KL"}`)
	}

	resp := get(t, srv.URL+"/history?limit=2")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var results []check.Result
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 || results[0].Attribute.Roll != 5 {
		t.Errorf("history = %+v", results)
	}

	if resp := get(t, srv.URL+"/history?limit=abc"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad limit status = %d", resp.StatusCode)
	}
}

func TestCharacter(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := get(t, srv.URL+"/character")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var c sheet.Character
	if err := json.NewDecoder(resp.Body).Decode(&c); err != nil {
		t.Fatal(err)
	}
	if c.Name != "Alrik" || c.Attributes["MU"] != 12 {
		t.Errorf("character = %+v", c)
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	if resp := get(t, srv.URL+"/healthz"); resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

type slowHistory struct{}

func (slowHistory) Recent(ctx context.Context, _ int) ([]check.Result, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestTimeoutMapsTo504(t *testing.T) {
	h := NewHandler(nil, slowHistory{}, nil, nil, nil)
	srv := httptest.NewServer(NewRouter(h, 50*time.Millisecond))
	defer srv.Close()
	resp := get(t, srv.URL+"/history")
	if resp.StatusCode != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want 504", resp.StatusCode)
	}
}

func TestFailMapsUnsupportedType(t *testing.T) {
	h := NewHandler(nil, nil, check.RollerFunc(func(context.Context, dietype.Type, int) ([]int, error) {
		return nil, errors.Join(errors.New("spawn"), dietype.ErrUnsupportedType)
	}), nil, nil)
	srv := httptest.NewServer(NewRouter(h, 0))
	defer srv.Close()
	if resp := post(t, srv.URL+"/throws", `{"type":"d4"}`); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
